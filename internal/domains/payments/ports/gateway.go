package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrGatewayRejected is returned when the gateway answered but refused the session.
	ErrGatewayRejected  = errors.New("payment gateway rejected the session")
	ErrCustomerNotFound = errors.New("customer not found")
)

// Customer is the contact block the gateway requires.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// SessionRequest asks the gateway to open a hosted checkout.
type SessionRequest struct {
	Token      string
	Amount     decimal.Decimal
	Currency   string
	Customer   Customer
	SuccessURL string
	FailURL    string
	CancelURL  string
}

// Session is an accepted hosted checkout.
type Session struct {
	RedirectURL string
	SessionKey  string
}

// Gateway opens checkout sessions at the external payment provider.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// CustomerDirectory resolves the contact block of a wallet owner.
type CustomerDirectory interface {
	Customer(ctx context.Context, userID string) (Customer, error)
}
