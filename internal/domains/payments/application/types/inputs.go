package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
)

// InitiateInput is a wallet top-up request.
type InitiateInput struct {
	UserID         string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// InitiateResult points the client at the hosted checkout.
type InitiateResult struct {
	Token       string
	RedirectURL string
	// Replayed is set when the result came from a previous request with the same key.
	Replayed bool
}

// CallbackInput is a gateway redirect back to us.
type CallbackInput struct {
	Outcome domain.Outcome
	Token   string
	Method  string
	// Amount is what the gateway reported. It is only compared, never credited.
	Amount *decimal.Decimal
	ValID  string
}

// CallbackResult reports the stored outcome.
type CallbackResult struct {
	Token    string
	Status   domain.Status
	Credited bool
	// AlreadyFinal is set when the payment was terminal before this callback.
	AlreadyFinal bool
	// AmountMismatch is set when the gateway reported an amount other than the stored one.
	AmountMismatch bool
}

// Scope restricts history reads. Staff get All.
type Scope struct {
	UserID string
	All    bool
}

// ListQuery carries history filters from the transport.
type ListQuery struct {
	Token    string
	Method   string
	Status   string
	PetID    string
	Type     string
	Search   string
	Ordering string
	Page     int
	PageSize int
}
