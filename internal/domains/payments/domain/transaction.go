package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payment lifecycle state. Pending moves exactly once to a terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// Type tells whether money entered or left the wallet.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Outcome is the gateway callback kind.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
	OutcomeCancel  Outcome = "cancel"
)

// Status maps a callback outcome to the terminal status it produces.
func (o Outcome) Status() (Status, error) {
	switch o {
	case OutcomeSuccess:
		return StatusSuccess, nil
	case OutcomeFail:
		return StatusFailed, nil
	case OutcomeCancel:
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, string(o))
}

const (
	// MethodWallet marks adoption fees paid from the balance.
	MethodWallet = "wallet"
	// MethodExpired marks pending rows cancelled by the expiry sweep.
	MethodExpired = "expired"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount supports at most two decimal places")
	ErrUnknownOutcome    = errors.New("unknown payment outcome")
	ErrAlreadyFinalized  = errors.New("payment already finalized")
	ErrEmptyUser         = errors.New("payment must reference a user")
	ErrEmptyToken        = errors.New("payment token is required")
	ErrInvalidTransition = errors.New("payment can only move from pending to a terminal status")
)

// Transaction is a wallet movement. Income rows come from the gateway; expense rows from adoptions.
type Transaction struct {
	ID        string
	Token     string
	Amount    decimal.Decimal
	Currency  string
	Method    string
	Status    Status
	Type      Type
	UserID    string
	PetID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateAmount enforces a positive amount with cent precision.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(2)) {
		return ErrAmountPrecision
	}
	return nil
}

// NewToken builds the externally visible transaction id: TXN, a UTC timestamp, and a random suffix.
func NewToken(now time.Time, suffix string) string {
	suffix = strings.ToUpper(strings.ReplaceAll(suffix, "-", ""))
	if len(suffix) > 12 {
		suffix = suffix[:12]
	}
	return "TXN" + now.UTC().Format("20060102150405") + suffix
}

// NewPendingIncome builds a wallet top-up awaiting the gateway callback.
func NewPendingIncome(id, token, userID string, amount decimal.Decimal, currency string, now time.Time) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUser
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrEmptyToken
	}
	return &Transaction{
		ID:        id,
		Token:     token,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusPending,
		Type:      TypeIncome,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewAdoptionExpense builds the settled expense row written with an adoption.
func NewAdoptionExpense(id, token, userID, petID string, fee decimal.Decimal, currency string, now time.Time) *Transaction {
	return &Transaction{
		ID:        id,
		Token:     token,
		Amount:    fee,
		Currency:  currency,
		Method:    MethodWallet,
		Status:    StatusSuccess,
		Type:      TypeExpense,
		UserID:    userID,
		PetID:     petID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Finalize applies the one transition out of pending.
func (t *Transaction) Finalize(status Status, method string, now time.Time) error {
	if t.Status.Terminal() {
		return ErrAlreadyFinalized
	}
	if !status.Terminal() {
		return ErrInvalidTransition
	}
	t.Status = status
	if method = strings.TrimSpace(method); method != "" {
		t.Method = method
	}
	t.UpdatedAt = now
	return nil
}

// Credits reports whether finalizing to status moves money into the wallet.
func (t *Transaction) Credits(status Status) bool {
	return t.Type == TypeIncome && status == StatusSuccess
}
