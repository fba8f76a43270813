package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentInitiated is raised once the gateway accepted a session and the pending row exists.
type PaymentInitiated struct {
	Token     string
	UserID    string
	Amount    decimal.Decimal
	Timestamp time.Time
}

func (e PaymentInitiated) EventName() string     { return "payments.payment.initiated" }
func (e PaymentInitiated) OccurredAt() time.Time { return e.Timestamp }
func (e PaymentInitiated) AggregateID() string   { return e.Token }

// PaymentFinalized is raised after a pending payment reached a terminal status.
type PaymentFinalized struct {
	Token     string
	UserID    string
	Status    Status
	Amount    decimal.Decimal
	Credited  bool
	Timestamp time.Time
}

func (e PaymentFinalized) EventName() string     { return "payments.payment.finalized" }
func (e PaymentFinalized) OccurredAt() time.Time { return e.Timestamp }
func (e PaymentFinalized) AggregateID() string   { return e.Token }
