package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// InitiateRequest accepts the amount as a JSON string or number.
type InitiateRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type InitiateResponse struct {
	URL           string `json:"url"`
	TransactionID string `json:"transaction_id"`
}

// CallbackForm is the gateway's POST back, as form fields or JSON.
type CallbackForm struct {
	TranID   string `form:"tran_id" json:"tran_id"`
	CardType string `form:"card_type" json:"card_type"`
	Amount   string `form:"amount" json:"amount"`
	Status   string `form:"status" json:"status"`
	ValID    string `form:"val_id" json:"val_id"`
}

type Payment struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	PaymentType   string    `json:"payment_type"`
	User          string    `json:"user,omitempty"`
	Pet           string    `json:"pet,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type PaymentPage struct {
	Count    int64     `json:"count"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	HasNext  bool      `json:"has_next"`
	Results  []Payment `json:"results"`
}

func (r InitiateRequest) ToInput(userID, idempotencyKey string) types.InitiateInput {
	return types.InitiateInput{UserID: userID, Amount: r.Amount, IdempotencyKey: strings.TrimSpace(idempotencyKey)}
}

func FromInitiateResult(r *types.InitiateResult) InitiateResponse {
	return InitiateResponse{URL: r.RedirectURL, TransactionID: r.Token}
}

// ToInput converts the callback. A malformed amount is dropped since it is informational only.
func (f CallbackForm) ToInput(outcome domain.Outcome) types.CallbackInput {
	in := types.CallbackInput{
		Outcome: outcome,
		Token:   strings.TrimSpace(f.TranID),
		Method:  strings.TrimSpace(f.CardType),
		ValID:   strings.TrimSpace(f.ValID),
	}
	if amount, err := decimal.NewFromString(strings.TrimSpace(f.Amount)); err == nil {
		in.Amount = &amount
	}
	return in
}

// FromDomain renders a payment; staff views include the owning user.
func FromDomain(t *domain.Transaction, staff bool) Payment {
	if t == nil {
		return Payment{}
	}
	out := Payment{
		ID:            t.ID,
		TransactionID: t.Token,
		Amount:        t.Amount.StringFixed(2),
		Currency:      t.Currency,
		PaymentMethod: t.Method,
		Status:        string(t.Status),
		PaymentType:   string(t.Type),
		Pet:           t.PetID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if staff {
		out.User = t.UserID
	}
	return out
}

func FromPage(page projection.Page[*domain.Transaction], staff bool) PaymentPage {
	out := PaymentPage{
		Count:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasNext:  page.HasNext(),
		Results:  make([]Payment, 0, len(page.Items)),
	}
	for _, t := range page.Items {
		out.Results = append(out.Results, FromDomain(t, staff))
	}
	return out
}

// RedirectMessage is the human text appended to the frontend redirect.
func RedirectMessage(status domain.Status) string {
	switch status {
	case domain.StatusSuccess:
		return "Payment completed successfully"
	case domain.StatusFailed:
		return "Payment failed"
	case domain.StatusCancelled:
		return "Payment was cancelled"
	}
	return "Payment is being processed"
}
