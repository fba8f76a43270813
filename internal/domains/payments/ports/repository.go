package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var ErrNotFound = errors.New("payment not found")

// Ordering values accepted by ListFilter.OrderBy; a leading '-' sorts descending.
const (
	OrderByAmount    = "amount"
	OrderByCreatedAt = "created_at"
)

// ListFilter narrows a payment history listing.
type ListFilter struct {
	// UserID scopes to one wallet; empty lists every wallet.
	UserID   string
	Token    string
	Method   string
	Status   domain.Status
	PetID    string
	Type     domain.Type
	// Search matches the related pet's name, case-insensitively.
	Search   string
	OrderBy  string
	Page     int
	PageSize int
}

// Repository reads and creates payment rows. Status changes on existing rows
// go through the ledger so they commit with the balance they affect.
type Repository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByToken(ctx context.Context, token string) (*domain.Transaction, error)
	List(ctx context.Context, filter ListFilter) (projection.Page[*domain.Transaction], error)
	// ListPendingBefore returns up to limit pending rows created before cutoff, oldest first.
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error)
}
