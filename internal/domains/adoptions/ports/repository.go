package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var ErrNotFound = errors.New("adoption not found")

// ListFilter narrows a pet's adoption history.
type ListFilter struct {
	PetID      string
	AdoptedBy  string
	DateAfter  *time.Time
	DateBefore *time.Time
	// OrderBy is "date", "id", or either prefixed with '-'.
	OrderBy  string
	Page     int
	PageSize int
}

// Repository reads adoption history. Adoptions are written only through the ledger.
type Repository interface {
	GetByID(ctx context.Context, petID, id string) (*domain.Adoption, error)
	List(ctx context.Context, filter ListFilter) (projection.Page[*domain.Adoption], error)
}
