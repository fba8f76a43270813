package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrNotFound          = errors.New("pet not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
)

// PetProjection is a pet together with its persistence timestamps.
type PetProjection = projection.Projection[*domain.Pet]

// Ordering values accepted by ListFilter.OrderBy; a leading '-' sorts descending.
const (
	OrderByFee       = "fee"
	OrderByUpdatedAt = "updated_at"
)

// ListFilter narrows a pet listing.
type ListFilter struct {
	// OwnerID restricts to one owner's listings.
	OwnerID string
	// ListedOnly restricts to approved public listings.
	ListedOnly   bool
	NameContains string
	CategoryID   string
	FeeLessThan  *decimal.Decimal
	FeeMoreThan  *decimal.Decimal
	// Search matches name, breed, description, or category name.
	Search   string
	OrderBy  string
	Page     int
	PageSize int
}

// Repository persists pet listings.
type Repository interface {
	Create(ctx context.Context, pet *domain.Pet) (*PetProjection, error)
	// Update rewrites the listing unless the stored row is already adopted.
	Update(ctx context.Context, pet *domain.Pet) (*PetProjection, error)
	GetByID(ctx context.Context, id string) (*PetProjection, error)
	// Delete removes the listing unless the stored row is already adopted.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) (projection.Page[*PetProjection], error)
}

// CategoryRepository persists catalog categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Category, error)
}
