package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("pet already reviewed by this user")
	ErrPetNotFound     = errors.New("pet not found")
)

// ReviewProjection is a review with persistence timestamps.
type ReviewProjection = projection.Projection[*domain.Review]

// ListFilter narrows a per-pet review listing.
type ListFilter struct {
	PetID      string
	ReviewerID string
	// OrderBy is "updated_at" or "-updated_at".
	OrderBy  string
	Page     int
	PageSize int
}

// Repository persists reviews. Create enforces one review per (pet, reviewer).
type Repository interface {
	Create(ctx context.Context, review *domain.Review) (*ReviewProjection, error)
	Update(ctx context.Context, review *domain.Review) (*ReviewProjection, error)
	GetByID(ctx context.Context, petID, id string) (*ReviewProjection, error)
	Delete(ctx context.Context, petID, id string) error
	List(ctx context.Context, filter ListFilter) (projection.Page[*ReviewProjection], error)
}

// PetDirectory answers whether a pet exists, without exposing the pets context.
type PetDirectory interface {
	// PetExists returns ErrPetNotFound for unknown pets.
	PetExists(ctx context.Context, petID string) error
}
