package ports

import (
	"context"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/application/types"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// Service defines the reviews use cases exposed to adapters.
type Service interface {
	ListReviews(ctx context.Context, petID string, query types.ListQuery) (projection.Page[*ReviewProjection], error)
	GetReview(ctx context.Context, petID, id string) (*ReviewProjection, error)
	CreateReview(ctx context.Context, actor types.Actor, petID string, input types.ReviewInput) (*ReviewProjection, error)
	UpdateReview(ctx context.Context, actor types.Actor, petID, id string, input types.ReviewInput) (*ReviewProjection, error)
	DeleteReview(ctx context.Context, actor types.Actor, petID, id string) error
}
