package ports

import (
	"context"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// Service defines the adoption use cases exposed to adapters.
type Service interface {
	AdoptPet(ctx context.Context, input types.AdoptInput) (*domain.Adoption, error)
	ListAdoptions(ctx context.Context, petID string, query types.ListQuery) (projection.Page[*domain.Adoption], error)
	GetAdoption(ctx context.Context, petID, id string) (*domain.Adoption, error)
}
