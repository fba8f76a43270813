package ports

import (
	"context"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// Service defines the pets use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreatePet(ctx context.Context, actor types.Actor, input types.PetInput) (*PetProjection, error)
	GetPet(ctx context.Context, actor types.Actor, id string) (*PetProjection, error)
	ListPets(ctx context.Context, query types.ListQuery) (projection.Page[*PetProjection], error)
	ListMyPets(ctx context.Context, actor types.Actor, query types.ListQuery) (projection.Page[*PetProjection], error)
	UpdatePet(ctx context.Context, actor types.Actor, id string, input types.PetInput) (*PetProjection, error)
	DeletePet(ctx context.Context, actor types.Actor, id string) error

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, input types.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, input types.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}
