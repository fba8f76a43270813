package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Service orchestrates the pets bounded context use cases.
type Service struct {
	repo       ports.Repository
	categories ports.CategoryRepository
	publisher  events.Publisher
	now        func() time.Time
	newID      func() string
}

type Option func(*Service)

// WithPublisher sets where listing events go after a successful write.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository, categories ports.CategoryRepository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		categories: categories,
		publisher:  events.NoopPublisher,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreatePet lists a new pet owned by the caller. New listings start pending.
func (s *Service) CreatePet(ctx context.Context, actor types.Actor, input types.PetInput) (*ports.PetProjection, error) {
	name := ""
	if input.Name != nil {
		name = *input.Name
	}
	fee := decimal.Zero
	if input.Fee != nil {
		fee = *input.Fee
	}
	pet, err := domain.NewPet(s.newID(), actor.UserID, name, fee)
	if err != nil {
		return nil, mapError(err)
	}
	partial := input
	partial.Name, partial.Fee = nil, nil
	if partial.Status != nil && domain.Status(*partial.Status) == domain.StatusPending {
		partial.Status = nil
	}
	if err := s.applyInput(ctx, pet, partial, actor.Moderator); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.PetListed{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		PetID:     pet.ID,
		OwnerID:   pet.OwnerID,
		Name:      pet.Name,
	})
	return saved, nil
}

// GetPet returns a listing when the caller may see it. Hidden listings look missing.
func (s *Service) GetPet(ctx context.Context, actor types.Actor, id string) (*ports.PetProjection, error) {
	proj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !proj.Entity.VisibleTo(actor.UserID, actor.Moderator) {
		return nil, mapError(ports.ErrNotFound)
	}
	return proj, nil
}

// ListPets returns the public catalog.
func (s *Service) ListPets(ctx context.Context, query types.ListQuery) (projection.Page[*ports.PetProjection], error) {
	filter := toFilter(query)
	filter.ListedOnly = true
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return projection.Page[*ports.PetProjection]{}, mapError(err)
	}
	return page, nil
}

// ListMyPets returns every listing owned by the caller regardless of status.
func (s *Service) ListMyPets(ctx context.Context, actor types.Actor, query types.ListQuery) (projection.Page[*ports.PetProjection], error) {
	filter := toFilter(query)
	filter.OwnerID = actor.UserID
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return projection.Page[*ports.PetProjection]{}, mapError(err)
	}
	return page, nil
}

// UpdatePet applies a partial update by the owner or a moderator.
func (s *Service) UpdatePet(ctx context.Context, actor types.Actor, id string, input types.PetInput) (*ports.PetProjection, error) {
	proj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	pet := proj.Entity
	if !pet.VisibleTo(actor.UserID, actor.Moderator) {
		return nil, mapError(ports.ErrNotFound)
	}
	if !pet.ManageableBy(actor.UserID, actor.Moderator) {
		return nil, ErrForbidden
	}
	if pet.Status == domain.StatusAdopted {
		return nil, mapError(domain.ErrAlreadyAdopted)
	}
	previous := pet.Status
	if err := s.applyInput(ctx, pet, input, actor.Moderator); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	if previous != pet.Status {
		s.publish(ctx, domain.PetStatusChanged{
			BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
			PetID:      pet.ID,
			FromStatus: previous,
			ToStatus:   pet.Status,
		})
	}
	return saved, nil
}

// DeletePet removes a listing. Adopted pets stay as adoption history.
func (s *Service) DeletePet(ctx context.Context, actor types.Actor, id string) error {
	proj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapError(err)
	}
	pet := proj.Entity
	if !pet.VisibleTo(actor.UserID, actor.Moderator) {
		return mapError(ports.ErrNotFound)
	}
	if !pet.ManageableBy(actor.UserID, actor.Moderator) {
		return ErrForbidden
	}
	if pet.Status == domain.StatusAdopted {
		return mapError(domain.ErrAlreadyAdopted)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	s.publish(ctx, domain.PetDeleted{BaseEvent: domain.BaseEvent{Timestamp: s.now()}, PetID: id})
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return cat, nil
}

func (s *Service) CreateCategory(ctx context.Context, input types.CategoryInput) (*domain.Category, error) {
	name, description := "", ""
	if input.Name != nil {
		name = *input.Name
	}
	if input.Description != nil {
		description = *input.Description
	}
	cat, err := domain.NewCategory(s.newID(), name, description)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.categories.Create(ctx, cat)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, input types.CategoryInput) (*domain.Category, error) {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if input.Name != nil {
		if err := cat.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Description != nil {
		cat.Description = strings.TrimSpace(*input.Description)
	}
	saved, err := s.categories.Update(ctx, cat)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return mapError(s.categories.Delete(ctx, id))
}

func (s *Service) applyInput(ctx context.Context, pet *domain.Pet, input types.PetInput, moderator bool) error {
	if input.Name != nil {
		if err := pet.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Description != nil || input.Breed != nil {
		description, breed := pet.Description, pet.Breed
		if input.Description != nil {
			description = *input.Description
		}
		if input.Breed != nil {
			breed = *input.Breed
		}
		pet.Describe(description, breed)
	}
	if input.Age != nil {
		if err := pet.SetAge(*input.Age); err != nil {
			return err
		}
	}
	if input.Fee != nil {
		if err := pet.SetFee(*input.Fee); err != nil {
			return err
		}
	}
	if input.CategoryID != nil {
		if id := strings.TrimSpace(*input.CategoryID); id != "" {
			if _, err := s.categories.GetByID(ctx, id); err != nil {
				return err
			}
		}
		pet.SetCategory(*input.CategoryID)
	}
	if input.Visibility != nil {
		if err := pet.SetVisibility(domain.Visibility(*input.Visibility)); err != nil {
			return err
		}
	}
	if input.PhotoURLs != nil {
		pet.ReplacePhotos(*input.PhotoURLs)
	}
	if input.Status != nil && domain.Status(*input.Status) != pet.Status {
		if err := pet.ChangeStatus(domain.Status(*input.Status), moderator); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	_ = s.publisher.Publish(ctx, event)
}

func toFilter(query types.ListQuery) ports.ListFilter {
	page, size := projection.Normalize(query.Page, query.PageSize, DefaultPageSize, MaxPageSize)
	return ports.ListFilter{
		NameContains: strings.TrimSpace(query.Name),
		CategoryID:   strings.TrimSpace(query.CategoryID),
		FeeLessThan:  query.FeeLT,
		FeeMoreThan:  query.FeeGT,
		Search:       strings.TrimSpace(query.Search),
		OrderBy:      normalizeOrdering(query.Ordering),
		Page:         page,
		PageSize:     size,
	}
}

func normalizeOrdering(ordering string) string {
	switch strings.TrimSpace(ordering) {
	case ports.OrderByFee, "-" + ports.OrderByFee, ports.OrderByUpdatedAt, "-" + ports.OrderByUpdatedAt:
		return strings.TrimSpace(ordering)
	}
	return "-" + ports.OrderByUpdatedAt
}

var _ ports.Service = (*Service)(nil)
