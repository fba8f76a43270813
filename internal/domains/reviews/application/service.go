package application

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Service orchestrates the reviews use cases.
type Service struct {
	repo  ports.Repository
	pets  ports.PetDirectory
	newID func() string
}

func NewService(repo ports.Repository, pets ports.PetDirectory) *Service {
	return &Service{repo: repo, pets: pets, newID: uuid.NewString}
}

func (s *Service) ListReviews(ctx context.Context, petID string, query types.ListQuery) (projection.Page[*ports.ReviewProjection], error) {
	if err := s.pets.PetExists(ctx, petID); err != nil {
		return projection.Page[*ports.ReviewProjection]{}, mapError(err)
	}
	page, size := projection.Normalize(query.Page, query.PageSize, DefaultPageSize, MaxPageSize)
	orderBy := strings.TrimSpace(query.Ordering)
	if orderBy != "updated_at" {
		orderBy = "-updated_at"
	}
	result, err := s.repo.List(ctx, ports.ListFilter{
		PetID:      petID,
		ReviewerID: strings.TrimSpace(query.ReviewerID),
		OrderBy:    orderBy,
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		return projection.Page[*ports.ReviewProjection]{}, mapError(err)
	}
	return result, nil
}

func (s *Service) GetReview(ctx context.Context, petID, id string) (*ports.ReviewProjection, error) {
	review, err := s.repo.GetByID(ctx, petID, id)
	if err != nil {
		return nil, mapError(err)
	}
	return review, nil
}

// CreateReview records the caller's review of a pet.
func (s *Service) CreateReview(ctx context.Context, actor types.Actor, petID string, input types.ReviewInput) (*ports.ReviewProjection, error) {
	if err := s.pets.PetExists(ctx, petID); err != nil {
		return nil, mapError(err)
	}
	comments := ""
	if input.Comments != nil {
		comments = *input.Comments
	}
	review, err := domain.NewReview(s.newID(), petID, actor.UserID, comments)
	if err != nil {
		return nil, mapError(err)
	}
	if input.ImageURL != nil {
		review.AttachImage(*input.ImageURL)
	}
	saved, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) UpdateReview(ctx context.Context, actor types.Actor, petID, id string, input types.ReviewInput) (*ports.ReviewProjection, error) {
	current, err := s.repo.GetByID(ctx, petID, id)
	if err != nil {
		return nil, mapError(err)
	}
	review := current.Entity
	if !review.ManageableBy(actor.UserID, actor.Moderator) {
		return nil, ErrForbidden
	}
	if input.Comments != nil {
		if err := review.Edit(*input.Comments); err != nil {
			return nil, mapError(err)
		}
	}
	if input.ImageURL != nil {
		review.AttachImage(*input.ImageURL)
	}
	saved, err := s.repo.Update(ctx, review)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) DeleteReview(ctx context.Context, actor types.Actor, petID, id string) error {
	current, err := s.repo.GetByID(ctx, petID, id)
	if err != nil {
		return mapError(err)
	}
	if !current.Entity.ManageableBy(actor.UserID, actor.Moderator) {
		return ErrForbidden
	}
	return mapError(s.repo.Delete(ctx, petID, id))
}

var _ ports.Service = (*Service)(nil)
