package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory review store.
type Repository struct {
	mu      sync.RWMutex
	reviews map[string]*stored
	now     func() time.Time
}

type stored struct {
	review   domain.Review
	metadata projection.Metadata
}

func NewRepository() *Repository {
	return &Repository{reviews: map[string]*stored{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, review *domain.Review) (*ports.ReviewProjection, error) {
	if review == nil {
		return nil, errors.New("review is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.reviews {
		if s.review.PetID == review.PetID && s.review.ReviewerID == review.ReviewerID {
			return nil, ports.ErrAlreadyReviewed
		}
	}
	ts := r.now()
	entry := &stored{review: *review, metadata: projection.Metadata{CreatedAt: ts, UpdatedAt: ts}}
	r.reviews[review.ID] = entry
	return entry.projection(), nil
}

func (r *Repository) Update(_ context.Context, review *domain.Review) (*ports.ReviewProjection, error) {
	if review == nil {
		return nil, errors.New("review is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.reviews[review.ID]
	if !ok || entry.review.PetID != review.PetID {
		return nil, ports.ErrNotFound
	}
	entry.review.Comments = review.Comments
	entry.review.ImageURL = review.ImageURL
	entry.metadata.UpdatedAt = r.now()
	return entry.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, petID, id string) (*ports.ReviewProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.reviews[id]
	if !ok || entry.review.PetID != petID {
		return nil, ports.ErrNotFound
	}
	return entry.projection(), nil
}

func (r *Repository) Delete(_ context.Context, petID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.reviews[id]
	if !ok || entry.review.PetID != petID {
		return ports.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) (projection.Page[*ports.ReviewProjection], error) {
	r.mu.RLock()
	matches := make([]*stored, 0)
	for _, entry := range r.reviews {
		if entry.review.PetID != filter.PetID {
			continue
		}
		if filter.ReviewerID != "" && entry.review.ReviewerID != filter.ReviewerID {
			continue
		}
		matches = append(matches, entry)
	}
	r.mu.RUnlock()

	desc := strings.HasPrefix(filter.OrderBy, "-")
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].metadata.UpdatedAt, matches[j].metadata.UpdatedAt
		if a.Equal(b) {
			return matches[i].review.ID < matches[j].review.ID
		}
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})

	page, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	result := projection.Page[*ports.ReviewProjection]{Total: int64(len(matches)), Page: page, PageSize: size}
	result.Items = []*ports.ReviewProjection{}
	start := projection.Offset(page, size)
	for i := start; i < len(matches) && i < start+size; i++ {
		result.Items = append(result.Items, matches[i].projection())
	}
	return result, nil
}

func (s *stored) projection() *ports.ReviewProjection {
	review := s.review
	return projection.New(&review, s.metadata.CreatedAt, s.metadata.UpdatedAt)
}
