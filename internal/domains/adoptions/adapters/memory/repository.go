package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps adoption history in memory.
type Repository struct {
	mu        sync.RWMutex
	adoptions map[string]domain.Adoption
}

func NewRepository() *Repository {
	return &Repository{adoptions: map[string]domain.Adoption{}}
}

// Create stores an adoption. Only the ledger calls it, on commit.
func (r *Repository) Create(_ context.Context, adoption *domain.Adoption) error {
	if adoption == nil {
		return errors.New("adoption is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adoptions[adoption.ID]; exists {
		return errors.New("adoption already exists")
	}
	r.adoptions[adoption.ID] = *adoption
	return nil
}

func (r *Repository) GetByID(_ context.Context, petID, id string) (*domain.Adoption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adoptions[id]
	if !ok || a.PetID != petID {
		return nil, ports.ErrNotFound
	}
	return &a, nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) (projection.Page[*domain.Adoption], error) {
	r.mu.RLock()
	matches := make([]domain.Adoption, 0)
	for _, a := range r.adoptions {
		if a.PetID != filter.PetID {
			continue
		}
		if filter.AdoptedBy != "" && a.AdoptedBy != filter.AdoptedBy {
			continue
		}
		if filter.DateAfter != nil && !a.Date.After(*filter.DateAfter) {
			continue
		}
		if filter.DateBefore != nil && !a.Date.Before(*filter.DateBefore) {
			continue
		}
		matches = append(matches, a)
	}
	r.mu.RUnlock()

	desc := strings.HasPrefix(filter.OrderBy, "-")
	byID := strings.TrimPrefix(filter.OrderBy, "-") == "id"
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		less := a.ID < b.ID
		if !byID && !a.Date.Equal(b.Date) {
			less = a.Date.Before(b.Date)
		}
		if desc {
			return !less && a.ID != b.ID
		}
		return less
	})

	page, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	out := projection.Page[*domain.Adoption]{Total: int64(len(matches)), Page: page, PageSize: size, Items: []*domain.Adoption{}}
	start := projection.Offset(page, size)
	for i := start; i < len(matches) && i < start+size; i++ {
		a := matches[i]
		out.Items = append(out.Items, &a)
	}
	return out, nil
}
