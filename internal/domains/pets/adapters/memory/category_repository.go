package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository keeps categories in memory with unique names.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: map[string]domain.Category{}}
}

func (r *CategoryRepository) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTakenLocked(category.Name, category.ID) {
		return nil, ports.ErrCategoryNameTaken
	}
	r.categories[category.ID] = *category
	out := *category
	return &out, nil
}

func (r *CategoryRepository) Update(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return nil, ports.ErrCategoryNotFound
	}
	if r.nameTakenLocked(category.Name, category.ID) {
		return nil, ports.ErrCategoryNameTaken
	}
	r.categories[category.ID] = *category
	out := *category
	return &out, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, ports.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ports.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *CategoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *CategoryRepository) nameTakenLocked(name, exceptID string) bool {
	for id, c := range r.categories {
		if id != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
