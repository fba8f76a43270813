package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// ErrStatusChanged is returned by CompareAndSetStatus when the stored status
// is no longer the one the caller observed.
var ErrStatusChanged = errors.New("pet status changed")

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	// guard is held by Update, Delete, and for the whole of a ledger unit,
	// so owner edits cannot interleave with an adoption in progress.
	guard      sync.Mutex
	mu         sync.RWMutex
	pets       map[string]*storedPet
	categories *CategoryRepository
	now        func() time.Time
}

type storedPet struct {
	pet      *domain.Pet
	metadata projection.Metadata
}

// NewRepository constructs an empty store. categories backs search by category
// name and may be nil.
func NewRepository(categories *CategoryRepository) *Repository {
	return &Repository{
		pets:       map[string]*storedPet{},
		categories: categories,
		now:        time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *Repository) Create(_ context.Context, pet *domain.Pet) (*ports.PetProjection, error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pets[pet.ID]; exists {
		return nil, errors.New("pet already exists")
	}
	ts := r.now()
	stored := &storedPet{pet: pet.Clone(), metadata: projection.Metadata{CreatedAt: ts, UpdatedAt: ts}}
	r.pets[pet.ID] = stored
	return projectionCopy(stored), nil
}

// Guard returns the lock shared with the memory ledger.
func (r *Repository) Guard() sync.Locker {
	return &r.guard
}

func (r *Repository) Update(_ context.Context, pet *domain.Pet) (*ports.PetProjection, error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	r.guard.Lock()
	defer r.guard.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pets[pet.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.pet.Status == domain.StatusAdopted {
		return nil, domain.ErrAlreadyAdopted
	}
	next := pet.Clone()
	// adoption fields are owned by the ledger
	next.AdoptedBy = entry.pet.AdoptedBy
	if next.Status == domain.StatusAdopted {
		return nil, domain.ErrStatusNotAllowed
	}
	entry.pet = next
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

// PetName reports the name of pet id.
func (r *Repository) PetName(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pets[id]
	if !ok {
		return "", false
	}
	return entry.pet.Name, true
}

func (r *Repository) GetByID(_ context.Context, id string) (*ports.PetProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.guard.Lock()
	defer r.guard.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pets[id]
	if !ok {
		return ports.ErrNotFound
	}
	if entry.pet.Status == domain.StatusAdopted {
		return domain.ErrAlreadyAdopted
	}
	delete(r.pets, id)
	return nil
}

// SetStatus writes the adoption transition staged by the ledger.
func (r *Repository) SetStatus(_ context.Context, id string, status domain.Status, adoptedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pets[id]
	if !ok {
		return ports.ErrNotFound
	}
	entry.pet.Status = status
	entry.pet.AdoptedBy = adoptedBy
	entry.metadata.UpdatedAt = r.now()
	return nil
}

// CompareAndSetStatus writes the transition only while the pet still has status expected.
func (r *Repository) CompareAndSetStatus(_ context.Context, id string, expected, status domain.Status, adoptedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pets[id]
	if !ok {
		return ports.ErrNotFound
	}
	if entry.pet.Status != expected {
		return ErrStatusChanged
	}
	entry.pet.Status = status
	entry.pet.AdoptedBy = adoptedBy
	entry.metadata.UpdatedAt = r.now()
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) (projection.Page[*ports.PetProjection], error) {
	categoryNames := r.categoryNames()

	r.mu.RLock()
	matches := make([]*storedPet, 0, len(r.pets))
	for _, entry := range r.pets {
		if matchesFilter(entry.pet, filter, categoryNames) {
			matches = append(matches, entry)
		}
	}
	r.mu.RUnlock()

	sortPets(matches, filter.OrderBy)

	page, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	result := projection.Page[*ports.PetProjection]{Total: int64(len(matches)), Page: page, PageSize: size}
	start := projection.Offset(page, size)
	if start >= len(matches) {
		result.Items = []*ports.PetProjection{}
		return result, nil
	}
	end := start + size
	if end > len(matches) {
		end = len(matches)
	}
	result.Items = make([]*ports.PetProjection, 0, end-start)
	for _, entry := range matches[start:end] {
		result.Items = append(result.Items, projectionCopy(entry))
	}
	return result, nil
}

func (r *Repository) categoryNames() map[string]string {
	if r.categories == nil {
		return nil
	}
	list, _ := r.categories.List(context.Background())
	names := make(map[string]string, len(list))
	for _, c := range list {
		names[c.ID] = strings.ToLower(c.Name)
	}
	return names
}

func matchesFilter(p *domain.Pet, f ports.ListFilter, categoryNames map[string]string) bool {
	if f.OwnerID != "" && p.OwnerID != f.OwnerID {
		return false
	}
	if f.ListedOnly && !p.Listed() {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.FeeLessThan != nil && !p.Fee.LessThan(*f.FeeLessThan) {
		return false
	}
	if f.FeeMoreThan != nil && !p.Fee.GreaterThan(*f.FeeMoreThan) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		fields := []string{p.Name, p.Breed, p.Description, categoryNames[p.CategoryID]}
		found := false
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortPets(list []*storedPet, orderBy string) {
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var less bool
		switch field {
		case ports.OrderByFee:
			if a.pet.Fee.Equal(b.pet.Fee) {
				return a.pet.ID < b.pet.ID
			}
			less = a.pet.Fee.LessThan(b.pet.Fee)
		default:
			if a.metadata.UpdatedAt.Equal(b.metadata.UpdatedAt) {
				return a.pet.ID < b.pet.ID
			}
			less = a.metadata.UpdatedAt.Before(b.metadata.UpdatedAt)
		}
		if desc {
			return !less
		}
		return less
	})
}

func projectionCopy(entry *storedPet) *ports.PetProjection {
	return projection.New(entry.pet.Clone(), entry.metadata.CreatedAt, entry.metadata.UpdatedAt)
}
