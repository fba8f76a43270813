package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// PetNames resolves pet names for ListFilter.Search.
type PetNames interface {
	PetName(id string) (string, bool)
}

// Repository keeps payment rows in memory, indexed by id and token.
type Repository struct {
	mu       sync.RWMutex
	byID     map[string]*domain.Transaction
	byToken  map[string]string
	petNames PetNames
}

func NewRepository() *Repository {
	return &Repository{byID: map[string]*domain.Transaction{}, byToken: map[string]string{}}
}

// UsePetNames enables search by pet name. Without it a search matches nothing.
func (r *Repository) UsePetNames(names PetNames) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.petNames = names
}

var errDuplicateToken = errors.New("payment token already exists")

func (r *Repository) Create(_ context.Context, tx *domain.Transaction) error {
	if tx == nil {
		return errors.New("payment is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byToken[tx.Token]; exists {
		return errDuplicateToken
	}
	clone := *tx
	r.byID[clone.ID] = &clone
	r.byToken[clone.Token] = clone.ID
	return nil
}

// Finalize moves a pending row to status. Only the ledger calls it, on commit.
func (r *Repository) Finalize(_ context.Context, token string, status domain.Status, method string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byToken[token]
	if !ok {
		return ports.ErrNotFound
	}
	return r.byID[id].Finalize(status, method, now)
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *tx
	return &clone, nil
}

func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Transaction, error) {
	r.mu.RLock()
	id, ok := r.byToken[token]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) (projection.Page[*domain.Transaction], error) {
	r.mu.RLock()
	matches := make([]domain.Transaction, 0)
	for _, tx := range r.byID {
		if matchesFilter(tx, filter) {
			matches = append(matches, *tx)
		}
	}
	names := r.petNames
	r.mu.RUnlock()
	if filter.Search != "" {
		matches = searchPetName(matches, names, filter.Search)
	}

	desc := strings.HasPrefix(filter.OrderBy, "-")
	byAmount := strings.TrimPrefix(filter.OrderBy, "-") == ports.OrderByAmount
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		var cmp int
		if byAmount {
			cmp = a.Amount.Cmp(b.Amount)
		} else {
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})

	page, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	out := projection.Page[*domain.Transaction]{Total: int64(len(matches)), Page: page, PageSize: size, Items: []*domain.Transaction{}}
	start := projection.Offset(page, size)
	for i := start; i < len(matches) && i < start+size; i++ {
		tx := matches[i]
		out.Items = append(out.Items, &tx)
	}
	return out, nil
}

func (r *Repository) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Transaction, 0)
	for _, tx := range r.byID {
		if tx.Status == domain.StatusPending && tx.CreatedAt.Before(cutoff) {
			clone := *tx
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func searchPetName(txs []domain.Transaction, names PetNames, search string) []domain.Transaction {
	out := txs[:0]
	if names == nil {
		return out
	}
	needle := strings.ToLower(search)
	for _, tx := range txs {
		if tx.PetID == "" {
			continue
		}
		if name, ok := names.PetName(tx.PetID); ok && strings.Contains(strings.ToLower(name), needle) {
			out = append(out, tx)
		}
	}
	return out
}

func matchesFilter(tx *domain.Transaction, f ports.ListFilter) bool {
	switch {
	case f.UserID != "" && tx.UserID != f.UserID:
		return false
	case f.Token != "" && tx.Token != f.Token:
		return false
	case f.Method != "" && !strings.Contains(strings.ToLower(tx.Method), strings.ToLower(f.Method)):
		return false
	case f.Status != "" && tx.Status != f.Status:
		return false
	case f.PetID != "" && tx.PetID != f.PetID:
		return false
	case f.Type != "" && tx.Type != f.Type:
		return false
	}
	return true
}
