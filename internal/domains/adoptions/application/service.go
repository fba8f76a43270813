package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	ledgerports "github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultCurrency = "BDT"
)

// Service runs the adoption workflow on top of the ledger.
type Service struct {
	ledger    ledgerports.UnitOfWork
	repo      ports.Repository
	publisher events.Publisher
	currency  string
	now       func() time.Time
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where adoption events go after commit.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithCurrency sets the currency recorded on the fee expense row.
func WithCurrency(currency string) Option {
	return func(s *Service) {
		if c := strings.TrimSpace(currency); c != "" {
			s.currency = c
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the adoption use cases over the ledger and the read repository.
func NewService(ledger ledgerports.UnitOfWork, repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		ledger:    ledger,
		repo:      repo,
		publisher: events.NoopPublisher,
		currency:  DefaultCurrency,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AdoptPet debits the fee, records the adoption and the expense, and marks the pet adopted
// in one ledger unit. Pet and adopter rows stay locked for the whole unit, so of two
// concurrent adoptions of one pet the second sees it adopted and fails with ErrConflict.
func (s *Service) AdoptPet(ctx context.Context, input types.AdoptInput) (*domain.Adoption, error) {
	adopterID := strings.TrimSpace(input.AdopterID)
	if adopterID == "" {
		adopterID = strings.TrimSpace(input.ActorID)
	}
	if strings.TrimSpace(input.PetID) == "" {
		return nil, mapError(domain.ErrEmptyPet)
	}
	if adopterID == "" {
		return nil, mapError(domain.ErrEmptyAdopter)
	}

	var adoption *domain.Adoption
	err := s.ledger.Do(ctx, func(ctx context.Context, tx ledgerports.Tx) error {
		pet, err := tx.LockPet(ctx, input.PetID)
		if err != nil {
			return err
		}
		if err := pet.Adoptable(); err != nil {
			return err
		}
		adopter, err := tx.LockUser(ctx, adopterID)
		if err != nil {
			return err
		}
		if !adopter.CanAfford(pet.Fee) {
			return ledgerports.ErrInsufficientFunds
		}

		now := s.now().UTC()
		created, err := domain.NewAdoption(s.newID(), pet.ID, adopter.ID, pet.Fee, now)
		if err != nil {
			return err
		}
		// free adoptions move no money
		if pet.Fee.IsPositive() {
			if err := tx.DebitUser(ctx, adopter.ID, pet.Fee); err != nil {
				return err
			}
			expense := paymentdomain.NewAdoptionExpense(s.newID(), paymentdomain.NewToken(now, s.newID()), adopter.ID, pet.ID, pet.Fee, s.currency, now)
			if err := tx.RecordPayment(ctx, expense); err != nil {
				return err
			}
		}
		if err := tx.RecordAdoption(ctx, created); err != nil {
			return err
		}
		if err := tx.SetPetStatus(ctx, pet.ID, petdomain.StatusAdopted, adopter.ID); err != nil {
			return err
		}
		adoption = created
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	_ = s.publisher.Publish(ctx, domain.AdoptionCompleted{
		AdoptionID: adoption.ID,
		PetID:      adoption.PetID,
		AdopterID:  adoption.AdoptedBy,
		ActorID:    input.ActorID,
		Fee:        adoption.Fee,
		Timestamp:  adoption.Date,
	})
	return adoption, nil
}

// ListAdoptions returns the adoption history of one pet.
func (s *Service) ListAdoptions(ctx context.Context, petID string, query types.ListQuery) (projection.Page[*domain.Adoption], error) {
	page, size := projection.Normalize(query.Page, query.PageSize, DefaultPageSize, MaxPageSize)
	result, err := s.repo.List(ctx, ports.ListFilter{
		PetID:      petID,
		AdoptedBy:  strings.TrimSpace(query.AdoptedBy),
		DateAfter:  query.DateAfter,
		DateBefore: query.DateBefore,
		OrderBy:    normalizeOrdering(query.Ordering),
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		return projection.Page[*domain.Adoption]{}, mapError(err)
	}
	return result, nil
}

// GetAdoption returns one adoption of petID, or ErrNotFound.
func (s *Service) GetAdoption(ctx context.Context, petID, id string) (*domain.Adoption, error) {
	adoption, err := s.repo.GetByID(ctx, petID, id)
	if err != nil {
		return nil, mapError(err)
	}
	return adoption, nil
}

func normalizeOrdering(ordering string) string {
	switch o := strings.TrimSpace(ordering); o {
	case "date", "-date", "id", "-id":
		return o
	}
	return "-date"
}

var _ ports.Service = (*Service)(nil)
