package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	ledgerports "github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	DefaultPageSize       = 10
	MaxPageSize           = 100
	DefaultCurrency       = "BDT"
	DefaultGatewayTimeout = 10 * time.Second
	DefaultPendingTTL     = 30 * time.Minute
	expireBatchSize       = 200
)

// Service runs wallet top-ups: gateway initiation, callbacks, expiry, and history.
type Service struct {
	ledger      ledgerports.UnitOfWork
	repo        ports.Repository
	gateway     ports.Gateway
	customers   ports.CustomerDirectory
	idempotency ports.IdempotencyStore
	scheduler   ports.ExpiryScheduler
	publisher   events.Publisher
	logger      *slog.Logger

	baseURL        string
	currency       string
	gatewayTimeout time.Duration
	pendingTTL     time.Duration
	now            func() time.Time
	newID          func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where payment events go after commit.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key replay for Initiate.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithExpiryScheduler sets the timer that cancels a top-up left pending.
func WithExpiryScheduler(scheduler ports.ExpiryScheduler) Option {
	return func(s *Service) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

// WithCallbackBaseURL sets the public origin the gateway redirects back to.
func WithCallbackBaseURL(base string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(strings.TrimSpace(base), "/") }
}

// WithCurrency sets the currency sent to the gateway.
func WithCurrency(currency string) Option {
	return func(s *Service) {
		if c := strings.TrimSpace(currency); c != "" {
			s.currency = c
		}
	}
}

// WithGatewayTimeout bounds each gateway session request.
func WithGatewayTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.gatewayTimeout = d
		}
	}
}

// WithPendingTTL sets how long a top-up may stay pending.
func WithPendingTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pendingTTL = d
		}
	}
}

// WithLogger receives failures the service tolerates, such as an unscheduled expiry.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
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

// NewService wires the payment use cases; options default to a no-op scheduler and publisher.
func NewService(ledger ledgerports.UnitOfWork, repo ports.Repository, gateway ports.Gateway, customers ports.CustomerDirectory, opts ...Option) *Service {
	s := &Service{
		ledger:         ledger,
		repo:           repo,
		gateway:        gateway,
		customers:      customers,
		scheduler:      ports.NoopScheduler{},
		publisher:      events.NoopPublisher,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		currency:       DefaultCurrency,
		gatewayTimeout: DefaultGatewayTimeout,
		pendingTTL:     DefaultPendingTTL,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PendingTTL is how long a top-up may stay pending before expiry cancels it.
func (s *Service) PendingTTL() time.Duration { return s.pendingTTL }

// Initiate opens a gateway session and records the pending top-up.
// Nothing is written unless the gateway accepted the session.
func (s *Service) Initiate(ctx context.Context, input types.InitiateInput) (*types.InitiateResult, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, mapError(domain.ErrEmptyUser)
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, mapError(err)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var hash string
	if key != "" && s.idempotency != nil {
		var err error
		if hash, err = Fingerprint(input.UserID, input.Amount); err != nil {
			return nil, err
		}
		existing, err := s.idempotency.Get(ctx, scopedKey(input.UserID, key))
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return replay(existing, hash)
		}
	}

	customer, err := s.customers.Customer(ctx, input.UserID)
	if err != nil {
		return nil, mapError(err)
	}

	now := s.now().UTC()
	token := domain.NewToken(now, s.newID())
	pending, err := domain.NewPendingIncome(s.newID(), token, input.UserID, input.Amount, s.currency, now)
	if err != nil {
		return nil, mapError(err)
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	session, err := s.gateway.CreateSession(gwCtx, ports.SessionRequest{
		Token:      token,
		Amount:     input.Amount,
		Currency:   s.currency,
		Customer:   customer,
		SuccessURL: s.callbackURL("success"),
		FailURL:    s.callbackURL("fail"),
		CancelURL:  s.callbackURL("cancel"),
	})
	cancel()
	if err != nil {
		return nil, gatewayError(err)
	}
	if session == nil || strings.TrimSpace(session.RedirectURL) == "" {
		return nil, gatewayError(fmt.Errorf("%w: empty redirect url", ports.ErrGatewayRejected))
	}

	if err := s.repo.Create(ctx, pending); err != nil {
		return nil, fmt.Errorf("store pending payment: %w", err)
	}
	result := &types.InitiateResult{Token: token, RedirectURL: session.RedirectURL}

	if hash != "" {
		stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         scopedKey(input.UserID, key),
			RequestHash: hash,
			Token:       token,
			RedirectURL: session.RedirectURL,
		})
		if err != nil {
			return nil, mapError(err)
		}
		// a concurrent request with the same key won; ours stays pending until expiry
		if stored != nil && stored.Token != token {
			return replay(stored, hash)
		}
	}

	// the periodic sweep still catches rows whose timer could not be scheduled
	if err := s.scheduler.ScheduleExpiry(ctx, token, s.pendingTTL); err != nil {
		s.logger.WarnContext(ctx, "payment expiry not scheduled; left to the pending sweep",
			slog.String("payment.token", token),
			slog.String("error", err.Error()),
		)
	}
	_ = s.publisher.Publish(ctx, domain.PaymentInitiated{Token: token, UserID: input.UserID, Amount: input.Amount, Timestamp: now})
	return result, nil
}

func replay(record *ports.IdempotencyRecord, hash string) (*types.InitiateResult, error) {
	if record.RequestHash != hash {
		return nil, mapError(ports.ErrIdempotencyConflict)
	}
	return &types.InitiateResult{Token: record.Token, RedirectURL: record.RedirectURL, Replayed: true}, nil
}

func (s *Service) callbackURL(kind string) string {
	return s.baseURL + "/payments/" + kind + "/"
}

// HandleCallback applies a gateway redirect. A payment that is already terminal is
// reported as-is, so replayed success callbacks credit the wallet once.
func (s *Service) HandleCallback(ctx context.Context, input types.CallbackInput) (*types.CallbackResult, error) {
	status, err := input.Outcome.Status()
	if err != nil {
		return nil, mapError(err)
	}
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, mapError(domain.ErrEmptyToken)
	}

	result := &types.CallbackResult{Token: token}
	var payment *domain.Transaction
	err = s.ledger.Do(ctx, func(ctx context.Context, tx ledgerports.Tx) error {
		locked, err := tx.LockPaymentByToken(ctx, token)
		if err != nil {
			return err
		}
		payment = locked
		if locked.Status.Terminal() {
			result.Status = locked.Status
			result.AlreadyFinal = true
			return nil
		}
		if err := tx.FinalizePayment(ctx, token, status, input.Method); err != nil {
			return err
		}
		result.Status = status
		if locked.Credits(status) {
			if err := tx.CreditUser(ctx, locked.UserID, locked.Amount); err != nil {
				return err
			}
			result.Credited = true
		}
		return nil
	})
	if errors.Is(err, ledgerports.ErrPaymentFinalized) {
		// lost a race with another callback or the expiry sweep
		current, getErr := s.repo.GetByToken(ctx, token)
		if getErr != nil {
			return nil, mapError(getErr)
		}
		return &types.CallbackResult{Token: token, Status: current.Status, AlreadyFinal: true}, nil
	}
	if err != nil {
		return nil, mapError(err)
	}

	if input.Amount != nil && !input.Amount.Equal(payment.Amount) {
		result.AmountMismatch = true
	}
	if !result.AlreadyFinal {
		_ = s.publisher.Publish(ctx, domain.PaymentFinalized{
			Token:     token,
			UserID:    payment.UserID,
			Status:    result.Status,
			Amount:    payment.Amount,
			Credited:  result.Credited,
			Timestamp: s.now().UTC(),
		})
	}
	return result, nil
}

// ExpirePending cancels every pending payment created more than olderThan ago.
func (s *Service) ExpirePending(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = s.pendingTTL
	}
	cutoff := s.now().UTC().Add(-olderThan)
	expired := 0
	for {
		batch, err := s.repo.ListPendingBefore(ctx, cutoff, expireBatchSize)
		if err != nil {
			return expired, err
		}
		moved := 0
		for _, payment := range batch {
			ok, err := s.ExpireToken(ctx, payment.Token)
			if err != nil {
				return expired, err
			}
			if ok {
				moved++
			}
		}
		expired += moved
		if len(batch) < expireBatchSize || moved == 0 {
			return expired, nil
		}
	}
}

// ExpireToken cancels one payment if it is still pending. It reports whether it moved.
func (s *Service) ExpireToken(ctx context.Context, token string) (bool, error) {
	var payment *domain.Transaction
	err := s.ledger.Do(ctx, func(ctx context.Context, tx ledgerports.Tx) error {
		locked, err := tx.LockPaymentByToken(ctx, token)
		if err != nil {
			return err
		}
		if locked.Status.Terminal() {
			return nil
		}
		if err := tx.FinalizePayment(ctx, token, domain.StatusCancelled, domain.MethodExpired); err != nil {
			return err
		}
		payment = locked
		return nil
	})
	if errors.Is(err, ledgerports.ErrPaymentFinalized) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	if payment == nil {
		return false, nil
	}
	_ = s.publisher.Publish(ctx, domain.PaymentFinalized{
		Token:     token,
		UserID:    payment.UserID,
		Status:    domain.StatusCancelled,
		Amount:    payment.Amount,
		Timestamp: s.now().UTC(),
	})
	return true, nil
}

// List returns payment history inside scope.
func (s *Service) List(ctx context.Context, scope types.Scope, query types.ListQuery) (projection.Page[*domain.Transaction], error) {
	var empty projection.Page[*domain.Transaction]
	if !scope.All && strings.TrimSpace(scope.UserID) == "" {
		return empty, ErrForbidden
	}
	filter, err := toFilter(query)
	if err != nil {
		return empty, err
	}
	if !scope.All {
		filter.UserID = scope.UserID
	}
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return empty, mapError(err)
	}
	return page, nil
}

// Get returns one payment. Rows outside scope look missing.
func (s *Service) Get(ctx context.Context, scope types.Scope, id string) (*domain.Transaction, error) {
	if !scope.All && strings.TrimSpace(scope.UserID) == "" {
		return nil, ErrForbidden
	}
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !scope.All && payment.UserID != scope.UserID {
		return nil, mapError(ports.ErrNotFound)
	}
	return payment, nil
}

func toFilter(query types.ListQuery) (ports.ListFilter, error) {
	page, size := projection.Normalize(query.Page, query.PageSize, DefaultPageSize, MaxPageSize)
	filter := ports.ListFilter{
		Token:    strings.TrimSpace(query.Token),
		Method:   strings.TrimSpace(query.Method),
		PetID:    strings.TrimSpace(query.PetID),
		Search:   strings.TrimSpace(query.Search),
		OrderBy:  normalizeOrdering(query.Ordering),
		Page:     page,
		PageSize: size,
	}
	if v := strings.TrimSpace(query.Status); v != "" {
		status := domain.Status(v)
		if !status.Valid() {
			return filter, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, v)
		}
		filter.Status = status
	}
	if v := strings.TrimSpace(query.Type); v != "" {
		typ := domain.Type(v)
		if !typ.Valid() {
			return filter, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, v)
		}
		filter.Type = typ
	}
	return filter, nil
}

func normalizeOrdering(ordering string) string {
	switch o := strings.TrimSpace(ordering); o {
	case ports.OrderByAmount, "-" + ports.OrderByAmount, ports.OrderByCreatedAt, "-" + ports.OrderByCreatedAt:
		return o
	}
	return "-" + ports.OrderByCreatedAt
}

var _ ports.Service = (*Service)(nil)
