package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/clients/http/sslcommerz"
	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptionobs "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability"
	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	ledgermemory "github.com/Apurer/pet-adoption-api/internal/domains/ledger/adapters/memory"
	ledgerpostgres "github.com/Apurer/pet-adoption-api/internal/domains/ledger/adapters/persistence/postgres"
	ledgerports "github.com/Apurer/pet-adoption-api/internal/domains/ledger/ports"
	paymentgateway "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/external/gateway"
	paymentusers "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/external/users"
	paymentmemory "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/memory"
	paymentobs "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/observability"
	paymentpostgres "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/persistence/postgres"
	paymentredis "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/redis"
	paymentworkflows "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/workflows"
	paymentsapp "github.com/Apurer/pet-adoption-api/internal/domains/payments/application"
	paymentports "github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petobs "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability"
	petpostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	reviewpets "github.com/Apurer/pet-adoption-api/internal/domains/reviews/adapters/external/pets"
	reviewmemory "github.com/Apurer/pet-adoption-api/internal/domains/reviews/adapters/memory"
	reviewobs "github.com/Apurer/pet-adoption-api/internal/domains/reviews/adapters/observability"
	reviewpostgres "github.com/Apurer/pet-adoption-api/internal/domains/reviews/adapters/persistence/postgres"
	reviewsapp "github.com/Apurer/pet-adoption-api/internal/domains/reviews/application"
	reviewports "github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	usersapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	platformevents "github.com/Apurer/pet-adoption-api/internal/platform/events"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	platformredis "github.com/Apurer/pet-adoption-api/internal/platform/redis"
	platformtemporal "github.com/Apurer/pet-adoption-api/internal/platform/temporal"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

// Backend is every wired use case plus the infrastructure handles behind them.
type Backend struct {
	Users     userports.Service
	Sessions  userports.SessionStore
	Pets      petports.Service
	Reviews   reviewports.Service
	Adoptions adoptionports.Service
	Payments  paymentports.Service

	DB       *gorm.DB
	Redis    *goredis.Client
	Temporal client.Client

	// Sweeping is set when no durable timer schedules payment expiry.
	Sweeping bool

	closers []func()
}

// BuildOptions toggles process-specific wiring.
type BuildOptions struct {
	// Temporal dials the cluster and schedules expiry through workflows.
	Temporal bool
}

type repositories struct {
	users       userports.Repository
	sessions    userports.SessionStore
	pets        petports.Repository
	categories  petports.CategoryRepository
	reviews     reviewports.Repository
	adoptions   adoptionports.Repository
	payments    paymentports.Repository
	idempotency paymentports.IdempotencyStore
	ledger      ledgerports.UnitOfWork
}

// Build wires storage, brokers, the gateway, and the decorated services.
func Build(ctx context.Context, cfg Config, instruments *platformobservability.Instruments, opts BuildOptions) (*Backend, error) {
	logger := instruments.Logger
	b := &Backend{}

	repos, err := b.buildRepositories(ctx, cfg, logger)
	if err != nil {
		b.Close()
		return nil, err
	}

	publisher, err := b.buildPublisher(cfg, logger)
	if err != nil {
		b.Close()
		return nil, err
	}

	gateway, err := buildGateway(cfg)
	if err != nil {
		b.Close()
		return nil, err
	}

	var scheduler paymentports.ExpiryScheduler = paymentports.NoopScheduler{}
	b.Sweeping = true
	if opts.Temporal && !cfg.TemporalDisabled {
		tc, err := platformtemporal.Dial(cfg.TemporalAddress, cfg.TemporalNamespace, logger, instruments.Tracer("temporal-client"))
		if err != nil {
			logger.Warn("Temporal unavailable, expiring payments with the periodic sweep", slog.String("error", err.Error()))
		} else {
			b.Temporal = tc
			b.closers = append(b.closers, tc.Close)
			scheduler = paymentworkflows.NewTemporalScheduler(tc)
			b.Sweeping = false
			logger.Info("Temporal payment expiry enabled", slog.String("namespace", cfg.TemporalNamespace))
		}
	}

	b.Users = userobs.New(
		usersapp.NewService(repos.users, repos.sessions, usersapp.WithSessionTTL(cfg.SessionTTL)),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	b.Sessions = repos.sessions
	b.Pets = petobs.New(
		petsapp.NewService(repos.pets, repos.categories, petsapp.WithPublisher(publisher)),
		petobs.WithLogger(logger),
		petobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	b.Reviews = reviewobs.New(
		reviewsapp.NewService(repos.reviews, reviewpets.NewDirectory(repos.pets)),
		reviewobs.WithLogger(logger),
		reviewobs.WithTracer(instruments.Tracer("internal.reviews.application")),
		reviewobs.WithMeter(instruments.Meter("internal.reviews.application")),
	)
	b.Adoptions = adoptionobs.New(
		adoptionsapp.NewService(repos.ledger, repos.adoptions,
			adoptionsapp.WithPublisher(publisher),
			adoptionsapp.WithCurrency(cfg.PaymentCurrency),
		),
		adoptionobs.WithLogger(logger),
		adoptionobs.WithTracer(instruments.Tracer("internal.adoptions.application")),
		adoptionobs.WithMeter(instruments.Meter("internal.adoptions.application")),
	)
	b.Payments = paymentobs.New(
		paymentsapp.NewService(repos.ledger, repos.payments, gateway, paymentusers.NewDirectory(repos.users),
			paymentsapp.WithPublisher(publisher),
			paymentsapp.WithIdempotencyStore(repos.idempotency),
			paymentsapp.WithExpiryScheduler(scheduler),
			paymentsapp.WithCallbackBaseURL(cfg.PublicBaseURL),
			paymentsapp.WithCurrency(cfg.PaymentCurrency),
			paymentsapp.WithGatewayTimeout(cfg.GatewayTimeout),
			paymentsapp.WithPendingTTL(cfg.PaymentPendingTTL),
			paymentsapp.WithLogger(logger),
		),
		paymentobs.WithLogger(logger),
		paymentobs.WithTracer(instruments.Tracer("internal.payments.application")),
		paymentobs.WithMeter(instruments.Meter("internal.payments.application")),
	)
	return b, nil
}

// Close releases connections in reverse order of acquisition.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func (b *Backend) buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (repositories, error) {
	var repos repositories
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory storage")
		users := usermemory.NewRepository()
		categories := petmemory.NewCategoryRepository()
		pets := petmemory.NewRepository(categories)
		payments := paymentmemory.NewRepository()
		payments.UsePetNames(pets)
		adoptions := adoptionmemory.NewRepository()
		repos = repositories{
			users:       users,
			sessions:    usermemory.NewSessionStore(),
			pets:        pets,
			categories:  categories,
			reviews:     reviewmemory.NewRepository(),
			adoptions:   adoptions,
			payments:    payments,
			idempotency: paymentmemory.NewIdempotencyStore(),
			ledger:      ledgermemory.NewUnitOfWork(users, pets, payments, adoptions),
		}
	} else {
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return repos, err
		}
		b.DB = db
		b.closers = append(b.closers, func() { platformpostgres.Close(db) })
		if err := migrations.Run(db); err != nil {
			return repos, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("storage configured with postgres")
		repos = repositories{
			users:       userpostgres.NewRepository(db),
			sessions:    userpostgres.NewSessionStore(db),
			pets:        petpostgres.NewRepository(db),
			categories:  petpostgres.NewCategoryRepository(db),
			reviews:     reviewpostgres.NewRepository(db),
			adoptions:   adoptionpostgres.NewRepository(db),
			payments:    paymentpostgres.NewRepository(db),
			idempotency: paymentpostgres.NewIdempotencyStore(db),
			ledger:      ledgerpostgres.NewUnitOfWork(db),
		}
	}

	if cfg.RedisURL != "" {
		rdb, err := platformredis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return repos, err
		}
		b.Redis = rdb
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		repos.idempotency = paymentredis.NewIdempotencyStore(rdb, paymentredis.DefaultTTL)
		logger.Info("payment idempotency keys stored in redis")
	}
	return repos, nil
}

func (b *Backend) buildPublisher(cfg Config, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsBroker {
	case BrokerKafka:
		p, err := platformevents.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = p.Close() })
		return events.BestEffort(p, logger), nil
	case BrokerAMQP:
		p, err := platformevents.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = p.Close() })
		return events.BestEffort(p, logger), nil
	case BrokerLog:
		return events.BestEffort(platformevents.NewLogPublisher(logger), logger), nil
	}
	return events.NoopPublisher, nil
}

func buildGateway(cfg Config) (paymentports.Gateway, error) {
	if cfg.GatewayMode == GatewayFake {
		return paymentgateway.NewFake(cfg.PublicBaseURL), nil
	}
	httpClient := &http.Client{
		Timeout:   cfg.GatewayTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	c, err := sslcommerz.NewClient(cfg.GatewayBaseURL, sslcommerz.Credentials{
		StoreID:       cfg.GatewayStoreID,
		StorePassword: cfg.GatewayStorePassword,
	}, httpClient)
	if err != nil {
		return nil, errors.Join(errors.New("configure payment gateway"), err)
	}
	return paymentgateway.NewSSLCommerz(c), nil
}
