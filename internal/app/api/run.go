package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	petstoreserver "github.com/Apurer/pet-adoption-api/go"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

const serviceName = "pet-adoption-api"

// Run boots the HTTP API with observability, storage, brokers, and expiry wired.
// It returns when ctx is cancelled and the server has drained.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := Build(ctx, cfg, instruments, BuildOptions{Temporal: true})
	if err != nil {
		return err
	}
	defer backend.Close()

	if backend.Sweeping {
		interval := sweepInterval(cfg.PaymentPendingTTL)
		logger.Info("pending payment sweep enabled", slog.Duration("ttl", cfg.PaymentPendingTTL), slog.Duration("interval", interval))
		go runSweeper(ctx, backend.Payments, cfg.PaymentPendingTTL, interval, logger)
	}

	handlers := petstoreserver.ApiHandleFunctions{
		AuthAPI:     petstoreserver.NewAuthAPI(backend.Users),
		CategoryAPI: petstoreserver.NewCategoryAPI(backend.Pets),
		PetAPI:      petstoreserver.NewPetAPI(backend.Pets),
		AdoptionAPI: petstoreserver.NewAdoptionAPI(backend.Adoptions),
		ReviewAPI:   petstoreserver.NewReviewAPI(backend.Reviews),
		PaymentAPI: petstoreserver.NewPaymentAPI(backend.Payments, petstoreserver.PaymentRedirect{
			FrontendURL: cfg.FrontendURL,
			Path:        cfg.FrontendPaymentPath,
		}, paymentOptions(cfg)...),
		OpsAPI: petstoreserver.NewOpsAPI(promhttp.Handler(), readinessChecks(backend)...),
	}
	httpMetrics := platformobservability.NewHTTPMetrics(prometheus.DefaultRegisterer)
	router := petstoreserver.NewRouter(handlers, backend.Users,
		otelgin.Middleware(serviceName),
		httpMetrics.Middleware(),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Pet adoption API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Pet adoption API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

func readinessChecks(b *Backend) []petstoreserver.ReadinessCheck {
	var checks []petstoreserver.ReadinessCheck
	if b.DB != nil {
		db := b.DB
		checks = append(checks, petstoreserver.ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error {
			return platformpostgres.Ping(ctx, db)
		}})
	}
	if b.Redis != nil {
		rdb := b.Redis
		checks = append(checks, petstoreserver.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return checks
}

func paymentOptions(cfg Config) []petstoreserver.PaymentOption {
	if cfg.GatewayMode == GatewayFake {
		return []petstoreserver.PaymentOption{petstoreserver.WithFakeCheckout()}
	}
	return nil
}
