package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

var errNoDatabase = errors.New("POSTGRES_DSN is not set")

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the configured Postgres database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := api.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return errNoDatabase
			}
			db, err := platformpostgres.Connect(cmd.Context(), cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer platformpostgres.Close(db)
			if err := migrations.Run(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func expirePaymentsCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "expire-payments",
		Short: "Cancel pending payments older than the pending TTL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd.Context(), func(cfg api.Config, backend *api.Backend) error {
				ttl := cfg.PaymentPendingTTL
				if olderThan > 0 {
					ttl = olderThan
				}
				n, err := backend.Payments.ExpirePending(cmd.Context(), ttl)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "expired %d pending payments\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "override PAYMENT_PENDING_TTL")
	return cmd
}

func purgeSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired login sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd.Context(), func(_ api.Config, backend *api.Backend) error {
				n, err := backend.Sessions.PurgeExpired(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d sessions\n", n)
				return nil
			})
		},
	}
}

// withBackend wires storage without Temporal; one-shot commands never schedule timers.
func withBackend(ctx context.Context, fn func(api.Config, *api.Backend) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := api.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.PostgresDSN == "" {
		return errNoDatabase
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "petadmin")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			fmt.Fprintln(os.Stderr, "observability shutdown:", err)
		}
	}()
	backend, err := api.Build(ctx, cfg, instruments, api.BuildOptions{})
	if err != nil {
		instruments.Logger.Error("failed to wire backend", slog.String("error", err.Error()))
		return err
	}
	defer backend.Close()
	return fn(cfg, backend)
}
