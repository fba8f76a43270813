package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformtemporal "github.com/Apurer/pet-adoption-api/internal/platform/temporal"
	paymentactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/payments"
	paymentworkflows "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/payments"
)

// sweepCron backs up per-payment timers that were never scheduled.
const sweepCron = "*/5 * * * *"

func main() {
	ctx := context.Background()
	const serviceName = "pet-adoption-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := api.Build(ctx, cfg, instruments, api.BuildOptions{})
	if err != nil {
		logger.Error("failed to wire payments backend", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backend.Close()
	activities := paymentactivities.NewActivities(backend.Payments)

	temporalClient, err := platformtemporal.Dial(cfg.TemporalAddress, cfg.TemporalNamespace, logger, instruments.Tracer("temporal-worker"))
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, paymentworkflows.PaymentsTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(paymentworkflows.PaymentExpiryWorkflow, workflow.RegisterOptions{Name: paymentworkflows.PaymentExpiryWorkflowName})
	w.RegisterWorkflowWithOptions(paymentworkflows.PendingSweepWorkflow, workflow.RegisterOptions{Name: paymentworkflows.PendingSweepWorkflowName})
	w.RegisterActivityWithOptions(activities.ExpirePayment, activity.RegisterOptions{Name: paymentactivities.ExpirePaymentActivityName})
	w.RegisterActivityWithOptions(activities.ExpirePending, activity.RegisterOptions{Name: paymentactivities.ExpirePendingActivityName})

	if err := startPendingSweep(ctx, temporalClient, cfg.PaymentPendingTTL); err != nil {
		logger.Warn("failed to start pending sweep cron", slog.String("error", err.Error()))
	}

	logger.Info("worker listening", slog.String("taskQueue", paymentworkflows.PaymentsTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func startPendingSweep(ctx context.Context, c client.Client, ttl time.Duration) error {
	_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           paymentworkflows.PendingSweepWorkflowID,
		TaskQueue:    paymentworkflows.PaymentsTaskQueue,
		CronSchedule: sweepCron,
	}, paymentworkflows.PendingSweepWorkflowName, ttl)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	return err
}
