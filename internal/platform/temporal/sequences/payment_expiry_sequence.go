package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	paymentactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/payments"
)

var expiryActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 30 * time.Second,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:    2 * time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    10,
	},
}

// RunPaymentExpirySequence cancels one payment through the guarded ledger path.
func RunPaymentExpirySequence(ctx workflow.Context, token string) (bool, error) {
	logger := workflow.GetLogger(ctx)
	var moved bool
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, expiryActivityOptions), paymentactivities.ExpirePaymentActivityName, token).Get(ctx, &moved)
	if err != nil {
		logger.Error("payment expiry sequence failed", "token", token, "error", err)
		return false, err
	}
	return moved, nil
}

// RunPendingSweepSequence cancels every pending payment older than olderThan.
func RunPendingSweepSequence(ctx workflow.Context, olderThan time.Duration) (int, error) {
	opts := expiryActivityOptions
	opts.StartToCloseTimeout = 5 * time.Minute
	var n int
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, opts), paymentactivities.ExpirePendingActivityName, olderThan).Get(ctx, &n); err != nil {
		workflow.GetLogger(ctx).Error("pending sweep sequence failed", "error", err)
		return n, err
	}
	return n, nil
}
