package payments

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/platform/temporal/sequences"
)

const (
	PaymentExpiryWorkflowName = "payments.workflows.Expiry"
	PendingSweepWorkflowName  = "payments.workflows.PendingSweep"
	// PaymentsTaskQueue is consumed by the worker processing payment workflows.
	PaymentsTaskQueue = "PAYMENTS"
	// PendingSweepWorkflowID is fixed so only one cron sweep runs per namespace.
	PendingSweepWorkflowID = "payments-pending-sweep"
)

// PaymentExpiryWorkflowInput names the payment to cancel and how long to wait first.
type PaymentExpiryWorkflowInput struct {
	Token   string
	After   time.Duration
	TraceID string
}

// PaymentExpiryWorkflow sleeps for the pending TTL then cancels the payment if a
// callback has not settled it in the meantime.
func PaymentExpiryWorkflow(ctx workflow.Context, input PaymentExpiryWorkflowInput) (bool, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PaymentExpiryWorkflow started", withTraceID(input.TraceID, "token", input.Token, "after", input.After)...)
	if input.After > 0 {
		if err := workflow.Sleep(ctx, input.After); err != nil {
			return false, err
		}
	}
	moved, err := sequences.RunPaymentExpirySequence(ctx, input.Token)
	if err != nil {
		logger.Error("PaymentExpiryWorkflow failed", withTraceID(input.TraceID, "token", input.Token, "error", err)...)
		return false, err
	}
	logger.Info("PaymentExpiryWorkflow completed", withTraceID(input.TraceID, "token", input.Token, "cancelled", moved)...)
	return moved, nil
}

// PendingSweepWorkflow is started with a cron schedule and catches payments whose
// expiry workflow could not be started.
func PendingSweepWorkflow(ctx workflow.Context, olderThan time.Duration) (int, error) {
	return sequences.RunPendingSweepSequence(ctx, olderThan)
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
