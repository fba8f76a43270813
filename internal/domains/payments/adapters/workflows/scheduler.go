// Package workflows schedules payment expiry on Temporal.
package workflows

import (
	"context"
	"errors"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	paymentworkflows "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/payments"
)

var _ ports.ExpiryScheduler = (*TemporalScheduler)(nil)

// Starter is the part of the Temporal client the scheduler uses.
type Starter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalScheduler starts one durable expiry timer per pending payment.
// It does not wait for the workflow; the timer outlives the request.
type TemporalScheduler struct {
	client    Starter
	taskQueue string
}

func NewTemporalScheduler(c Starter) *TemporalScheduler {
	return &TemporalScheduler{client: c, taskQueue: paymentworkflows.PaymentsTaskQueue}
}

func (s *TemporalScheduler) ScheduleExpiry(ctx context.Context, token string, after time.Duration) error {
	if s == nil || s.client == nil {
		return errors.New("temporal expiry scheduler not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                    ExpiryWorkflowID(token),
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		// the timer plus a generous margin for activity retries
		WorkflowExecutionTimeout: after + time.Hour,
	}
	_, err := s.client.ExecuteWorkflow(ctx, options, paymentworkflows.PaymentExpiryWorkflowName, paymentworkflows.PaymentExpiryWorkflowInput{
		Token:   token,
		After:   after,
		TraceID: traceID(ctx),
	})
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		return nil
	}
	return err
}

// ExpiryWorkflowID is deterministic so a token never gets two timers.
func ExpiryWorkflowID(token string) string {
	return "payment-expiry-" + token
}

func traceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
