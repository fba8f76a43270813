package payments

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
)

const (
	// ExpirePaymentActivityName cancels one payment if it is still pending.
	ExpirePaymentActivityName = "payments.activities.ExpirePayment"
	// ExpirePendingActivityName sweeps every stale pending payment.
	ExpirePendingActivityName = "payments.activities.ExpirePending"
)

// Activities runs payment expiry against the payments service. Both activities are
// safe to retry because a payment only leaves pending once.
type Activities struct {
	service ports.Service
}

func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// ExpirePayment reports whether the payment moved to cancelled.
func (a *Activities) ExpirePayment(ctx context.Context, token string) (bool, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return false, errors.New("payment expiry activity not initialized")
	}
	moved, err := a.service.ExpireToken(ctx, token)
	if err != nil {
		logger.Error("ExpirePayment activity failed", "token", token, "error", err)
		return false, err
	}
	logger.Info("ExpirePayment activity completed", "token", token, "cancelled", moved)
	return moved, nil
}

// ExpirePending returns how many payments the sweep cancelled.
func (a *Activities) ExpirePending(ctx context.Context, olderThan time.Duration) (int, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return 0, errors.New("payment expiry activity not initialized")
	}
	n, err := a.service.ExpirePending(ctx, olderThan)
	if err != nil {
		logger.Error("ExpirePending activity failed", "error", err, "cancelled", n)
		return n, err
	}
	logger.Info("ExpirePending activity completed", "cancelled", n)
	return n, nil
}
