package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	paymentactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/payments"
)

func TestPaymentExpiryWorkflowSleepsThenExpires(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	var sleptUntil time.Time
	start := env.Now()
	env.RegisterActivityWithOptions(func(ctx context.Context, token string) (bool, error) {
		return true, nil
	}, activity.RegisterOptions{Name: paymentactivities.ExpirePaymentActivityName})
	env.OnActivity(paymentactivities.ExpirePaymentActivityName, mock.Anything, "TXN1").
		Run(func(mock.Arguments) { sleptUntil = env.Now() }).
		Return(true, nil).Once()

	env.ExecuteWorkflow(PaymentExpiryWorkflow, PaymentExpiryWorkflowInput{Token: "TXN1", After: 30 * time.Minute})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var moved bool
	require.NoError(t, env.GetWorkflowResult(&moved))
	assert.True(t, moved)
	assert.GreaterOrEqual(t, sleptUntil.Sub(start), 30*time.Minute)
	env.AssertExpectations(t)
}

func TestPendingSweepWorkflowReturnsCount(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions(func(ctx context.Context, olderThan time.Duration) (int, error) {
		return 0, nil
	}, activity.RegisterOptions{Name: paymentactivities.ExpirePendingActivityName})
	env.OnActivity(paymentactivities.ExpirePendingActivityName, mock.Anything, 30*time.Minute).Return(3, nil).Once()

	env.ExecuteWorkflow(PendingSweepWorkflow, 30*time.Minute)

	require.NoError(t, env.GetWorkflowError())
	var n int
	require.NoError(t, env.GetWorkflowResult(&n))
	assert.Equal(t, 3, n)
}
