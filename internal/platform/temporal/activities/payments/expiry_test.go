package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
)

type stubService struct {
	ports.Service
	expired map[string]bool
	err     error
}

func (s *stubService) ExpireToken(_ context.Context, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	already := s.expired[token]
	s.expired[token] = true
	return !already, nil
}

func (s *stubService) ExpirePending(context.Context, time.Duration) (int, error) {
	return len(s.expired), s.err
}

func TestExpirePaymentActivityIsRetrySafe(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	acts := NewActivities(&stubService{expired: map[string]bool{}})
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.ExpirePayment, "TXN1")
	require.NoError(t, err)
	var moved bool
	require.NoError(t, val.Get(&moved))
	assert.True(t, moved)

	val, err = env.ExecuteActivity(acts.ExpirePayment, "TXN1")
	require.NoError(t, err)
	require.NoError(t, val.Get(&moved))
	assert.False(t, moved)
}

func TestExpirePaymentActivityPropagatesErrors(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	acts := NewActivities(&stubService{expired: map[string]bool{}, err: errors.New("db down")})
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.ExpirePayment, "TXN1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
