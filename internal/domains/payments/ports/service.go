package ports

import (
	"context"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// Service defines the payments use cases exposed to adapters.
type Service interface {
	Initiate(ctx context.Context, input types.InitiateInput) (*types.InitiateResult, error)
	HandleCallback(ctx context.Context, input types.CallbackInput) (*types.CallbackResult, error)
	// ExpirePending cancels pending payments older than olderThan and reports how many moved.
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
	// ExpireToken cancels one payment if it is still pending.
	ExpireToken(ctx context.Context, token string) (bool, error)
	List(ctx context.Context, scope types.Scope, query types.ListQuery) (projection.Page[*domain.Transaction], error)
	Get(ctx context.Context, scope types.Scope, id string) (*domain.Transaction, error)
}
