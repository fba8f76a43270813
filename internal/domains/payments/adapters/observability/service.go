package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/observability/service"

// Service decorates the payments port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Initiate(ctx context.Context, input types.InitiateInput) (*types.InitiateResult, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Initiate", trace.WithAttributes(
		attribute.String("user.id", input.UserID),
		attribute.String("payment.amount", input.Amount.StringFixed(2)),
		attribute.Bool("payment.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()

	started := time.Now()
	result, err := s.inner.Initiate(ctx, input)
	s.metrics.recordGatewayLatency(ctx, time.Since(started), err == nil)
	if err != nil {
		s.metrics.recordInitiated(ctx, "error")
		return nil, s.fail(ctx, span, err, "payment initiation failed", slog.String("user.id", input.UserID))
	}
	outcome := "created"
	if result.Replayed {
		outcome = "replayed"
	}
	s.metrics.recordInitiated(ctx, outcome)
	span.SetAttributes(attribute.String("payment.token", result.Token), attribute.Bool("payment.replayed", result.Replayed))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "payment initiated",
		slog.String("payment.token", result.Token),
		slog.String("user.id", input.UserID),
		slog.Bool("replayed", result.Replayed),
	)
	return result, nil
}

func (s *Service) HandleCallback(ctx context.Context, input types.CallbackInput) (*types.CallbackResult, error) {
	ctx, span := s.tracer.Start(ctx, "Service.HandleCallback", trace.WithAttributes(
		attribute.String("payment.token", input.Token),
		attribute.String("payment.outcome", string(input.Outcome)),
	))
	defer span.End()

	result, err := s.inner.HandleCallback(ctx, input)
	if err != nil {
		return nil, s.fail(ctx, span, err, "payment callback failed", slog.String("payment.token", input.Token), slog.String("outcome", string(input.Outcome)))
	}
	s.metrics.recordCallback(ctx, result.Status, result.AlreadyFinal)
	span.SetAttributes(attribute.String("payment.status", string(result.Status)), attribute.Bool("payment.credited", result.Credited))
	if result.AmountMismatch {
		reported := ""
		if input.Amount != nil {
			reported = input.Amount.StringFixed(2)
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "gateway reported a different amount; stored amount used",
			slog.String("payment.token", input.Token),
			slog.String("reported", reported),
		)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "payment callback handled",
		slog.String("payment.token", input.Token),
		slog.String("status", string(result.Status)),
		slog.Bool("credited", result.Credited),
		slog.Bool("already_final", result.AlreadyFinal),
		slog.String("val_id", input.ValID),
	)
	return result, nil
}

func (s *Service) ExpirePending(ctx context.Context, olderThan time.Duration) (int, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ExpirePending", trace.WithAttributes(attribute.String("older_than", olderThan.String())))
	defer span.End()

	n, err := s.inner.ExpirePending(ctx, olderThan)
	s.metrics.recordExpired(ctx, n)
	if err != nil {
		return n, s.fail(ctx, span, err, "pending sweep failed", slog.Int("cancelled", n))
	}
	span.SetAttributes(attribute.Int("payment.expired", n))
	if n > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "expired pending payments", slog.Int("cancelled", n))
	}
	return n, nil
}

func (s *Service) ExpireToken(ctx context.Context, token string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ExpireToken", trace.WithAttributes(attribute.String("payment.token", token)))
	defer span.End()

	moved, err := s.inner.ExpireToken(ctx, token)
	if err != nil {
		return false, s.fail(ctx, span, err, "payment expiry failed", slog.String("payment.token", token))
	}
	if moved {
		s.metrics.recordExpired(ctx, 1)
		s.logger.LogAttrs(ctx, slog.LevelInfo, "payment expired", slog.String("payment.token", token))
	}
	return moved, nil
}

func (s *Service) List(ctx context.Context, scope types.Scope, query types.ListQuery) (projection.Page[*domain.Transaction], error) {
	ctx, span := s.tracer.Start(ctx, "Service.List", trace.WithAttributes(attribute.Bool("scope.all", scope.All)))
	defer span.End()

	page, err := s.inner.List(ctx, scope, query)
	if err != nil {
		return page, s.fail(ctx, span, err, "failed to list payments", slog.String("user.id", scope.UserID))
	}
	span.SetAttributes(attribute.Int64("payment.result.total", page.Total))
	return page, nil
}

func (s *Service) Get(ctx context.Context, scope types.Scope, id string) (*domain.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Get", trace.WithAttributes(attribute.String("payment.id", id)))
	defer span.End()

	payment, err := s.inner.Get(ctx, scope, id)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to get payment", slog.String("payment.id", id))
	}
	return payment, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.LogAttrs(ctx, slog.LevelError, msg, append(attrs, slog.String("error", err.Error()))...)
	return err
}

type serviceMetrics struct {
	initiated      metric.Int64Counter
	callbacks      metric.Int64Counter
	expired        metric.Int64Counter
	gatewayLatency metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	initiated, _ := m.Int64Counter("payments.service.initiated", metric.WithDescription("Payment initiations by outcome"))
	callbacks, _ := m.Int64Counter("payments.service.callbacks", metric.WithDescription("Gateway callbacks by resulting status"))
	expired, _ := m.Int64Counter("payments.service.expired", metric.WithDescription("Pending payments cancelled by expiry"))
	latency, _ := m.Float64Histogram("payments.service.initiate.duration", metric.WithDescription("Initiation latency including the gateway call"), metric.WithUnit("s"))
	return serviceMetrics{initiated: initiated, callbacks: callbacks, expired: expired, gatewayLatency: latency}
}

func (m serviceMetrics) recordInitiated(ctx context.Context, outcome string) {
	if m.initiated != nil {
		m.initiated.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (m serviceMetrics) recordCallback(ctx context.Context, status domain.Status, replay bool) {
	if m.callbacks != nil {
		m.callbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status)), attribute.Bool("replay", replay)))
	}
}

func (m serviceMetrics) recordExpired(ctx context.Context, n int) {
	if m.expired != nil && n > 0 {
		m.expired.Add(ctx, int64(n))
	}
}

func (m serviceMetrics) recordGatewayLatency(ctx context.Context, d time.Duration, ok bool) {
	if m.gatewayLatency != nil {
		m.gatewayLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", ok)))
	}
}

var _ ports.Service = (*Service)(nil)
