package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability/service"

// Service decorates the adoptions port with tracing, logging, and metrics.
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

func (s *Service) AdoptPet(ctx context.Context, input types.AdoptInput) (*domain.Adoption, error) {
	ctx, span := s.tracer.Start(ctx, "Service.AdoptPet", trace.WithAttributes(
		attribute.String("pet.id", input.PetID),
		attribute.String("actor.id", input.ActorID),
		attribute.Bool("adoption.on_behalf", input.AdopterID != "" && input.AdopterID != input.ActorID),
	))
	defer span.End()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "adopting pet", slog.String("pet.id", input.PetID), slog.String("actor.id", input.ActorID))
	adoption, err := s.inner.AdoptPet(ctx, input)
	if err != nil {
		s.metrics.recordAttempt(ctx, outcome(err))
		return nil, s.fail(ctx, span, err, "adoption failed", slog.String("pet.id", input.PetID))
	}
	s.metrics.recordAttempt(ctx, "success")
	span.SetAttributes(attribute.String("adoption.id", adoption.ID), attribute.String("adoption.fee", adoption.Fee.StringFixed(2)))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "pet adopted",
		slog.String("adoption.id", adoption.ID),
		slog.String("pet.id", adoption.PetID),
		slog.String("adopter.id", adoption.AdoptedBy),
		slog.String("fee", adoption.Fee.StringFixed(2)),
	)
	return adoption, nil
}

func (s *Service) ListAdoptions(ctx context.Context, petID string, query types.ListQuery) (projection.Page[*domain.Adoption], error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListAdoptions", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	page, err := s.inner.ListAdoptions(ctx, petID, query)
	if err != nil {
		return page, s.fail(ctx, span, err, "failed to list adoptions", slog.String("pet.id", petID))
	}
	span.SetAttributes(attribute.Int64("adoption.result.total", page.Total))
	return page, nil
}

func (s *Service) GetAdoption(ctx context.Context, petID, id string) (*domain.Adoption, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetAdoption", trace.WithAttributes(attribute.String("pet.id", petID), attribute.String("adoption.id", id)))
	defer span.End()

	adoption, err := s.inner.GetAdoption(ctx, petID, id)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to get adoption", slog.String("adoption.id", id))
	}
	return adoption, nil
}

// fail records err on the span. Business rejections log at warn, everything else at error.
func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	level := slog.LevelError
	if outcome(err) != "error" {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, msg, append(attrs, slog.String("error", err.Error()))...)
	return err
}

func outcome(err error) string {
	switch {
	case errors.Is(err, application.ErrConflict):
		return "conflict"
	case errors.Is(err, application.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, application.ErrNotFound):
		return "not_found"
	case errors.Is(err, application.ErrInvalidInput):
		return "invalid"
	}
	return "error"
}

type serviceMetrics struct {
	attempts metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	attempts, _ := m.Int64Counter("adoptions.service.attempts", metric.WithDescription("Adoption attempts by outcome"))
	return serviceMetrics{attempts: attempts}
}

func (m serviceMetrics) recordAttempt(ctx context.Context, result string) {
	if m.attempts == nil {
		return
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", result)))
}

var _ ports.Service = (*Service)(nil)
