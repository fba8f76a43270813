package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability/service"

// Service decorates a pets application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreatePet(ctx context.Context, actor pettypes.Actor, input pettypes.PetInput) (*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CreatePet", attribute.String("user.id", actor.UserID))
	defer span.End()

	result, err := s.inner.CreatePet(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create pet", slog.String("user.id", actor.UserID))
	}
	s.metrics.recordCreated(ctx, result.Entity.Status)
	span.SetAttributes(attribute.String("pet.id", result.Entity.ID))
	s.logInfo(ctx, "pet listed", slog.String("pet.id", result.Entity.ID), slog.String("owner.id", actor.UserID))
	return result, nil
}

func (s *Service) GetPet(ctx context.Context, actor pettypes.Actor, id string) (*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetPet", attribute.String("pet.id", id))
	defer span.End()

	result, err := s.inner.GetPet(ctx, actor, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get pet", slog.String("pet.id", id))
	}
	return result, nil
}

// ListPets serves the public catalog.
func (s *Service) ListPets(ctx context.Context, query pettypes.ListQuery) (projection.Page[*ports.PetProjection], error) {
	ctx, span := s.startSpan(ctx, "Service.ListPets", attribute.Int("page", query.Page))
	defer span.End()

	result, err := s.inner.ListPets(ctx, query)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list pets")
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result.Items)), attribute.Int64("pet.result.total", result.Total))
	return result, nil
}

func (s *Service) ListMyPets(ctx context.Context, actor pettypes.Actor, query pettypes.ListQuery) (projection.Page[*ports.PetProjection], error) {
	ctx, span := s.startSpan(ctx, "Service.ListMyPets", attribute.String("user.id", actor.UserID))
	defer span.End()

	result, err := s.inner.ListMyPets(ctx, actor, query)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list own pets", slog.String("user.id", actor.UserID))
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result.Items)))
	return result, nil
}

func (s *Service) UpdatePet(ctx context.Context, actor pettypes.Actor, id string, input pettypes.PetInput) (*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdatePet", attribute.String("pet.id", id), attribute.Bool("actor.moderator", actor.Moderator))
	defer span.End()

	s.logInfo(ctx, "updating pet", slog.String("pet.id", id), slog.String("user.id", actor.UserID))
	result, err := s.inner.UpdatePet(ctx, actor, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update pet", slog.String("pet.id", id))
	}
	s.metrics.recordUpdated(ctx, result.Entity.Status)
	s.logInfo(ctx, "pet updated", slog.String("pet.id", id), slog.String("status", string(result.Entity.Status)))
	return result, nil
}

func (s *Service) DeletePet(ctx context.Context, actor pettypes.Actor, id string) error {
	ctx, span := s.startSpan(ctx, "Service.DeletePet", attribute.String("pet.id", id))
	defer span.End()

	if err := s.inner.DeletePet(ctx, actor, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete pet", slog.String("pet.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "pet deleted", slog.String("pet.id", id), slog.String("user.id", actor.UserID))
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.ListCategories")
	defer span.End()

	result, err := s.inner.ListCategories(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list categories")
	}
	return result, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.GetCategory", attribute.String("category.id", id))
	defer span.End()

	result, err := s.inner.GetCategory(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get category", slog.String("category.id", id))
	}
	return result, nil
}

func (s *Service) CreateCategory(ctx context.Context, input pettypes.CategoryInput) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateCategory")
	defer span.End()

	result, err := s.inner.CreateCategory(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create category")
	}
	s.logInfo(ctx, "category created", slog.String("category.id", result.ID), slog.String("name", result.Name))
	return result, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, input pettypes.CategoryInput) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateCategory", attribute.String("category.id", id))
	defer span.End()

	result, err := s.inner.UpdateCategory(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update category", slog.String("category.id", id))
	}
	return result, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteCategory", attribute.String("category.id", id))
	defer span.End()

	if err := s.inner.DeleteCategory(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete category", slog.String("category.id", id))
	}
	s.logInfo(ctx, "category deleted", slog.String("category.id", id))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	petsCreated metric.Int64Counter
	petsUpdated metric.Int64Counter
	petsDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	petsCreated, _ := m.Int64Counter("pets.service.created", metric.WithDescription("Number of pets listed"))
	petsUpdated, _ := m.Int64Counter("pets.service.updated", metric.WithDescription("Number of pets updated"))
	petsDeleted, _ := m.Int64Counter("pets.service.deleted", metric.WithDescription("Number of pets deleted"))
	return serviceMetrics{
		petsCreated: petsCreated,
		petsUpdated: petsUpdated,
		petsDeleted: petsDeleted,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.petsCreated, 1, attribute.String("pet.status", string(status)))
}

func (m serviceMetrics) recordUpdated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.petsUpdated, 1, attribute.String("pet.status", string(status)))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.petsDeleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
