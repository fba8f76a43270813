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

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/reviews/adapters/observability/service"

// Service decorates the reviews port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	created metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option { return func(s *Service) { s.logger = logger } }

func WithTracer(tr trace.Tracer) Option { return func(s *Service) { s.tracer = tr } }

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.created, _ = m.Int64Counter("reviews.service.created", metric.WithDescription("Number of reviews posted"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
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

func (s *Service) ListReviews(ctx context.Context, petID string, query types.ListQuery) (projection.Page[*ports.ReviewProjection], error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListReviews", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()
	page, err := s.inner.ListReviews(ctx, petID, query)
	if err != nil {
		return page, s.handleError(ctx, span, err, "failed to list reviews", slog.String("pet.id", petID))
	}
	return page, nil
}

func (s *Service) GetReview(ctx context.Context, petID, id string) (*ports.ReviewProjection, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetReview", trace.WithAttributes(attribute.String("review.id", id)))
	defer span.End()
	review, err := s.inner.GetReview(ctx, petID, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get review", slog.String("review.id", id))
	}
	return review, nil
}

func (s *Service) CreateReview(ctx context.Context, actor types.Actor, petID string, input types.ReviewInput) (*ports.ReviewProjection, error) {
	ctx, span := s.tracer.Start(ctx, "Service.CreateReview", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()
	review, err := s.inner.CreateReview(ctx, actor, petID, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create review", slog.String("pet.id", petID), slog.String("user.id", actor.UserID))
	}
	if s.created != nil {
		s.created.Add(ctx, 1)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "review created", slog.String("review.id", review.Entity.ID), slog.String("pet.id", petID))
	return review, nil
}

func (s *Service) UpdateReview(ctx context.Context, actor types.Actor, petID, id string, input types.ReviewInput) (*ports.ReviewProjection, error) {
	ctx, span := s.tracer.Start(ctx, "Service.UpdateReview", trace.WithAttributes(attribute.String("review.id", id)))
	defer span.End()
	review, err := s.inner.UpdateReview(ctx, actor, petID, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update review", slog.String("review.id", id))
	}
	return review, nil
}

func (s *Service) DeleteReview(ctx context.Context, actor types.Actor, petID, id string) error {
	ctx, span := s.tracer.Start(ctx, "Service.DeleteReview", trace.WithAttributes(attribute.String("review.id", id)))
	defer span.End()
	if err := s.inner.DeleteReview(ctx, actor, petID, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete review", slog.String("review.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "review deleted", slog.String("review.id", id), slog.String("user.id", actor.UserID))
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

var _ ports.Service = (*Service)(nil)
