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

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability/service"

// Service decorates the users application port with tracing, logging, and metrics.
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

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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

func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Register")
	defer span.End()

	user, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.String("username", input.Username))
	}
	addCounter(ctx, s.metrics.registered, 1)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user registered", slog.String("user.id", user.ID))
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Login")
	defer span.End()

	result, err := s.inner.Login(ctx, username, password)
	if err != nil {
		addCounter(ctx, s.metrics.logins, 1, attribute.Bool("success", false))
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	addCounter(ctx, s.metrics.logins, 1, attribute.Bool("success", true))
	span.SetAttributes(attribute.String("user.id", result.User.ID))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "Service.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

// Authenticate runs on every request, so it only traces.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Authenticate")
	defer span.End()
	user, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetByID", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	user, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user", slog.String("user.id", id))
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, input ports.ProfileInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Service.UpdateProfile", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	user, err := s.inner.UpdateProfile(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.String("user.id", id))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "profile updated", slog.String("user.id", id))
	return user, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}

type serviceMetrics struct {
	registered metric.Int64Counter
	logins     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of registered users"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of login attempts"))
	return serviceMetrics{registered: registered, logins: logins}
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
