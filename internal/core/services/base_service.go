package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/SscSPs/core_banking_ledger/internal/platform/clock"
	"github.com/SscSPs/core_banking_ledger/internal/platform/events"
	"github.com/SscSPs/core_banking_ledger/internal/platform/metrics"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	store   portsrepo.Store
	clock   ports.Clock
	events  ports.EventPublisher
	metrics ports.MetricsRecorder
}

// ServiceOption is a functional option for configuring the services
type ServiceOption func(*BaseService)

// WithClock replaces the system clock.
func WithClock(c ports.Clock) ServiceOption {
	return func(s *BaseService) {
		s.clock = c
	}
}

// WithEventPublisher sets where ledger events are sent after commit.
func WithEventPublisher(p ports.EventPublisher) ServiceOption {
	return func(s *BaseService) {
		s.events = p
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(m ports.MetricsRecorder) ServiceOption {
	return func(s *BaseService) {
		s.metrics = m
	}
}

func newBaseService(store portsrepo.Store, options ...ServiceOption) BaseService {
	base := BaseService{
		store:   store,
		clock:   clock.System{},
		events:  events.NoopPublisher{},
		metrics: metrics.NoOpRecorder{},
	}
	for _, option := range options {
		option(&base)
	}
	return base
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// outbox collects events raised inside a unit of work. They are only
// published once the unit has committed.
type outbox struct {
	events []domain.LedgerEvent
}

func (o *outbox) add(eventType domain.EventType, key string, at time.Time, payload any) {
	o.events = append(o.events, domain.LedgerEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: at,
		Payload:    payload,
	})
}

// inTx runs fn in one unit of work and publishes what it queued on success.
// A publish failure is logged; the unit has already committed.
func (s *BaseService) inTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error) error {
	out := &outbox{}
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		return fn(ctx, repos, out)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, out.events...)
	return nil
}

func (s *BaseService) publish(ctx context.Context, evts ...domain.LedgerEvent) {
	if len(evts) == 0 {
		return
	}
	if err := s.events.Publish(ctx, evts...); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger events", slog.Int("count", len(evts)))
	}
}

// repos returns autocommit repositories for reads.
func (s *BaseService) repos() portsrepo.RepositoryProvider {
	return s.store.Repositories()
}
