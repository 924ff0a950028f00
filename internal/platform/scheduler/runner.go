package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
)

// DefaultLockName is the run lock shared by all instances.
const DefaultLockName = "ledger:daily-run"

// Runner drives the daily jobs: standing orders, deposit maturities and
// loan overdue flags. Each tick runs them once for the clock's business date.
type Runner struct {
	svc      *services.ServiceContainer
	clock    ports.Clock
	locker   ports.RunLocker
	logger   *slog.Logger
	interval time.Duration
	lockName string
	lockTTL  time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLockName overrides DefaultLockName.
func WithLockName(name string) Option {
	return func(r *Runner) { r.lockName = name }
}

// WithLockTTL bounds how long a crashed instance can block the others.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Runner) { r.lockTTL = ttl }
}

// NewRunner creates a tick runner.
func NewRunner(svc *services.ServiceContainer, clock ports.Clock, locker ports.RunLocker, logger *slog.Logger, interval time.Duration, opts ...Option) *Runner {
	r := &Runner{
		svc:      svc,
		clock:    clock,
		locker:   locker,
		logger:   logger.With(slog.String("component", "scheduler")),
		interval: interval,
		lockName: DefaultLockName,
		lockTTL:  interval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.lockTTL <= 0 {
		r.lockTTL = 5 * time.Minute
	}
	return r
}

// Start ticks until ctx is cancelled. The first run happens immediately.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("Scheduler started", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("Scheduler tick failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			r.logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs every job once if this instance wins the run lock. Job failures
// are logged and do not stop the remaining jobs.
func (r *Runner) Tick(ctx context.Context) error {
	release, ok, err := r.locker.TryLock(ctx, r.lockName, r.lockTTL)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Debug("Run lock held elsewhere, skipping tick")
		return nil
	}
	defer func() {
		// The tick context may already be cancelled.
		if err := release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("Failed to release run lock", slog.String("error", err.Error()))
		}
	}()

	today := r.clock.Today()
	ctx = middleware.WithLogger(ctx, r.logger.With(slog.Time("run_date", today)))

	var errs []error

	if res, err := r.svc.Scheduler.RunDue(ctx, today); err != nil {
		errs = append(errs, err)
	} else {
		r.logger.Info("Standing orders run",
			slog.Int("executed", res.Executed),
			slog.Int("rearmed", res.Rearmed),
			slog.Int("expired", res.Expired),
			slog.Int("failed", res.Failed))
	}

	if res, err := r.svc.Deposit.MatureDueDeposits(ctx, today); err != nil {
		errs = append(errs, err)
	} else if res.Matured > 0 || res.Failed > 0 {
		r.logger.Info("Deposit maturities run", slog.Int("matured", res.Matured), slog.Int("failed", res.Failed))
	}

	if n, err := r.svc.Loan.RefreshOverdue(ctx, today); err != nil {
		errs = append(errs, err)
	} else if n > 0 {
		r.logger.Info("Loan installments marked overdue", slog.Int("count", n))
	}

	return errors.Join(errs...)
}
