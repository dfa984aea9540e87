package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

// DefaultInterval is how often the runner sweeps when no interval is given.
const DefaultInterval = time.Minute

var ErrAlreadyRunning = errors.New("scheduler: runner already started")

// Sweeper is the unit of work triggered on every tick.
type Sweeper interface {
	Run(ctx context.Context, kind *domain.Kind) (*jobs.SweepReport, error)
}

// Runner triggers a sweep across every kind on a fixed interval. Ticks that
// arrive while a sweep is still in flight are dropped.
type Runner struct {
	sweeper  Sweeper
	interval time.Duration
	logger   interfaces.Logger
	onReport func(*jobs.SweepReport)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

type Option func(*Runner)

func WithInterval(interval time.Duration) Option {
	return func(r *Runner) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReportHook is called with every finished report, including zero-work
// runs.
func WithReportHook(hook func(*jobs.SweepReport)) Option {
	return func(r *Runner) {
		r.onReport = hook
	}
}

func NewRunner(sweeper Sweeper, opts ...Option) *Runner {
	r := &Runner{
		sweeper:  sweeper,
		interval: DefaultInterval,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Start launches the loop. The first sweep runs immediately.
func (r *Runner) Start(ctx context.Context) error {
	if r.sweeper == nil {
		return errors.New("scheduler: sweeper is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.loop(loopCtx, r.done)
	r.logger.Info("scheduler.started", "interval", r.interval)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel, done := r.cancel, r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done
	r.logger.Info("scheduler.stopped")
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	report, err := r.sweeper.Run(ctx, nil)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("scheduler.sweep.failed", "error", err)
		}
		return
	}
	if report.Published() > 0 {
		r.logger.Info("scheduler.sweep.published", "published", report.Published())
	}
	if r.onReport != nil {
		r.onReport(report)
	}
}
