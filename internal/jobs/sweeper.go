package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/activity"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize   = 100
	DefaultConcurrency = 4
	DefaultItemTimeout = 5 * time.Second

	auditActionPublish = "publish"
	auditTriggerSweep  = "sweep"
)

// Sweeper promotes due scheduled items to published. Every publish is a
// compare-and-swap on the version seen when the item was listed, so running
// several sweepers at once never publishes an item twice.
type Sweeper struct {
	items       content.ItemRepository
	machine     *lifecycle.Machine
	audit       AuditRecorder
	activity    *activity.Emitter
	metrics     Metrics
	logger      interfaces.Logger
	now         func() time.Time
	batchSize   int
	concurrency int
	itemTimeout time.Duration
}

type Option func(*Sweeper)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Sweeper) {
		s.audit = recorder
	}
}

func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(s *Sweeper) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(s *Sweeper) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithBatchSize sets how many candidates are listed per page.
func WithBatchSize(size int) Option {
	return func(s *Sweeper) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithConcurrency bounds how many items are published in parallel.
func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithItemTimeout bounds each store call made for a single item.
func WithItemTimeout(timeout time.Duration) Option {
	return func(s *Sweeper) {
		if timeout > 0 {
			s.itemTimeout = timeout
		}
	}
}

func NewSweeper(items content.ItemRepository, opts ...Option) *Sweeper {
	s := &Sweeper{
		items:       items,
		metrics:     NoOpMetrics(),
		logger:      logging.NoOp(),
		now:         time.Now,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		itemTimeout: DefaultItemTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.machine = lifecycle.NewMachine(items,
		lifecycle.WithClock(s.now),
		lifecycle.WithLogger(s.logger),
	)
	return s
}

// Run sweeps one kind, or every kind when kind is nil. The due cutoff is
// fixed at the start of the run and the due set is drained page by page.
// Per-item failures are reported, not returned; an error is returned only
// when candidates cannot be listed.
func (s *Sweeper) Run(ctx context.Context, kind *domain.Kind) (*SweepReport, error) {
	if s.items == nil {
		return nil, errors.New("jobs: item repository is nil")
	}
	cutoff := s.now()
	report := newSweepReport(cutoff, kind)
	logger := s.logger
	if kind != nil {
		logger = logging.WithFields(logger, map[string]any{"kind": string(*kind)})
	}
	logger.Debug("sweep.start", "cutoff", cutoff)

	var after *uuid.UUID
	for {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = s.now()
			return report, err
		}

		filter := content.DueFilter(kind, cutoff, s.batchSize)
		filter.AfterID = after
		page, err := s.listPage(ctx, filter)
		if err != nil {
			report.FinishedAt = s.now()
			logger.Error("sweep.list.failed", "error", err)
			return report, err
		}

		due := make([]*content.Item, 0, len(page))
		for _, item := range page {
			if item.Status == domain.StatusScheduled && item.ScheduledAt.DueAt(cutoff) {
				due = append(due, item)
			}
		}
		for _, result := range s.publishAll(ctx, due) {
			report.add(result)
		}

		if len(page) < s.batchSize {
			break
		}
		last := page[len(page)-1].ID
		after = &last
	}

	report.FinishedAt = s.now()
	s.metrics.ObserveSweep(report)
	logger.Info("sweep.finished",
		"published", report.Totals[OutcomePublished],
		"already_published", report.Totals[OutcomeAlreadyPublished],
		"errors", report.Totals[OutcomeError],
		"duration", report.Duration(),
	)
	return report, nil
}

func (s *Sweeper) listPage(ctx context.Context, filter content.ListFilter) ([]*content.Item, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()
	return s.items.List(listCtx, filter)
}

// publishAll processes items with bounded parallelism. Results keep the
// order of items.
func (s *Sweeper) publishAll(ctx context.Context, items []*content.Item) []ItemResult {
	results := make([]ItemResult, len(items))
	var group errgroup.Group
	group.SetLimit(s.concurrency)
	for i, item := range items {
		group.Go(func() error {
			results[i] = s.publishOne(ctx, item)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (s *Sweeper) publishOne(ctx context.Context, item *content.Item) ItemResult {
	result := ItemResult{ID: item.ID, Kind: item.Kind}
	logger := logging.WithItem(s.logger, item.ID.String(), string(item.Kind), item.Version)

	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	updated, err := s.machine.Apply(itemCtx, item, lifecycle.Step{Action: lifecycle.ActionPublishNow})
	switch {
	case err == nil:
		result.Outcome = OutcomePublished
		logger.Info("sweep.item.published", "published_at", updated.PublishedAt)
		s.recordPublish(ctx, item, updated)
	case errors.Is(err, lifecycle.ErrStaleVersion), errors.Is(err, lifecycle.ErrInvalidTransition):
		result.Outcome = OutcomeAlreadyPublished
		logger.Debug("sweep.item.already_published", "reason", err)
	default:
		result.Outcome = OutcomeError
		result.Error = err.Error()
		logger.Warn("sweep.item.failed", "error", err)
	}
	return result
}

func (s *Sweeper) recordPublish(ctx context.Context, before, after *content.Item) {
	occurredAt := s.now()
	if after.PublishedAt != nil {
		occurredAt = *after.PublishedAt
	}
	metadata := map[string]any{
		"scheduled_at": before.ScheduledAt.String(),
		"version":      after.Version,
	}

	if s.audit != nil {
		event := AuditEvent{
			ItemID:      after.ID,
			Kind:        after.Kind,
			Action:      auditActionPublish,
			Trigger:     auditTriggerSweep,
			FromVersion: before.Version,
			ToVersion:   after.Version,
			OccurredAt:  occurredAt,
			Metadata:    metadata,
		}
		if err := s.audit.Record(ctx, event); err != nil {
			s.logger.Warn("sweep.audit.failed", "item_id", after.ID, "error", err)
		}
	}

	if s.activity.Enabled() {
		err := s.activity.Emit(ctx, activity.Event{
			Verb:           auditActionPublish,
			ObjectType:     string(after.Kind),
			ObjectID:       after.ID.String(),
			DefinitionCode: "item:" + auditActionPublish,
			Metadata:       metadata,
			OccurredAt:     occurredAt,
		})
		if err != nil {
			s.logger.Warn("sweep.activity.failed", "item_id", after.ID, "error", err)
		}
	}
}
