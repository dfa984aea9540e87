package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/google/uuid"
)

// TransitionRequest asks the machine to move one item. ExpectedVersion is the
// version the caller last read; a mismatch fails with ErrStaleVersion and is
// never retried.
type TransitionRequest struct {
	ItemID          uuid.UUID
	Action          Action
	ExpectedVersion int64
	ScheduledAt     *time.Time
}

// Machine validates and applies publish transitions through the store's
// version-checked write path.
type Machine struct {
	items  content.ItemRepository
	now    func() time.Time
	logger interfaces.Logger
}

// Option configures the machine.
type Option func(*Machine)

// WithClock overrides the clock used to evaluate schedule dates and stamp published_at.
func WithClock(clock func() time.Time) Option {
	return func(m *Machine) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithLogger sets the logger used for transition events.
func WithLogger(logger interfaces.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewMachine(items content.ItemRepository, opts ...Option) *Machine {
	m := &Machine{
		items:  items,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Now returns the machine's current time.
func (m *Machine) Now() time.Time {
	return m.now()
}

// Transition loads the item, checks the expected version and applies the action.
func (m *Machine) Transition(ctx context.Context, req TransitionRequest) (*content.Item, error) {
	if req.ItemID == uuid.Nil {
		return nil, ErrNilItemID
	}
	item, err := m.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if item.Version != req.ExpectedVersion {
		conflict := &content.VersionConflictError{ID: item.ID, Expected: req.ExpectedVersion, Actual: item.Version}
		m.logger.Debug("lifecycle.transition.stale",
			"item_id", item.ID,
			"expected_version", req.ExpectedVersion,
			"stored_version", item.Version,
		)
		return nil, fmt.Errorf("%w: %w", ErrStaleVersion, conflict)
	}
	return m.Apply(ctx, item, Step{Action: req.Action, ScheduledAt: req.ScheduledAt})
}

// Apply plans step against a previously read item and writes it using
// item.Version as the expected version.
func (m *Machine) Apply(ctx context.Context, item *content.Item, step Step) (*content.Item, error) {
	if item == nil {
		return nil, ErrNotFound
	}
	logger := logging.WithItem(m.logger, item.ID.String(), string(item.Kind), item.Version)

	patch, err := Plan(item, step, m.now())
	if err != nil {
		logger.Debug("lifecycle.transition.rejected", "action", step.Action, "status", item.Status, "error", err)
		return nil, err
	}

	updated, err := m.items.Write(ctx, item.ID, patch, item.Version)
	if err != nil {
		mapped := mapStoreError(err)
		if errors.Is(mapped, ErrStaleVersion) || errors.Is(mapped, ErrNotFound) {
			logger.Debug("lifecycle.transition.conflict", "action", step.Action, "error", err)
		} else {
			logger.Error("lifecycle.transition.failed", "action", step.Action, "error", err)
		}
		return nil, mapped
	}

	logger.Info("lifecycle.transition.applied",
		"action", step.Action,
		"from", item.Status,
		"to", updated.Status,
		"new_version", updated.Version,
	)
	return updated, nil
}

// ToScheduled schedules an item for publication at at.
func (m *Machine) ToScheduled(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) (*content.Item, error) {
	return m.Transition(ctx, TransitionRequest{ItemID: id, Action: ActionSchedule, ExpectedVersion: expectedVersion, ScheduledAt: &at})
}

// ToPublishedNow publishes an item immediately.
func (m *Machine) ToPublishedNow(ctx context.Context, id uuid.UUID, expectedVersion int64) (*content.Item, error) {
	return m.Transition(ctx, TransitionRequest{ItemID: id, Action: ActionPublishNow, ExpectedVersion: expectedVersion})
}

// ToDraft cancels a schedule or unpublishes an item.
func (m *Machine) ToDraft(ctx context.Context, id uuid.UUID, expectedVersion int64) (*content.Item, error) {
	return m.Transition(ctx, TransitionRequest{ItemID: id, Action: ActionDraft, ExpectedVersion: expectedVersion})
}

// Reschedule moves a scheduled item's publish time.
func (m *Machine) Reschedule(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) (*content.Item, error) {
	return m.Transition(ctx, TransitionRequest{ItemID: id, Action: ActionReschedule, ExpectedVersion: expectedVersion, ScheduledAt: &at})
}
