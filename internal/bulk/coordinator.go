package bulk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxItems    = 500
	DefaultConcurrency = 4
	DefaultItemTimeout = 5 * time.Second
)

// Coordinator applies one operation across many items. Every item is
// processed on its own and failures never roll back other items.
type Coordinator struct {
	items       content.ItemRepository
	folders     content.FolderRepository
	machine     *lifecycle.Machine
	auditor     *invariants.Auditor
	logger      interfaces.Logger
	now         func() time.Time
	maxItems    int
	concurrency int
	itemTimeout time.Duration
}

type Option func(*Coordinator)

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithMaxItems caps the number of ids accepted per request.
func WithMaxItems(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithItemTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.itemTimeout = timeout
		}
	}
}

func NewCoordinator(items content.ItemRepository, folders content.FolderRepository, opts ...Option) *Coordinator {
	c := &Coordinator{
		items:       items,
		folders:     folders,
		logger:      logging.NoOp(),
		now:         time.Now,
		maxItems:    DefaultMaxItems,
		concurrency: DefaultConcurrency,
		itemTimeout: DefaultItemTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.machine = lifecycle.NewMachine(items, lifecycle.WithClock(c.now), lifecycle.WithLogger(c.logger))
	c.auditor = invariants.NewAuditor(items, invariants.WithClock(c.now), invariants.WithLogger(c.logger))
	return c
}

// Apply validates the request and processes every distinct id.
func (c *Coordinator) Apply(ctx context.Context, req Request) (*Result, error) {
	ids, err := c.validate(ctx, req)
	if err != nil {
		c.logger.Warn("bulk.request.rejected", "op", req.Op, "error", err)
		return nil, err
	}

	result := c.run(ctx, req.Op, ids, func(ctx context.Context, i int) error {
		return c.mutate(ctx, req, ids[i])
	})

	c.logger.Info("bulk.finished",
		"op", req.Op,
		"requested", len(ids),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (c *Coordinator) validate(ctx context.Context, req Request) ([]uuid.UUID, error) {
	if !req.Op.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRequest, ErrUnknownOp, req.Op)
	}
	ids := dedupe(req.IDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptyIDs)
	}
	if len(ids) > c.maxItems {
		return nil, fmt.Errorf("%w: %w: %d > %d", ErrInvalidRequest, ErrTooManyItems, len(ids), c.maxItems)
	}
	switch req.Op {
	case OpMoveToFolder:
		if req.Params.FolderID == nil {
			return ids, nil
		}
		if c.folders == nil {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidRequest, ErrFolderNotFound, req.Params.FolderID)
		}
		exists, err := c.folders.Exists(ctx, *req.Params.FolderID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidRequest, ErrFolderNotFound, req.Params.FolderID)
		}
	case OpSchedule:
		if err := c.validateSchedule(req.Params); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (c *Coordinator) validateSchedule(params Params) error {
	if params.ScheduledAt == nil || params.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrMissingScheduledAt)
	}
	if !params.ScheduledAt.After(c.now()) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrPastScheduledAt)
	}
	return nil
}

// run calls fn for every index of ids with bounded concurrency and a per item
// timeout. Results keep the order of ids.
func (c *Coordinator) run(ctx context.Context, op Op, ids []uuid.UUID, fn func(context.Context, int) error) *Result {
	failures := make([]*Failure, len(ids))
	var group errgroup.Group
	group.SetLimit(c.concurrency)
	for i, id := range ids {
		group.Go(func() error {
			itemCtx, cancel := context.WithTimeout(ctx, c.itemTimeout)
			defer cancel()
			if err := fn(itemCtx, i); err != nil {
				failures[i] = &Failure{ID: id, Reason: reasonFor(err), Message: err.Error()}
				c.logger.Warn("bulk.item.failed", "op", op, "item_id", id, "reason", failures[i].Reason, "error", err)
			}
			return nil
		})
	}
	_ = group.Wait()

	result := &Result{Op: op, Succeeded: []uuid.UUID{}, Failed: []Failure{}}
	for i, id := range ids {
		if failures[i] == nil {
			result.Succeeded = append(result.Succeeded, id)
			continue
		}
		result.Failed = append(result.Failed, *failures[i])
	}
	return result
}

func (c *Coordinator) mutate(ctx context.Context, req Request, id uuid.UUID) error {
	if req.Op == OpDelete {
		return c.items.Delete(ctx, id)
	}

	item, err := c.items.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch req.Op {
	case OpMoveToFolder:
		if item.InFolder(req.Params.FolderID) {
			return nil
		}
		if req.Params.FolderID == nil {
			_, err = c.items.Write(ctx, id, content.Patch{FolderID: content.Clear[uuid.UUID]()}, item.Version)
			break
		}
		var moved *content.Item
		moved, err = c.items.Write(ctx, id, content.Patch{FolderID: content.SetTo(*req.Params.FolderID)}, item.Version)
		if err == nil {
			err = c.confirmFolder(ctx, moved, *req.Params.FolderID)
		}
	case OpDraft:
		_, err = c.machine.Apply(ctx, item, lifecycle.Step{Action: lifecycle.ActionDraft})
	case OpPublishNow:
		_, err = c.machine.Apply(ctx, item, lifecycle.Step{Action: lifecycle.ActionPublishNow})
	case OpSchedule:
		_, err = c.machine.Apply(ctx, item, lifecycle.Step{Action: lifecycle.ActionSchedule, ScheduledAt: req.Params.ScheduledAt})
	default:
		err = ErrUnknownOp
	}
	return err
}

// confirmFolder detaches item again when its folder was deleted after the
// request was validated.
func (c *Coordinator) confirmFolder(ctx context.Context, item *content.Item, folderID uuid.UUID) error {
	exists, err := c.folders.Exists(ctx, folderID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = c.items.Write(ctx, item.ID, content.Patch{FolderID: content.Clear[uuid.UUID]()}, item.Version)
	if err != nil && !errors.Is(err, content.ErrVersionConflict) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrFolderNotFound, folderID)
}

func reasonFor(err error) Reason {
	switch {
	case content.IsNotFound(err), errors.Is(err, lifecycle.ErrNotFound), errors.Is(err, ErrFolderNotFound):
		return ReasonNotFound
	case errors.Is(err, content.ErrVersionConflict), errors.Is(err, lifecycle.ErrStaleVersion):
		return ReasonStaleVersion
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return ReasonInvalidTransition
	case errors.Is(err, lifecycle.ErrPastDateRejected):
		return ReasonPastDate
	default:
		return ReasonError
	}
}
