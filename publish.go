package publish

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/di"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/google/uuid"
)

type (
	// Item is a publishable content record.
	Item = content.Item
	// Folder groups items.
	Folder = content.Folder
	// Kind names a content kind handled by the engine.
	Kind = domain.Kind
	// Status is an item's publish state.
	Status = domain.Status
	// Action names a lifecycle transition.
	Action = lifecycle.Action
	// TransitionRequest asks for one version-checked transition.
	TransitionRequest = lifecycle.TransitionRequest
	// SweepReport summarises a sweep run.
	SweepReport = jobs.SweepReport
	// AuditReport is the advisory output of an invariant audit.
	AuditReport = invariants.Report
	// AuditClass classifies one item in an audit.
	AuditClass = invariants.Class
	// BulkOp names a bulk operation.
	BulkOp = bulk.Op
	// BulkRequest applies one op to many ids.
	BulkRequest = bulk.Request
	// BulkParams carries op specific arguments.
	BulkParams = bulk.Params
	// BulkResult lists succeeded and failed ids in request order.
	BulkResult = bulk.Result
	// RepairStrategy picks how orphaned schedules are fixed.
	RepairStrategy = bulk.Strategy
	// RepairResult pairs the selecting audit with the repair outcome.
	RepairResult = bulk.RepairResult
)

const (
	StatusDraft     = domain.StatusDraft
	StatusScheduled = domain.StatusScheduled
	StatusPublished = domain.StatusPublished

	KindWallpaper   = domain.KindWallpaper
	KindBanner      = domain.KindBanner
	KindMedia       = domain.KindMedia
	KindSparkle     = domain.KindSparkle
	KindPopupBanner = domain.KindPopupBanner

	ActionSchedule   = lifecycle.ActionSchedule
	ActionPublishNow = lifecycle.ActionPublishNow
	ActionDraft      = lifecycle.ActionDraft
	ActionReschedule = lifecycle.ActionReschedule

	BulkMoveToFolder = bulk.OpMoveToFolder
	BulkDelete       = bulk.OpDelete
	BulkDraft        = bulk.OpDraft
	BulkPublishNow   = bulk.OpPublishNow
	BulkSchedule     = bulk.OpSchedule

	RepairToDraft    = bulk.StrategyDraft
	RepairToSchedule = bulk.StrategySchedule
)

var (
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	ErrPastDateRejected  = lifecycle.ErrPastDateRejected
	ErrStaleVersion      = lifecycle.ErrStaleVersion
	ErrNotFound          = lifecycle.ErrNotFound
	ErrInvalidBulk       = bulk.ErrInvalidRequest
	ErrUnknownKind       = domain.ErrUnknownKind
)

// Module is the top level publish runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a publish module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// GetItem loads one item.
func (m *Module) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return m.container.GetItem(ctx, id)
}

// CreateItem stores a new item, e.g. when importing content.
func (m *Module) CreateItem(ctx context.Context, item *Item) (*Item, error) {
	return m.container.Items().Create(ctx, item)
}

// CreateFolder stores a new folder.
func (m *Module) CreateFolder(ctx context.Context, folder *Folder) (*Folder, error) {
	return m.container.Folders().Create(ctx, folder)
}

// Transition applies one action to one item. A version mismatch fails with
// ErrStaleVersion and is never retried.
func (m *Module) Transition(ctx context.Context, req TransitionRequest) (*Item, error) {
	return m.container.Transition(ctx, req)
}

// ToScheduled schedules a draft or scheduled item for at.
func (m *Module) ToScheduled(ctx context.Context, id uuid.UUID, version int64, at time.Time) (*Item, error) {
	return m.container.Machine().ToScheduled(ctx, id, version, at)
}

// ToPublishedNow publishes a draft or scheduled item immediately.
func (m *Module) ToPublishedNow(ctx context.Context, id uuid.UUID, version int64) (*Item, error) {
	return m.container.Machine().ToPublishedNow(ctx, id, version)
}

// ToDraft returns a scheduled or published item to draft.
func (m *Module) ToDraft(ctx context.Context, id uuid.UUID, version int64) (*Item, error) {
	return m.container.Machine().ToDraft(ctx, id, version)
}

// Reschedule moves the publish date of a scheduled item.
func (m *Module) Reschedule(ctx context.Context, id uuid.UUID, version int64, at time.Time) (*Item, error) {
	return m.container.Machine().Reschedule(ctx, id, version, at)
}

// RunSweep publishes every due item of kind, or of every kind when kind is nil.
func (m *Module) RunSweep(ctx context.Context, kind *Kind) (*SweepReport, error) {
	return m.container.RunSweep(ctx, kind)
}

// AuditInvariants classifies every item of kind. It never mutates.
func (m *Module) AuditInvariants(ctx context.Context, kind Kind) (*AuditReport, error) {
	return m.container.AuditInvariants(ctx, kind)
}

// BulkMutate applies one op to many items. Per-item failures are reported in
// the result; request-level problems return ErrInvalidBulk.
func (m *Module) BulkMutate(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	return m.container.BulkMutate(ctx, req)
}

// RepairOrphans audits kind and fixes every orphaned schedule with strategy.
func (m *Module) RepairOrphans(ctx context.Context, kind Kind, strategy RepairStrategy, at *time.Time) (*RepairResult, error) {
	return m.container.RepairOrphans(ctx, kind, strategy, at)
}

// DeleteFolder removes a folder and detaches its members.
func (m *Module) DeleteFolder(ctx context.Context, id uuid.UUID) (int, error) {
	return m.container.DeleteFolder(ctx, id)
}

// Handler returns the admin HTTP API.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.AdminAPI().Handler()
}

// Start launches the periodic sweep when the scheduler is enabled.
func (m *Module) Start(ctx context.Context) error {
	return m.container.StartScheduler(ctx)
}

// Close stops background work and releases storage.
func (m *Module) Close() error {
	return m.container.Close()
}
