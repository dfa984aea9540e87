package publishcmd

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/google/uuid"
)

func TestSweepHandlerPassesKindAndReport(t *testing.T) {
	var gotKind *domain.Kind
	var observed *jobs.SweepReport
	svc := SweeperFunc(func(_ context.Context, kind *domain.Kind) (*jobs.SweepReport, error) {
		gotKind = kind
		return &jobs.SweepReport{Totals: map[jobs.Outcome]int{jobs.OutcomePublished: 2}}, nil
	})
	handler := NewSweepHandler(svc, logging.NoOp(), SweepWithObserver(func(_ context.Context, report *jobs.SweepReport) {
		observed = report
	}))

	if err := handler.Execute(context.Background(), SweepCommand{Kind: "banner"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotKind == nil || *gotKind != domain.KindBanner {
		t.Fatalf("expected banner kind, got %v", gotKind)
	}
	if observed == nil || observed.Published() != 2 {
		t.Fatalf("expected observer to receive the report, got %+v", observed)
	}

	if err := handler.Execute(context.Background(), SweepCommand{}); err != nil {
		t.Fatalf("execute all kinds: %v", err)
	}
	if gotKind != nil {
		t.Fatalf("expected nil kind for an all-kinds sweep")
	}
}

func TestSweepHandlerRejectsUnknownKind(t *testing.T) {
	called := false
	handler := NewSweepHandler(SweeperFunc(func(context.Context, *domain.Kind) (*jobs.SweepReport, error) {
		called = true
		return &jobs.SweepReport{}, nil
	}), nil)

	err := handler.Execute(context.Background(), SweepCommand{Kind: "poster"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatalf("expected sweep not to run")
	}
}

func TestSweepHandlerCronMetadata(t *testing.T) {
	calls := 0
	handler := NewSweepHandler(SweeperFunc(func(context.Context, *domain.Kind) (*jobs.SweepReport, error) {
		calls++
		return &jobs.SweepReport{}, nil
	}), logging.NoOp(), SweepWithCronExpression("@every 30s"))

	if got := handler.CronOptions().Expression; got != "@every 30s" {
		t.Fatalf("expected cron expression override, got %q", got)
	}
	if err := handler.CronHandler()(); err != nil {
		t.Fatalf("cron run: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cron to trigger one sweep, got %d", calls)
	}
	if path := handler.CLIOptions().Path; len(path) != 1 || path[0] != "sweep" {
		t.Fatalf("unexpected cli path %v", path)
	}
}

func TestSweepHandlerWrapsServiceError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	handler := NewSweepHandler(SweeperFunc(func(context.Context, *domain.Kind) (*jobs.SweepReport, error) {
		return nil, storeErr
	}), logging.NoOp())

	err := handler.Execute(context.Background(), SweepCommand{})
	if !errors.Is(err, storeErr) || !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category wrapping store error, got %v", err)
	}
}

func TestTransitionCommandValidate(t *testing.T) {
	at := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		msg   TransitionCommand
		field string
	}{
		{"missing id", TransitionCommand{Action: "draft", Version: 1}, "item_id"},
		{"unknown action", TransitionCommand{ItemID: uuid.New(), Action: "archive", Version: 1}, "action"},
		{"zero version", TransitionCommand{ItemID: uuid.New(), Action: "draft"}, "version"},
		{"schedule without date", TransitionCommand{ItemID: uuid.New(), Action: "schedule", Version: 1}, "scheduled_at"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var errs validation.Errors
			if err := tc.msg.Validate(); !errors.As(err, &errs) {
				t.Fatalf("expected ozzo validation errors, got %v", err)
			}
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("expected %s to be reported, got %v", tc.field, errs)
			}
		})
	}

	ok := TransitionCommand{ItemID: uuid.New(), Action: "reschedule", Version: 3, ScheduledAt: &at}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}

func TestTransitionHandlerMapsRequest(t *testing.T) {
	id := uuid.New()
	at := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	var got lifecycle.TransitionRequest
	var observed *content.Item
	svc := TransitionerFunc(func(_ context.Context, req lifecycle.TransitionRequest) (*content.Item, error) {
		got = req
		return &content.Item{ID: req.ItemID, Status: domain.StatusScheduled, Version: req.ExpectedVersion + 1}, nil
	})
	handler := NewTransitionHandler(svc, logging.NoOp(), func(_ context.Context, item *content.Item) { observed = item })

	if err := handler.Execute(context.Background(), TransitionCommand{ItemID: id, Action: "schedule", Version: 4, ScheduledAt: &at}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.ItemID != id || got.Action != lifecycle.ActionSchedule || got.ExpectedVersion != 4 || !got.ScheduledAt.Equal(at) {
		t.Fatalf("unexpected request %+v", got)
	}
	if observed == nil || observed.Version != 5 {
		t.Fatalf("expected observer to receive updated item, got %+v", observed)
	}
}

func TestTransitionHandlerKeepsLifecycleSentinel(t *testing.T) {
	handler := NewTransitionHandler(TransitionerFunc(func(context.Context, lifecycle.TransitionRequest) (*content.Item, error) {
		return nil, lifecycle.ErrStaleVersion
	}), logging.NoOp(), nil)

	err := handler.Execute(context.Background(), TransitionCommand{ItemID: uuid.New(), Action: "publish", Version: 1})
	if !errors.Is(err, lifecycle.ErrStaleVersion) {
		t.Fatalf("expected stale version to survive wrapping, got %v", err)
	}
}

func TestTransitionHandlerCategorisesDomainFailures(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
	}{
		{name: "invalid transition", err: lifecycle.ErrInvalidTransition, category: goerrors.CategoryValidation},
		{name: "past date", err: lifecycle.ErrPastDateRejected, category: goerrors.CategoryValidation},
		{name: "stale version", err: lifecycle.ErrStaleVersion, category: goerrors.CategoryCommand},
		{name: "store failure", err: errors.New("connection reset"), category: goerrors.CategoryCommand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewTransitionHandler(TransitionerFunc(func(context.Context, lifecycle.TransitionRequest) (*content.Item, error) {
				return nil, tc.err
			}), logging.NoOp(), nil)

			err := handler.Execute(context.Background(), TransitionCommand{ItemID: uuid.New(), Action: "draft", Version: 3})
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %v, got %v", tc.category, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected cause to survive, got %v", err)
			}
		})
	}
}

func TestBulkHandlerBuildsRequest(t *testing.T) {
	folder := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	var got bulk.Request
	var observed *bulk.Result
	svc := BulkMutatorFunc(func(_ context.Context, req bulk.Request) (*bulk.Result, error) {
		got = req
		return &bulk.Result{Op: req.Op, Succeeded: req.IDs[:1], Failed: []bulk.Failure{{ID: req.IDs[1], Reason: bulk.ReasonNotFound}}}, nil
	})
	handler := NewBulkHandler(svc, logging.NoOp(), func(_ context.Context, result *bulk.Result) { observed = result })

	if err := handler.Execute(context.Background(), BulkCommand{Op: "move", IDs: ids, FolderID: &folder}); err != nil {
		t.Fatalf("expected partial failure not to be an error, got %v", err)
	}
	if got.Op != bulk.OpMoveToFolder || got.Params.FolderID == nil || *got.Params.FolderID != folder {
		t.Fatalf("unexpected request %+v", got)
	}
	if observed == nil || !observed.Partial() {
		t.Fatalf("expected partial result to be observed")
	}

	err := handler.Execute(context.Background(), BulkCommand{Op: "delete"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
}

func TestRepairHandler(t *testing.T) {
	at := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	var gotStrategy bulk.Strategy
	svc := RepairerFunc(func(_ context.Context, kind domain.Kind, strategy bulk.Strategy, when *time.Time) (*bulk.RepairResult, error) {
		gotStrategy = strategy
		if kind != domain.KindMedia || when == nil {
			t.Fatalf("unexpected repair args %s %v", kind, when)
		}
		return &bulk.RepairResult{Audit: &invariants.Report{Kind: kind}, Result: &bulk.Result{}}, nil
	})
	handler := NewRepairHandler(svc, logging.NoOp(), nil)

	if err := handler.Execute(context.Background(), RepairCommand{Kind: "media", Strategy: "schedule", ScheduledAt: &at}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotStrategy != bulk.StrategySchedule {
		t.Fatalf("expected schedule strategy, got %q", gotStrategy)
	}

	err := handler.Execute(context.Background(), RepairCommand{Kind: "media", Strategy: "schedule"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected scheduled_at to be required, got %v", err)
	}
}

func TestAuditHandler(t *testing.T) {
	var observed *invariants.Report
	handler := NewAuditHandler(AuditorFunc(func(_ context.Context, kind domain.Kind) (*invariants.Report, error) {
		return &invariants.Report{Kind: kind, Total: 3}, nil
	}), logging.NoOp(), func(_ context.Context, report *invariants.Report) { observed = report })

	if err := handler.Execute(context.Background(), AuditCommand{Kind: "popup_banner"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if observed == nil || observed.Kind != domain.KindPopupBanner {
		t.Fatalf("expected popup_banner report, got %+v", observed)
	}
	if err := handler.Execute(context.Background(), AuditCommand{}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected kind to be required, got %v", err)
	}
}
