package publishcmd

import (
	"context"
	"time"

	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/internal/lifecycle"
)

// Sweeper runs a sweep for one kind or all kinds.
type Sweeper interface {
	RunSweep(ctx context.Context, kind *domain.Kind) (*jobs.SweepReport, error)
}

// SweeperFunc adapts a function to Sweeper.
type SweeperFunc func(ctx context.Context, kind *domain.Kind) (*jobs.SweepReport, error)

func (f SweeperFunc) RunSweep(ctx context.Context, kind *domain.Kind) (*jobs.SweepReport, error) {
	return f(ctx, kind)
}

// Auditor classifies the items of a kind.
type Auditor interface {
	AuditInvariants(ctx context.Context, kind domain.Kind) (*invariants.Report, error)
}

type AuditorFunc func(ctx context.Context, kind domain.Kind) (*invariants.Report, error)

func (f AuditorFunc) AuditInvariants(ctx context.Context, kind domain.Kind) (*invariants.Report, error) {
	return f(ctx, kind)
}

// Transitioner applies a single item transition.
type Transitioner interface {
	Transition(ctx context.Context, req lifecycle.TransitionRequest) (*content.Item, error)
}

type TransitionerFunc func(ctx context.Context, req lifecycle.TransitionRequest) (*content.Item, error)

func (f TransitionerFunc) Transition(ctx context.Context, req lifecycle.TransitionRequest) (*content.Item, error) {
	return f(ctx, req)
}

// BulkMutator applies one operation to many items.
type BulkMutator interface {
	BulkMutate(ctx context.Context, req bulk.Request) (*bulk.Result, error)
}

type BulkMutatorFunc func(ctx context.Context, req bulk.Request) (*bulk.Result, error)

func (f BulkMutatorFunc) BulkMutate(ctx context.Context, req bulk.Request) (*bulk.Result, error) {
	return f(ctx, req)
}

// Repairer fixes orphaned schedules of a kind.
type Repairer interface {
	RepairOrphans(ctx context.Context, kind domain.Kind, strategy bulk.Strategy, at *time.Time) (*bulk.RepairResult, error)
}

type RepairerFunc func(ctx context.Context, kind domain.Kind, strategy bulk.Strategy, at *time.Time) (*bulk.RepairResult, error)

func (f RepairerFunc) RepairOrphans(ctx context.Context, kind domain.Kind, strategy bulk.Strategy, at *time.Time) (*bulk.RepairResult, error) {
	return f(ctx, kind, strategy, at)
}

// Observer receives the result of a successful command run.
type Observer[R any] func(ctx context.Context, result R)

func (o Observer[R]) notify(ctx context.Context, result R) {
	if o != nil {
		o(ctx, result)
	}
}
