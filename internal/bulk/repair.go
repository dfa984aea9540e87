package bulk

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/google/uuid"
)

// Strategy picks how orphaned schedules are repaired.
type Strategy string

const (
	// StrategyDraft converts orphans back to draft.
	StrategyDraft Strategy = "draft"
	// StrategySchedule gives orphans a real publish date.
	StrategySchedule Strategy = "schedule"
)

var ErrUnknownStrategy = fmt.Errorf("%w: unknown repair strategy", ErrInvalidRequest)

func ParseStrategy(input string) (Strategy, error) {
	switch strategy := Strategy(strings.ToLower(strings.TrimSpace(input))); strategy {
	case StrategyDraft, StrategySchedule:
		return strategy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, input)
	}
}

// RepairResult pairs the audit that selected the orphans with the outcome of
// fixing them.
type RepairResult struct {
	Audit  *invariants.Report `json:"audit"`
	Result *Result            `json:"result"`
}

// Repair audits kind and applies strategy to every orphaned schedule. at is
// required for StrategySchedule. Each orphan is written against the version
// the audit saw; an item changed since then fails with stale_version and is
// left as it is. Orphans are processed in batches of at most the coordinator's
// max items.
func (c *Coordinator) Repair(ctx context.Context, kind domain.Kind, strategy Strategy, at *time.Time) (*RepairResult, error) {
	var (
		op   Op
		step lifecycle.Step
	)
	switch strategy {
	case StrategyDraft:
		op = OpDraft
		step = lifecycle.Step{Action: lifecycle.ActionDraft}
	case StrategySchedule:
		op = OpSchedule
		if err := c.validateSchedule(Params{ScheduledAt: at}); err != nil {
			return nil, err
		}
		step = lifecycle.Step{Action: lifecycle.ActionSchedule, ScheduledAt: at}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	report, err := c.auditor.Audit(ctx, kind)
	if err != nil {
		return nil, err
	}
	orphans := report.Orphans()
	result := &Result{Op: op, Succeeded: []uuid.UUID{}, Failed: []Failure{}}
	for batch := range slices.Chunk(orphans, c.maxItems) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(batch))
		for i, finding := range batch {
			ids[i] = finding.ID
		}
		part := c.run(ctx, op, ids, func(ctx context.Context, i int) error {
			return c.repairOne(ctx, batch[i], step)
		})
		result.Succeeded = append(result.Succeeded, part.Succeeded...)
		result.Failed = append(result.Failed, part.Failed...)
	}

	if len(orphans) > 0 {
		c.logger.Info("bulk.repair.finished",
			"kind", kind,
			"strategy", strategy,
			"orphans", len(orphans),
			"failed", len(result.Failed),
		)
	}
	return &RepairResult{Audit: report, Result: result}, nil
}

func (c *Coordinator) repairOne(ctx context.Context, finding invariants.Finding, step lifecycle.Step) error {
	item, err := c.items.GetByID(ctx, finding.ID)
	if err != nil {
		return err
	}
	if item.Version != finding.Version {
		conflict := &content.VersionConflictError{ID: item.ID, Expected: finding.Version, Actual: item.Version}
		return fmt.Errorf("%w: %w", lifecycle.ErrStaleVersion, conflict)
	}
	if class, _ := invariants.Classify(item); class != invariants.ClassOrphanedScheduled {
		return fmt.Errorf("%w: item is now %s", lifecycle.ErrStaleVersion, class)
	}
	_, err = c.machine.Apply(ctx, item, step)
	return err
}
