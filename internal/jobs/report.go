package jobs

import (
	"time"

	"github.com/goliatone/go-publish/internal/domain"
	"github.com/google/uuid"
)

// Outcome classifies what a sweep did with one candidate.
type Outcome string

const (
	// OutcomePublished means this sweep moved the item to published.
	OutcomePublished Outcome = "published"
	// OutcomeAlreadyPublished means another writer got there first. It is a
	// successful no-op.
	OutcomeAlreadyPublished Outcome = "already_published"
	// OutcomeError covers vanished items, store failures and timeouts.
	OutcomeError Outcome = "error"
)

// Outcomes lists every outcome in report order.
func Outcomes() []Outcome {
	return []Outcome{OutcomePublished, OutcomeAlreadyPublished, OutcomeError}
}

// ItemResult is the per-candidate line of a sweep report.
type ItemResult struct {
	ID      uuid.UUID   `json:"id"`
	Kind    domain.Kind `json:"kind"`
	Outcome Outcome     `json:"outcome"`
	Error   string      `json:"error,omitempty"`
}

// SweepReport summarises one sweep run.
type SweepReport struct {
	StartedAt  time.Time                       `json:"started_at"`
	FinishedAt time.Time                       `json:"finished_at"`
	Kind       *domain.Kind                    `json:"kind,omitempty"`
	Totals     map[Outcome]int                 `json:"totals"`
	ByKind     map[domain.Kind]map[Outcome]int `json:"by_kind"`
	Items      []ItemResult                    `json:"items"`
	TouchedIDs []uuid.UUID                     `json:"touched_ids"`
}

func newSweepReport(startedAt time.Time, kind *domain.Kind) *SweepReport {
	report := &SweepReport{
		StartedAt:  startedAt,
		Totals:     make(map[Outcome]int, 3),
		ByKind:     map[domain.Kind]map[Outcome]int{},
		Items:      []ItemResult{},
		TouchedIDs: []uuid.UUID{},
	}
	if kind != nil {
		scoped := *kind
		report.Kind = &scoped
	}
	for _, outcome := range Outcomes() {
		report.Totals[outcome] = 0
	}
	return report
}

func (r *SweepReport) add(result ItemResult) {
	r.Items = append(r.Items, result)
	r.Totals[result.Outcome]++
	counts, ok := r.ByKind[result.Kind]
	if !ok {
		counts = make(map[Outcome]int, 3)
		r.ByKind[result.Kind] = counts
	}
	counts[result.Outcome]++
	if result.Outcome == OutcomePublished {
		r.TouchedIDs = append(r.TouchedIDs, result.ID)
	}
}

// Published returns the number of items this run published.
func (r *SweepReport) Published() int {
	if r == nil {
		return 0
	}
	return r.Totals[OutcomePublished]
}

// Total returns the number of candidates processed.
func (r *SweepReport) Total() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// Duration is the wall time of the run.
func (r *SweepReport) Duration() time.Duration {
	if r == nil || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
