package invariants

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/google/uuid"
)

const defaultPageSize = 200

// Finding describes one item that breaks a publish invariant.
type Finding struct {
	ID          uuid.UUID     `json:"id"`
	Kind        domain.Kind   `json:"kind"`
	Status      domain.Status `json:"publish_status"`
	Class       Class         `json:"class"`
	Diagnosis   string        `json:"diagnosis"`
	ScheduledAt string        `json:"scheduled_at,omitempty"`
	Version     int64         `json:"version"`
}

// Report is the advisory output of an audit. It never mutates items.
type Report struct {
	Kind        domain.Kind   `json:"kind"`
	GeneratedAt time.Time     `json:"generated_at"`
	Total       int           `json:"total"`
	Counts      map[Class]int `json:"counts"`
	Due         int           `json:"due"`
	Findings    []Finding     `json:"findings"`
}

// OrphanIDs returns the ids of orphaned scheduled items in finding order.
func (r *Report) OrphanIDs() []uuid.UUID {
	return r.IDs(ClassOrphanedScheduled)
}

// Orphans returns the orphaned scheduled findings in finding order.
func (r *Report) Orphans() []Finding {
	if r == nil {
		return nil
	}
	orphans := make([]Finding, 0, r.Counts[ClassOrphanedScheduled])
	for _, finding := range r.Findings {
		if finding.Class == ClassOrphanedScheduled {
			orphans = append(orphans, finding)
		}
	}
	return orphans
}

// IDs returns the ids of findings in class.
func (r *Report) IDs(class Class) []uuid.UUID {
	if r == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, r.Counts[class])
	for _, finding := range r.Findings {
		if finding.Class == class {
			ids = append(ids, finding.ID)
		}
	}
	return ids
}

// Clean reports whether every item is in a healthy class.
func (r *Report) Clean() bool {
	return r != nil && len(r.Findings) == 0
}

// Auditor scans a kind and classifies schedule related drift.
type Auditor struct {
	items    content.ItemRepository
	now      func() time.Time
	logger   interfaces.Logger
	pageSize int
}

type Option func(*Auditor)

func WithClock(clock func() time.Time) Option {
	return func(a *Auditor) {
		if clock != nil {
			a.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(a *Auditor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPageSize sets how many items are read per listing call.
func WithPageSize(size int) Option {
	return func(a *Auditor) {
		if size > 0 {
			a.pageSize = size
		}
	}
}

func NewAuditor(items content.ItemRepository, opts ...Option) *Auditor {
	a := &Auditor{
		items:    items,
		now:      time.Now,
		logger:   logging.NoOp(),
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Audit classifies every item of kind.
func (a *Auditor) Audit(ctx context.Context, kind domain.Kind) (*Report, error) {
	if a.items == nil {
		return nil, errors.New("invariants: item repository is nil")
	}
	if !kind.Valid() {
		return nil, domain.ErrUnknownKind
	}
	now := a.now()
	report := &Report{
		Kind:        kind,
		GeneratedAt: now,
		Counts:      make(map[Class]int, len(Classes())),
		Findings:    []Finding{},
	}
	for _, class := range Classes() {
		report.Counts[class] = 0
	}

	filter := content.ForKind(kind)
	filter.Limit = a.pageSize
	for {
		page, err := a.items.List(ctx, filter)
		if err != nil {
			a.logger.Error("invariants.list.failed", "kind", kind, "error", err)
			return nil, err
		}
		for _, item := range page {
			a.observe(report, item, now)
		}
		if len(page) < a.pageSize {
			break
		}
		last := page[len(page)-1].ID
		filter.AfterID = &last
	}

	orphans := report.Counts[ClassOrphanedScheduled]
	if orphans > 0 {
		a.logger.Warn("invariants.orphans.detected", "kind", kind, "orphans", orphans)
	}
	a.logger.Info("invariants.audit.finished",
		"kind", kind,
		"total", report.Total,
		"findings", len(report.Findings),
		"due", report.Due,
	)
	return report, nil
}

func (a *Auditor) observe(report *Report, item *content.Item, now time.Time) {
	class, diagnosis := Classify(item)
	report.Total++
	report.Counts[class]++
	if class == ClassValidScheduled && item.ScheduledAt.DueAt(now) {
		report.Due++
	}
	if class.Healthy() {
		return
	}
	report.Findings = append(report.Findings, Finding{
		ID:          item.ID,
		Kind:        item.Kind,
		Status:      item.Status,
		Class:       class,
		Diagnosis:   diagnosis,
		ScheduledAt: item.ScheduledAt.Raw,
		Version:     item.Version,
	})
}
