package content

import (
	"bytes"
	"time"

	"github.com/goliatone/go-publish/internal/domain"
	"github.com/google/uuid"
)

// ListFilter narrows item listings. Results are ordered by id.
type ListFilter struct {
	Kind          *domain.Kind
	Status        *domain.Status
	FolderID      *uuid.UUID
	Uncategorized bool

	// DueAt restricts results to scheduled items whose scheduled_at parses
	// and is at or before the given instant. Every store evaluates it with
	// Timestamp.DueAt.
	DueAt *time.Time

	// AfterID resumes a listing after the given id.
	AfterID *uuid.UUID
	Limit   int

	// populated limits SQL scans to rows with a non-empty scheduled_at.
	populated bool
}

// ForKind returns a filter scoped to kind.
func ForKind(kind domain.Kind) ListFilter {
	return ListFilter{Kind: &kind}
}

// DueFilter returns the sweep candidate filter. A nil kind selects all kinds.
func DueFilter(kind *domain.Kind, now time.Time, limit int) ListFilter {
	status := domain.StatusScheduled
	due := now.UTC()
	return ListFilter{Kind: kind, Status: &status, DueAt: &due, Limit: limit}
}

// Matches reports whether item passes every predicate except paging.
func (f ListFilter) Matches(item *Item) bool {
	if item == nil {
		return false
	}
	if f.Kind != nil && item.Kind != *f.Kind {
		return false
	}
	if f.Status != nil && item.Status != *f.Status {
		return false
	}
	if f.Uncategorized && item.FolderID != nil {
		return false
	}
	if f.FolderID != nil && !item.InFolder(f.FolderID) {
		return false
	}
	if f.DueAt != nil {
		if item.Status != domain.StatusScheduled || !item.ScheduledAt.DueAt(*f.DueAt) {
			return false
		}
	}
	if f.AfterID != nil && compareIDs(item.ID, *f.AfterID) <= 0 {
		return false
	}
	return true
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
