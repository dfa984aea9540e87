package invariants

import (
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
)

// Class is the audit bucket an item falls into.
type Class string

const (
	ClassValidScheduled        Class = "valid_scheduled"
	ClassOrphanedScheduled     Class = "orphaned_scheduled"
	ClassConsistentDraft       Class = "consistent_draft"
	ClassConsistentPublished   Class = "consistent_published"
	ClassInconsistentDraft     Class = "inconsistent_draft"
	ClassInconsistentPublished Class = "inconsistent_published"
	ClassUnknownStatus         Class = "unknown_status"
)

// Classes lists every class in report order.
func Classes() []Class {
	return []Class{
		ClassValidScheduled,
		ClassOrphanedScheduled,
		ClassConsistentDraft,
		ClassConsistentPublished,
		ClassInconsistentDraft,
		ClassInconsistentPublished,
		ClassUnknownStatus,
	}
}

// Healthy reports whether items in the class need no attention.
func (c Class) Healthy() bool {
	switch c {
	case ClassValidScheduled, ClassConsistentDraft, ClassConsistentPublished:
		return true
	default:
		return false
	}
}

const (
	diagScheduledNull        = "Scheduled status but scheduled_at is null"
	diagScheduledUnparsable  = "Scheduled status but scheduled_at is unparsable: "
	diagDraftScheduled       = "Draft status but scheduled_at is set"
	diagDraftPublished       = "Draft status but published_at is set"
	diagPublishedMissingDate = "Published status but published_at is null"
	diagPublishedScheduled   = "Published status but scheduled_at is set"
	diagUnknownStatus        = "Unknown publish_status: "
)

// Classify buckets one item. The diagnosis is empty for healthy classes.
func Classify(item *content.Item) (Class, string) {
	switch item.Status {
	case domain.StatusScheduled:
		switch {
		case item.ScheduledAt.Valid:
			return ClassValidScheduled, ""
		case item.ScheduledAt.Corrupted():
			return ClassOrphanedScheduled, diagScheduledUnparsable + item.ScheduledAt.Raw
		default:
			return ClassOrphanedScheduled, diagScheduledNull
		}
	case domain.StatusDraft:
		switch {
		case !item.ScheduledAt.IsZero():
			return ClassInconsistentDraft, diagDraftScheduled
		case item.PublishedAt != nil:
			return ClassInconsistentDraft, diagDraftPublished
		default:
			return ClassConsistentDraft, ""
		}
	case domain.StatusPublished:
		switch {
		case item.PublishedAt == nil:
			return ClassInconsistentPublished, diagPublishedMissingDate
		case !item.ScheduledAt.IsZero():
			return ClassInconsistentPublished, diagPublishedScheduled
		default:
			return ClassConsistentPublished, ""
		}
	default:
		return ClassUnknownStatus, diagUnknownStatus + string(item.Status)
	}
}
