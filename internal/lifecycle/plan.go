package lifecycle

import (
	"fmt"
	"time"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
)

// Step is the pure input to Plan: which action to apply and, for schedule and
// reschedule, when.
type Step struct {
	Action      Action
	ScheduledAt *time.Time
}

// Plan computes the store patch for applying step to item at now. It never
// touches storage. Legality is checked before the date.
func Plan(item *content.Item, step Step, now time.Time) (content.Patch, error) {
	if item == nil {
		return content.Patch{}, ErrNotFound
	}
	if _, ok := legalFrom[step.Action]; !ok {
		return content.Patch{}, fmt.Errorf("%w: %q", ErrUnknownAction, step.Action)
	}
	if !step.Action.Allowed(item.Status) {
		return content.Patch{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, step.Action, item.Status)
	}

	switch step.Action {
	case ActionSchedule:
		at, err := futureDate(step.ScheduledAt, now)
		if err != nil {
			return content.Patch{}, err
		}
		return content.Patch{
			Status:      content.SetTo(domain.StatusScheduled),
			ScheduledAt: content.SetTo(content.TimestampOf(at)),
			PublishedAt: content.Clear[time.Time](),
		}, nil
	case ActionReschedule:
		at, err := futureDate(step.ScheduledAt, now)
		if err != nil {
			return content.Patch{}, err
		}
		return content.Patch{
			ScheduledAt: content.SetTo(content.TimestampOf(at)),
		}, nil
	case ActionPublishNow:
		return content.Patch{
			Status:      content.SetTo(domain.StatusPublished),
			PublishedAt: content.SetTo(now.UTC()),
			ScheduledAt: content.Clear[content.Timestamp](),
		}, nil
	default:
		return content.Patch{
			Status:      content.SetTo(domain.StatusDraft),
			ScheduledAt: content.Clear[content.Timestamp](),
			PublishedAt: content.Clear[time.Time](),
		}, nil
	}
}

func futureDate(at *time.Time, now time.Time) (time.Time, error) {
	if at == nil || at.IsZero() {
		return time.Time{}, ErrMissingScheduledAt
	}
	if !at.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s is not after %s", ErrPastDateRejected, at.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return at.UTC(), nil
}
