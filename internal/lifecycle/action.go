package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-publish/internal/domain"
)

// Action names a publish lifecycle transition.
type Action string

const (
	// ActionSchedule sets a future publish time. Legal from draft and scheduled.
	ActionSchedule Action = "schedule"
	// ActionPublishNow publishes immediately. Legal from draft and scheduled.
	ActionPublishNow Action = "publish_now"
	// ActionDraft cancels a schedule or unpublishes. Legal from scheduled and published.
	ActionDraft Action = "draft"
	// ActionReschedule moves the publish time of a scheduled item.
	ActionReschedule Action = "reschedule"
)

var legalFrom = map[Action][]domain.Status{
	ActionSchedule:   {domain.StatusDraft, domain.StatusScheduled},
	ActionPublishNow: {domain.StatusDraft, domain.StatusScheduled},
	ActionDraft:      {domain.StatusScheduled, domain.StatusPublished},
	ActionReschedule: {domain.StatusScheduled},
}

// Actions lists every action in a stable order.
func Actions() []Action {
	return []Action{ActionSchedule, ActionPublishNow, ActionDraft, ActionReschedule}
}

// ParseAction normalises an action name. "publish" and "unpublish" are
// accepted as aliases used by the admin console buttons.
func ParseAction(input string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(input))
	switch name {
	case "publish":
		return ActionPublishNow, nil
	case "unpublish", "cancel_schedule":
		return ActionDraft, nil
	}
	action := Action(name)
	if _, ok := legalFrom[action]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, input)
	}
	return action, nil
}

// Allowed reports whether action may be applied to an item in status.
func (a Action) Allowed(status domain.Status) bool {
	return slices.Contains(legalFrom[a], status)
}

// NeedsDate reports whether the action requires a target time.
func (a Action) NeedsDate() bool {
	return a == ActionSchedule || a == ActionReschedule
}

// Available returns the actions legal from status.
func Available(status domain.Status) []Action {
	out := []Action{}
	for _, action := range Actions() {
		if action.Allowed(status) {
			out = append(out, action)
		}
	}
	return out
}
