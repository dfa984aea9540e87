package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
)

var planNow = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestPlanLegality(t *testing.T) {
	future := timePtr(planNow.Add(time.Hour))
	cases := []struct {
		action Action
		from   domain.Status
		ok     bool
	}{
		{ActionSchedule, domain.StatusDraft, true},
		{ActionSchedule, domain.StatusScheduled, true},
		{ActionSchedule, domain.StatusPublished, false},
		{ActionPublishNow, domain.StatusDraft, true},
		{ActionPublishNow, domain.StatusScheduled, true},
		{ActionPublishNow, domain.StatusPublished, false},
		{ActionDraft, domain.StatusDraft, false},
		{ActionDraft, domain.StatusScheduled, true},
		{ActionDraft, domain.StatusPublished, true},
		{ActionReschedule, domain.StatusDraft, false},
		{ActionReschedule, domain.StatusScheduled, true},
		{ActionReschedule, domain.StatusPublished, false},
	}
	for _, tc := range cases {
		item := &content.Item{Status: tc.from}
		_, err := Plan(item, Step{Action: tc.action, ScheduledAt: future}, planNow)
		if tc.ok && err != nil {
			t.Fatalf("%s from %s: unexpected error %v", tc.action, tc.from, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s from %s: expected ErrInvalidTransition, got %v", tc.action, tc.from, err)
		}
	}
}

func TestPlanScheduleClearsPublishedAt(t *testing.T) {
	at := planNow.Add(2 * time.Hour)
	patch, err := Plan(&content.Item{Status: domain.StatusDraft}, Step{Action: ActionSchedule, ScheduledAt: &at}, planNow)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	item := &content.Item{Status: domain.StatusDraft}
	patch.ApplyTo(item)
	if item.Status != domain.StatusScheduled {
		t.Fatalf("expected scheduled, got %s", item.Status)
	}
	if !item.ScheduledAt.Valid || !item.ScheduledAt.Time.Equal(at) {
		t.Fatalf("expected scheduled_at %v, got %+v", at, item.ScheduledAt)
	}
	if item.PublishedAt != nil {
		t.Fatalf("expected published_at cleared")
	}
}

func TestPlanRejectsPastAndPresentDates(t *testing.T) {
	for _, at := range []time.Time{planNow, planNow.Add(-time.Second)} {
		_, err := Plan(&content.Item{Status: domain.StatusDraft}, Step{Action: ActionSchedule, ScheduledAt: timePtr(at)}, planNow)
		if !errors.Is(err, ErrPastDateRejected) {
			t.Fatalf("schedule at %v: expected ErrPastDateRejected, got %v", at, err)
		}
		_, err = Plan(&content.Item{Status: domain.StatusScheduled}, Step{Action: ActionReschedule, ScheduledAt: timePtr(at)}, planNow)
		if !errors.Is(err, ErrPastDateRejected) {
			t.Fatalf("reschedule at %v: expected ErrPastDateRejected, got %v", at, err)
		}
	}
}

func TestPlanScheduleRequiresDate(t *testing.T) {
	_, err := Plan(&content.Item{Status: domain.StatusDraft}, Step{Action: ActionSchedule}, planNow)
	if !errors.Is(err, ErrMissingScheduledAt) {
		t.Fatalf("expected ErrMissingScheduledAt, got %v", err)
	}
}

func TestPlanPublishNow(t *testing.T) {
	item := &content.Item{Status: domain.StatusScheduled, ScheduledAt: content.TimestampOf(planNow.Add(-time.Minute))}
	patch, err := Plan(item, Step{Action: ActionPublishNow}, planNow)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	patch.ApplyTo(item)
	if item.Status != domain.StatusPublished || item.PublishedAt == nil || !item.PublishedAt.Equal(planNow) {
		t.Fatalf("expected published at now, got %+v", item)
	}
	if !item.ScheduledAt.IsZero() {
		t.Fatalf("expected scheduled_at cleared, got %+v", item.ScheduledAt)
	}
}

func TestPlanRescheduleOnlyTouchesScheduledAt(t *testing.T) {
	at := planNow.Add(3 * time.Hour)
	patch, err := Plan(&content.Item{Status: domain.StatusScheduled}, Step{Action: ActionReschedule, ScheduledAt: &at}, planNow)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if patch.Status.Set || patch.PublishedAt.Set || patch.FolderID.Set {
		t.Fatalf("expected reschedule to set scheduled_at only, got %+v", patch)
	}
}

func TestPlanDraftClearsDates(t *testing.T) {
	published := planNow.Add(-time.Hour)
	item := &content.Item{Status: domain.StatusPublished, PublishedAt: &published}
	patch, err := Plan(item, Step{Action: ActionDraft}, planNow)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	patch.ApplyTo(item)
	if item.Status != domain.StatusDraft || item.PublishedAt != nil || !item.ScheduledAt.IsZero() {
		t.Fatalf("expected consistent draft, got %+v", item)
	}
}

func TestParseActionAliases(t *testing.T) {
	cases := map[string]Action{
		"publish":     ActionPublishNow,
		"unpublish":   ActionDraft,
		"Schedule":    ActionSchedule,
		"reschedule ": ActionReschedule,
	}
	for input, want := range cases {
		got, err := ParseAction(input)
		if err != nil || got != want {
			t.Fatalf("ParseAction(%q): expected %s, got %s (%v)", input, want, got, err)
		}
	}
	if _, err := ParseAction("archive"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestAvailableFromScheduled(t *testing.T) {
	got := Available(domain.StatusScheduled)
	if len(got) != 4 {
		t.Fatalf("expected every action from scheduled, got %v", got)
	}
	if len(Available(domain.StatusPublished)) != 1 {
		t.Fatalf("expected only draft from published")
	}
}
