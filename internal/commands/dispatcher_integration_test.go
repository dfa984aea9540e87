package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type sweepMessage struct {
	Kind string
}

func (sweepMessage) Type() string { return "publish.test.sweep" }

func (m sweepMessage) Validate() error {
	if m.Kind == "" {
		return errors.New("kind required")
	}
	return nil
}

func TestDispatchedSweepRetriesTransientStoreErrors(t *testing.T) {
	var attempts atomic.Int32
	var statuses []TelemetryStatus
	handler := NewHandler(func(ctx context.Context, msg sweepMessage) error {
		if attempts.Add(1) == 1 {
			return errors.New("database is locked")
		}
		return nil
	},
		WithTimeout[sweepMessage](time.Second),
		WithTelemetry(func(_ context.Context, _ sweepMessage, info TelemetryInfo) {
			statuses = append(statuses, info.Status)
		}),
	)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), sweepMessage{Kind: "banner"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Fatalf("expected initial attempt plus one retry, got %d", attempts.Load())
	}
	if len(statuses) != 2 || statuses[0] != TelemetryStatusFailed || statuses[1] != TelemetryStatusSuccess {
		t.Fatalf("expected failed then success telemetry, got %v", statuses)
	}
}

func TestDispatchedInvalidMessageNeverRuns(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(context.Context, sweepMessage) error {
		attempts.Add(1)
		return nil
	})

	sub := dispatcher.SubscribeCommand(handler)
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), sweepMessage{}); err == nil {
		t.Fatal("expected validation failure to reach the caller")
	}
	if attempts.Load() != 0 {
		t.Fatalf("expected handler body to be skipped, ran %d times", attempts.Load())
	}
}
