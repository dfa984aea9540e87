package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// Event describes something that happened to a publishable object.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

func (f HookFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Emitter fans events out to hooks. A nil or hookless emitter is disabled.
type Emitter struct {
	hooks   []Hook
	channel string
	now     func() time.Time
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithChannel sets the default channel stamped on events without one.
func WithChannel(channel string) Option {
	return func(e *Emitter) {
		e.channel = strings.TrimSpace(channel)
	}
}

// WithClock overrides the clock used for events without OccurredAt.
func WithClock(clock func() time.Time) Option {
	return func(e *Emitter) {
		if clock != nil {
			e.now = clock
		}
	}
}

func NewEmitter(hooks []Hook, opts ...Option) *Emitter {
	e := &Emitter{channel: "publish", now: time.Now}
	for _, hook := range hooks {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Enabled reports whether emitting has any effect.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Emit notifies every hook. Hook failures are joined; every hook is called
// regardless of earlier failures.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	if event.Channel == "" {
		event.Channel = e.channel
	}
	event.Metadata = maps.Clone(event.Metadata)

	var errs []error
	for _, hook := range e.hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
