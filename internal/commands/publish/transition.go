package publishcmd

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/google/uuid"
)

const transitionMessageType = "publish.item.transition"

// TransitionCommand moves one item. Version is the version the caller last
// read.
type TransitionCommand struct {
	ItemID      uuid.UUID  `json:"item_id"`
	Action      string     `json:"action"`
	Version     int64      `json:"version"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

func (TransitionCommand) Type() string { return transitionMessageType }

func (m TransitionCommand) Validate() error {
	errs := validation.Errors{}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("publish.transition.item_id_required", "item_id is required")
	}
	action, err := lifecycle.ParseAction(m.Action)
	if err != nil {
		errs["action"] = validation.NewError("publish.transition.action_invalid", "action is not supported")
	}
	if m.Version < 1 {
		errs["version"] = validation.NewError("publish.transition.version_required", "version must be at least 1")
	}
	if err == nil && action.NeedsDate() && (m.ScheduledAt == nil || m.ScheduledAt.IsZero()) {
		errs["scheduled_at"] = validation.NewError("publish.transition.scheduled_at_required", "scheduled_at is required for "+string(action))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransitionHandler struct {
	inner *commands.Handler[TransitionCommand]
}

func NewTransitionHandler(svc Transitioner, logger interfaces.Logger, observe Observer[*content.Item], opts ...commands.HandlerOption[TransitionCommand]) *TransitionHandler {
	exec := func(ctx context.Context, msg TransitionCommand) error {
		action, err := lifecycle.ParseAction(msg.Action)
		if err != nil {
			return err
		}
		item, err := svc.Transition(ctx, lifecycle.TransitionRequest{
			ItemID:          msg.ItemID,
			Action:          action,
			ExpectedVersion: msg.Version,
			ScheduledAt:     msg.ScheduledAt,
		})
		if err != nil {
			return err
		}
		observe.notify(ctx, item)
		return nil
	}

	handlerOpts := []commands.HandlerOption[TransitionCommand]{
		commands.WithLogger[TransitionCommand](logger),
		commands.WithOperation[TransitionCommand]("item.transition"),
		withDomainCodes[TransitionCommand](),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &TransitionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *TransitionHandler) Execute(ctx context.Context, msg TransitionCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *TransitionHandler) CLIHandler() any {
	return h
}

func (h *TransitionHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"transition"},
		Group:       "publish",
		Description: "Schedule, publish, reschedule or draft a single item",
	}
}
