package publishcmd

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

const repairMessageType = "publish.invariants.repair"

// RepairCommand fixes orphaned schedules of Kind using Strategy.
type RepairCommand struct {
	Kind        string     `json:"kind"`
	Strategy    string     `json:"strategy"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

func (RepairCommand) Type() string { return repairMessageType }

func (m RepairCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Kind,
			validation.Required.Error("kind is required"),
			validation.In(kindValues()...).Error("kind is not a known content kind"),
		),
		validation.Field(&m.Strategy,
			validation.Required.Error("strategy is required"),
			validation.In(strategyValues()...).Error("strategy must be draft or schedule"),
		),
		validation.Field(&m.ScheduledAt,
			validation.When(m.Strategy == string(bulk.StrategySchedule), validation.Required.Error("scheduled_at is required for schedule")),
		),
	)
}

type RepairHandler struct {
	inner *commands.Handler[RepairCommand]
}

func NewRepairHandler(svc Repairer, logger interfaces.Logger, observe Observer[*bulk.RepairResult], opts ...commands.HandlerOption[RepairCommand]) *RepairHandler {
	exec := func(ctx context.Context, msg RepairCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}
		strategy, err := bulk.ParseStrategy(msg.Strategy)
		if err != nil {
			return err
		}
		result, err := svc.RepairOrphans(ctx, kind, strategy, msg.ScheduledAt)
		if err != nil {
			return err
		}
		observe.notify(ctx, result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[RepairCommand]{
		commands.WithLogger[RepairCommand](logger),
		commands.WithOperation[RepairCommand]("invariants.repair"),
		withDomainCodes[RepairCommand](),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &RepairHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *RepairHandler) Execute(ctx context.Context, msg RepairCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *RepairHandler) CLIHandler() any {
	return h
}

func (h *RepairHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"repair"},
		Group:       "publish",
		Description: "Convert orphaned schedules to draft or give them a date",
	}
}
