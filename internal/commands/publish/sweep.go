package publishcmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

const sweepMessageType = "publish.sweep.run"

// SweepCommand publishes every due scheduled item. An empty Kind sweeps all
// kinds.
type SweepCommand struct {
	Kind string `json:"kind,omitempty"`
}

// Type implements command.Message.
func (SweepCommand) Type() string { return sweepMessageType }

// Validate satisfies command.Message.
func (m SweepCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Kind, validation.In(kindValues()...).Error("kind is not a known content kind")),
	)
}

type sweepConfig struct {
	cronConfig command.HandlerConfig
	timeout    time.Duration
	observe    Observer[*jobs.SweepReport]
	telemetry  commands.Telemetry[SweepCommand]
}

// SweepOption customises the sweep handler.
type SweepOption func(*sweepConfig)

// SweepWithCronExpression overrides the cron expression advertised to cron registries.
func SweepWithCronExpression(expression string) SweepOption {
	return func(cfg *sweepConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

func SweepWithTimeout(timeout time.Duration) SweepOption {
	return func(cfg *sweepConfig) {
		cfg.timeout = timeout
	}
}

// SweepWithObserver receives every finished report.
func SweepWithObserver(observe Observer[*jobs.SweepReport]) SweepOption {
	return func(cfg *sweepConfig) {
		cfg.observe = observe
	}
}

// SweepWithTelemetry replaces the default outcome logging.
func SweepWithTelemetry(fn commands.Telemetry[SweepCommand]) SweepOption {
	return func(cfg *sweepConfig) {
		cfg.telemetry = fn
	}
}

// SweepHandler runs sweeps on demand, from a dispatcher or from cron.
type SweepHandler struct {
	inner      *commands.Handler[SweepCommand]
	cronConfig command.HandlerConfig
}

func NewSweepHandler(svc Sweeper, logger interfaces.Logger, opts ...SweepOption) *SweepHandler {
	cfg := sweepConfig{
		cronConfig: command.HandlerConfig{Expression: "* * * * *"},
		timeout:    commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	exec := func(ctx context.Context, msg SweepCommand) error {
		kind, err := optionalKind(msg.Kind)
		if err != nil {
			return err
		}
		report, err := svc.RunSweep(ctx, kind)
		if err != nil {
			return err
		}
		cfg.observe.notify(ctx, report)
		return nil
	}

	return &SweepHandler{
		inner: commands.NewHandler(exec,
			commands.WithLogger[SweepCommand](logger),
			commands.WithOperation[SweepCommand]("sweep.run"),
			commands.WithTimeout[SweepCommand](cfg.timeout),
			commands.WithTelemetry(cfg.telemetry),
			withDomainCodes[SweepCommand](),
		),
		cronConfig: cfg.cronConfig,
	}
}

// Execute satisfies command.Commander[SweepCommand].
func (h *SweepHandler) Execute(ctx context.Context, msg SweepCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand; each tick sweeps every kind.
func (h *SweepHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), SweepCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *SweepHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

func (h *SweepHandler) CLIHandler() any {
	return h
}

func (h *SweepHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"sweep"},
		Group:       "publish",
		Description: "Publish scheduled items whose time has arrived",
	}
}
