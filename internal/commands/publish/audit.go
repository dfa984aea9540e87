package publishcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

const auditMessageType = "publish.invariants.audit"

// AuditCommand classifies every item of Kind.
type AuditCommand struct {
	Kind string `json:"kind"`
}

func (AuditCommand) Type() string { return auditMessageType }

func (m AuditCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Kind,
			validation.Required.Error("kind is required"),
			validation.In(kindValues()...).Error("kind is not a known content kind"),
		),
	)
}

type AuditHandler struct {
	inner *commands.Handler[AuditCommand]
}

func NewAuditHandler(svc Auditor, logger interfaces.Logger, observe Observer[*invariants.Report], opts ...commands.HandlerOption[AuditCommand]) *AuditHandler {
	exec := func(ctx context.Context, msg AuditCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}
		report, err := svc.AuditInvariants(ctx, kind)
		if err != nil {
			return err
		}
		observe.notify(ctx, report)
		return nil
	}

	handlerOpts := []commands.HandlerOption[AuditCommand]{
		commands.WithLogger[AuditCommand](logger),
		commands.WithOperation[AuditCommand]("invariants.audit"),
		withDomainCodes[AuditCommand](),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &AuditHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *AuditHandler) Execute(ctx context.Context, msg AuditCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *AuditHandler) CLIHandler() any {
	return h
}

func (h *AuditHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"audit"},
		Group:       "publish",
		Description: "Report items whose publish state and dates disagree",
	}
}
