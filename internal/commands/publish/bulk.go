package publishcmd

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/google/uuid"
)

const bulkMessageType = "publish.bulk.apply"

// BulkCommand applies Op to IDs. Partial failures are reported through the
// observer, not as an error.
type BulkCommand struct {
	Op          string      `json:"op"`
	IDs         []uuid.UUID `json:"ids"`
	FolderID    *uuid.UUID  `json:"folder_id,omitempty"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty"`
}

func (BulkCommand) Type() string { return bulkMessageType }

func (m BulkCommand) Validate() error {
	errs := validation.Errors{}
	if _, err := bulk.ParseOp(m.Op); err != nil {
		errs["op"] = validation.NewError("publish.bulk.op_invalid", "op is not supported")
	}
	if len(m.IDs) == 0 {
		errs["ids"] = validation.NewError("publish.bulk.ids_required", "at least one id is required")
	}
	for _, id := range m.IDs {
		if id == uuid.Nil {
			errs["ids"] = validation.NewError("publish.bulk.ids_invalid", "ids must not contain the nil uuid")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkHandler struct {
	inner *commands.Handler[BulkCommand]
}

func NewBulkHandler(svc BulkMutator, logger interfaces.Logger, observe Observer[*bulk.Result], opts ...commands.HandlerOption[BulkCommand]) *BulkHandler {
	exec := func(ctx context.Context, msg BulkCommand) error {
		op, err := bulk.ParseOp(msg.Op)
		if err != nil {
			return err
		}
		result, err := svc.BulkMutate(ctx, bulk.Request{
			Op:     op,
			IDs:    msg.IDs,
			Params: bulk.Params{FolderID: msg.FolderID, ScheduledAt: msg.ScheduledAt},
		})
		if err != nil {
			return err
		}
		observe.notify(ctx, result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[BulkCommand]{
		commands.WithLogger[BulkCommand](logger),
		commands.WithOperation[BulkCommand]("bulk.apply"),
		withDomainCodes[BulkCommand](),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &BulkHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *BulkHandler) Execute(ctx context.Context, msg BulkCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *BulkHandler) CLIHandler() any {
	return h
}

func (h *BulkHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"bulk"},
		Group:       "publish",
		Description: "Move, delete, draft, publish or schedule many items at once",
	}
}
