package publishcmd

import (
	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/lifecycle"
)

// Text codes attached to domain failures raised by publish commands.
const (
	CodeStaleVersion      = "PUBLISH_STALE_VERSION"
	CodeInvalidTransition = "PUBLISH_INVALID_TRANSITION"
	CodePastDate          = "PUBLISH_PAST_DATE"
	CodeNotFound          = "PUBLISH_NOT_FOUND"
	CodeInvalidBulk       = "PUBLISH_INVALID_BULK"
	CodeUnknownKind       = "PUBLISH_UNKNOWN_KIND"
)

var domainErrorCodes = []commands.ErrorCode{
	{Target: lifecycle.ErrStaleVersion, Category: goerrors.CategoryCommand, Code: CodeStaleVersion},
	{Target: lifecycle.ErrInvalidTransition, Category: goerrors.CategoryValidation, Code: CodeInvalidTransition},
	{Target: lifecycle.ErrPastDateRejected, Category: goerrors.CategoryValidation, Code: CodePastDate},
	{Target: bulk.ErrPastScheduledAt, Category: goerrors.CategoryValidation, Code: CodePastDate},
	{Target: lifecycle.ErrNotFound, Category: goerrors.CategoryCommand, Code: CodeNotFound},
	{Target: bulk.ErrInvalidRequest, Category: goerrors.CategoryValidation, Code: CodeInvalidBulk},
	{Target: domain.ErrUnknownKind, Category: goerrors.CategoryValidation, Code: CodeUnknownKind},
}

func withDomainCodes[T command.Message]() commands.HandlerOption[T] {
	return commands.WithErrorCodes[T](domainErrorCodes...)
}
