package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeInvalidMessage  = "PUBLISH_COMMAND_INVALID"
	codeCanceled        = "PUBLISH_COMMAND_CANCELED"
	codeDeadline        = "PUBLISH_COMMAND_DEADLINE"
	codeContext         = "PUBLISH_COMMAND_CONTEXT"
	codeExecutionFailed = "PUBLISH_COMMAND_FAILED"
)

// ErrorCode tags failures matching Target with a stable text code so callers
// can branch on them after the error crossed the dispatcher.
type ErrorCode struct {
	Target   error
	Category goerrors.Category
	Code     string
}

func (c ErrorCode) matches(err error) bool {
	return c.Target != nil && errors.Is(err, c.Target)
}

// WrapValidationError tags message validation failures.
func WrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "publish command rejected").
		WithTextCode(codeInvalidMessage)
}

// WrapContextError tags cancellation and deadline failures.
func WrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	message, code := "publish command context failed", codeContext
	switch {
	case errors.Is(err, context.Canceled):
		message, code = "publish command canceled", codeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		message, code = "publish command timed out", codeDeadline
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

// WrapExecuteError tags failures returned by a command function. Registered
// codes are checked first in order.
func WrapExecuteError(err error, codes ...ErrorCode) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return WrapContextError(err)
	}
	for _, code := range codes {
		if code.matches(err) {
			return goerrors.Wrap(err, code.Category, err.Error()).WithTextCode(code.Code)
		}
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "publish command failed").
		WithTextCode(codeExecutionFailed)
}
