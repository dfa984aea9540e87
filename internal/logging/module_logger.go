package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-publish/pkg/interfaces"
)

// Module names used when requesting loggers from a provider.
const (
	RootModule       = "publish"
	LifecycleModule  = "publish.lifecycle"
	SweeperModule    = "publish.sweeper"
	SchedulerModule  = "publish.scheduler"
	InvariantsModule = "publish.invariants"
	BulkModule       = "publish.bulk"
	HTTPModule       = "publish.http"
	CommandsModule   = "publish.commands"
)

const (
	fieldModule  = "module"
	fieldItemID  = "item_id"
	fieldKind    = "kind"
	fieldVersion = "version"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// returns nil, yields the no-op logger. The module name is attached as a
// structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = RootModule
	}

	var logger interfaces.Logger = NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{fieldModule: module})
}

// CommandLogger returns the logger for a named command, e.g.
// publish.commands.sweep.
func CommandLogger(provider interfaces.LoggerProvider, command string) interfaces.Logger {
	command = strings.Trim(strings.TrimSpace(command), ".")
	if command == "" {
		return ModuleLogger(provider, CommandsModule)
	}
	return ModuleLogger(provider, CommandsModule+"."+command)
}

// WithItem annotates logger with the identity of the item being processed.
// Empty values are skipped.
func WithItem(logger interfaces.Logger, id, kind string, version int64) interfaces.Logger {
	fields := map[string]any{}
	if id = strings.TrimSpace(id); id != "" {
		fields[fieldItemID] = id
	}
	if kind = strings.TrimSpace(kind); kind != "" {
		fields[fieldKind] = kind
	}
	if version > 0 {
		fields[fieldVersion] = version
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
