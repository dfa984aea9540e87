package commands

import (
	"strings"

	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

// CommandLogger returns the logger for a command group such as "sweep".
// Entries carry component=command so they can be split from engine output.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "publish"
	}
	return logging.WithFields(logging.CommandLogger(provider, group), map[string]any{
		"component":     "command",
		"command_group": group,
	})
}
