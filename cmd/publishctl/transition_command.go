package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-publish"
	"github.com/goliatone/go-publish/internal/lifecycle"
)

func newTransitionCommand(ctx *commandContext) *cobra.Command {
	var version int64
	var atFlag string

	cmd := &cobra.Command{
		Use:   "transition <id> <schedule|publish_now|draft|reschedule>",
		Short: "Apply one version checked lifecycle action",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}
			action, err := lifecycle.ParseAction(args[1])
			if err != nil {
				return err
			}
			at, err := parseOptionalTime(atFlag)
			if err != nil {
				return err
			}
			return ctx.withModule(func(module *publish.Module) error {
				item, err := module.Transition(cmd.Context(), publish.TransitionRequest{
					ItemID:          id,
					Action:          action,
					ExpectedVersion: version,
					ScheduledAt:     at,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, item)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderItem(item))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&version, "version", 0, "Version the change is based on")
	cmd.Flags().StringVar(&atFlag, "at", "", "Publish date for schedule and reschedule (RFC 3339)")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func renderItem(item *publish.Item) string {
	published := ""
	if item.PublishedAt != nil {
		published = item.PublishedAt.UTC().Format(time.RFC3339)
	}
	rows := [][]string{
		{"id", item.ID.String()},
		{"kind", string(item.Kind)},
		{"status", string(item.Status)},
		{"scheduled_at", item.ScheduledAt.String()},
		{"published_at", published},
		{"version", fmt.Sprintf("%d", item.Version)},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: expected RFC 3339", raw)
	}
	return &parsed, nil
}
