package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-publish"
	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "audit <kind>",
		Short: "Report schedule drift for one content kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			return ctx.withModule(func(module *publish.Module) error {
				report, err := module.AuditInvariants(cmd.Context(), kind)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderAuditCounts(report))
				switch {
				case quiet:
				case len(report.Findings) > 0:
					fmt.Fprintln(out, renderFindings(report.Findings))
				default:
					fmt.Fprintln(out, "No drift found")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Only print class counts")
	return cmd
}

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var atFlag string

	cmd := &cobra.Command{
		Use:   "repair <kind> <draft|schedule>",
		Short: "Fix orphaned schedules found by an audit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			strategy, err := bulk.ParseStrategy(args[1])
			if err != nil {
				return err
			}
			at, err := parseOptionalTime(atFlag)
			if err != nil {
				return err
			}
			return ctx.withModule(func(module *publish.Module) error {
				result, err := module.RepairOrphans(cmd.Context(), kind, strategy, at)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Orphans found: %d\n", len(result.Audit.OrphanIDs()))
				fmt.Fprintln(out, renderBulkResult(result.Result))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&atFlag, "at", "", "Publish date for the schedule strategy (RFC 3339)")
	return cmd
}

func renderAuditCounts(report *publish.AuditReport) string {
	rows := make([][]string, 0, len(invariants.Classes())+1)
	for _, class := range invariants.Classes() {
		rows = append(rows, []string{string(class), strconv.Itoa(report.Counts[class])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(report.Total)})
	return renderTable([]string{"Class", "Items"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderFindings(findings []invariants.Finding) string {
	rows := make([][]string, 0, len(findings))
	for _, finding := range findings {
		rows = append(rows, []string{
			finding.ID.String(),
			string(finding.Status),
			string(finding.Class),
			strings.TrimSpace(finding.ScheduledAt),
			finding.Diagnosis,
		})
	}
	return renderTable([]string{"ID", "Status", "Class", "Scheduled At", "Diagnosis"}, rows, nil)
}
