package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-publish"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/jobs"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Publish every scheduled item whose date has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind *publish.Kind
			if strings.TrimSpace(kindFlag) != "" {
				parsed, err := domain.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				kind = &parsed
			}
			return ctx.withModule(func(module *publish.Module) error {
				report, err := module.RunSweep(cmd.Context(), kind)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSweepReport(report))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Limit the sweep to one content kind")
	return cmd
}

func renderSweepReport(report *publish.SweepReport) string {
	rows := make([][]string, 0, len(report.ByKind))
	for _, kind := range domain.Kinds() {
		counts, ok := report.ByKind[kind]
		if !ok {
			continue
		}
		row := []string{string(kind)}
		for _, outcome := range jobs.Outcomes() {
			row = append(row, strconv.Itoa(counts[outcome]))
		}
		rows = append(rows, row)
	}
	totals := []string{"total"}
	for _, outcome := range jobs.Outcomes() {
		totals = append(totals, strconv.Itoa(report.Totals[outcome]))
	}
	rows = append(rows, totals)

	headers := []string{"Kind"}
	aligns := []columnAlignment{alignLeft}
	for _, outcome := range jobs.Outcomes() {
		headers = append(headers, string(outcome))
		aligns = append(aligns, alignRight)
	}
	return renderTable(headers, rows, aligns)
}
