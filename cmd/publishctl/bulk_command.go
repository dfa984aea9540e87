package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-publish"
	"github.com/goliatone/go-publish/internal/bulk"
)

func newBulkCommand(ctx *commandContext) *cobra.Command {
	var folderFlag string
	var atFlag string

	cmd := &cobra.Command{
		Use:   "bulk <op> <id>...",
		Short: "Apply one operation to many items",
		Long: "Apply one operation to many items.\n\n" +
			"Operations: move_to_folder, delete, draft, publish_now, schedule.\n" +
			"Per item failures are listed in order and do not stop the batch.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := bulk.ParseOp(args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			req := publish.BulkRequest{Op: op, IDs: ids}
			if strings.TrimSpace(folderFlag) != "" {
				folderID, err := uuid.Parse(strings.TrimSpace(folderFlag))
				if err != nil {
					return fmt.Errorf("invalid folder id %q: %w", folderFlag, err)
				}
				req.Params.FolderID = &folderID
			}
			if req.Params.ScheduledAt, err = parseOptionalTime(atFlag); err != nil {
				return err
			}
			return ctx.withModule(func(module *publish.Module) error {
				result, err := module.BulkMutate(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderBulkResult(result))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&folderFlag, "folder", "", "Target folder for move_to_folder (empty for uncategorized)")
	cmd.Flags().StringVar(&atFlag, "at", "", "Publish date for schedule (RFC 3339)")
	return cmd
}

func newFolderCommand(ctx *commandContext) *cobra.Command {
	folderCmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage item folders",
	}
	folderCmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder, or return the existing folder with the same slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withModule(func(module *publish.Module) error {
				folder, err := module.CreateFolder(cmd.Context(), &publish.Folder{Name: args[0]})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, folder)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Slug", "Name"},
					[][]string{{folder.ID.String(), folder.Slug, folder.Name}},
					nil,
				))
				return nil
			})
		},
	})
	folderCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a folder and detach its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid folder id %q: %w", args[0], err)
			}
			return ctx.withModule(func(module *publish.Module) error {
				detached, err := module.DeleteFolder(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"folder_id": id, "detached": detached})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %s, detached %d items\n", id, detached)
				return nil
			})
		},
	})
	return folderCmd
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, fmt.Errorf("invalid item id %q: %w", part, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func renderBulkResult(result *publish.BulkResult) string {
	rows := make([][]string, 0, len(result.Succeeded)+len(result.Failed))
	for _, id := range result.Succeeded {
		rows = append(rows, []string{id.String(), "ok", ""})
	}
	for _, failure := range result.Failed {
		rows = append(rows, []string{failure.ID.String(), string(failure.Reason), failure.Message})
	}
	summary := fmt.Sprintf("%s: %d succeeded, %d failed", result.Op, len(result.Succeeded), len(result.Failed))
	if len(rows) == 0 {
		return summary
	}
	return renderTable([]string{"ID", "Result", "Message"}, rows, nil) + "\n" + summary
}
