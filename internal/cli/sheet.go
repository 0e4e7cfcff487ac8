package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/worksheet"
	"github.com/kingrea/waypoint/internal/workspace"
)

// NewSheetCommand groups the worksheet subcommands.
func NewSheetCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Edit the business model canvas and SWOT worksheets",
		Long: `Edit the free-form worksheets. Sheets are addressed by key (canvas, swot)
and lists by their camelCase name, e.g. keyPartners or strengths.

Examples:
  waypoint sheet show swot
  waypoint sheet add swot strengths "Fast delivery"
  waypoint sheet set canvas channels Web Retail
  waypoint sheet remove swot strengths 1`,
	}
	cmd.AddCommand(
		newSheetShowCommand(root),
		newSheetAddCommand(root),
		newSheetSetCommand(root),
		newSheetRemoveCommand(root),
		newSheetClearCommand(root),
	)
	return cmd
}

func sortedSheetKeys(ws *workspace.Workspace) []string {
	keys := make([]string, 0, len(ws.Sheets))
	for key := range ws.Sheets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// withSheet opens the workspace and the named worksheet for fn.
func withSheet(ctx context.Context, root *rootFlags, key string, fn func(ws *workspace.Workspace, sheet worksheet.Worksheet) error) error {
	return root.withWorkspace(ctx, func(ws *workspace.Workspace) error {
		sheet, err := ws.Sheet(ctx, key)
		if err != nil {
			return err
		}
		return fn(ws, sheet)
	})
}

func newSheetShowCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sheet>",
		Short: "Print every list of a worksheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSheet(cmd.Context(), root, args[0], func(_ *workspace.Workspace, sheet worksheet.Worksheet) error {
				return printSheet(cmd.Context(), cmd.OutOrStdout(), sheet)
			})
		},
	}
}

func printSheet(ctx context.Context, out io.Writer, sheet worksheet.Worksheet) error {
	fmt.Fprintln(out, sheet.Title())
	for _, list := range sheet.Lists() {
		items, err := sheet.Items(ctx, list)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s (%s)\n", worksheet.Heading(list), list)
		if len(items) == 0 {
			fmt.Fprintln(out, "  (empty)")
		}
		for idx, item := range items {
			fmt.Fprintf(out, "  %d. %s\n", idx+1, item)
		}
	}
	return nil
}

func newSheetAddCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <sheet> <list> <item>",
		Short: "Append an item to a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSheet(cmd.Context(), root, args[0], func(_ *workspace.Workspace, sheet worksheet.Worksheet) error {
				if err := sheet.AddItem(cmd.Context(), args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added to %s\n", worksheet.Heading(args[1]))
				return nil
			})
		},
	}
}

func newSheetSetCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <sheet> <list> [items...]",
		Short: "Replace a list; no items empties it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSheet(cmd.Context(), root, args[0], func(_ *workspace.Workspace, sheet worksheet.Worksheet) error {
				items := append([]string{}, args[2:]...)
				if err := sheet.SetList(cmd.Context(), args[1], items); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d item(s)\n", worksheet.Heading(args[1]), len(items))
				return nil
			})
		},
	}
}

func newSheetRemoveCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <sheet> <list> <number>",
		Short: "Remove the item at a 1-based position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[2])
			if err != nil || number < 1 {
				return fmt.Errorf("item number must be a positive integer, got %q", args[2])
			}
			return withSheet(cmd.Context(), root, args[0], func(_ *workspace.Workspace, sheet worksheet.Worksheet) error {
				if err := sheet.RemoveItem(cmd.Context(), args[1], number-1); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d from %s\n", number, worksheet.Heading(args[1]))
				return nil
			})
		},
	}
}

// sheetClearFlags holds the flags for sheet clear.
type sheetClearFlags struct {
	force bool
}

func newSheetClearCommand(root *rootFlags) *cobra.Command {
	flags := &sheetClearFlags{}

	cmd := &cobra.Command{
		Use:   "clear <sheet>",
		Short: "Empty every list of a worksheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.force {
				return fmt.Errorf("clear discards %s; rerun with --force to confirm", args[0])
			}
			return withSheet(cmd.Context(), root, args[0], func(_ *workspace.Workspace, sheet worksheet.Worksheet) error {
				if err := sheet.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s cleared\n", sheet.Title())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Confirm clearing the sheet")

	return cmd
}
