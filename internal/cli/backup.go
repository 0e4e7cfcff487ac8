package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/backup"
	"github.com/kingrea/waypoint/internal/workspace"
)

// NewBackupCommand groups the backup subcommands.
func NewBackupCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import a full-state backup",
	}
	cmd.AddCommand(newBackupExportCommand(root), newBackupImportCommand(root))
	return cmd
}

// backupExportFlags holds the flags for backup export.
type backupExportFlags struct {
	out string
}

func newBackupExportCommand(root *rootFlags) *cobra.Command {
	flags := &backupExportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every journey and worksheet into one backup file",
		Long: `Write every journey and worksheet into a single JSON bundle.

Without --out the bundle lands in .waypoint/backups with a timestamped name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				return runBackupExport(cmd.Context(), cmd.OutOrStdout(), ws, flags)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Write the bundle to this path")

	return cmd
}

func runBackupExport(ctx context.Context, out io.Writer, ws *workspace.Workspace, flags *backupExportFlags) error {
	if flags.out == "" {
		path, err := ws.BackupToFile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Backup written to %s\n", path)
		return nil
	}
	bundle, err := ws.Backup(ctx)
	if err != nil {
		return err
	}
	if err := backup.Save(ws.Fs, flags.out, bundle); err != nil {
		return err
	}
	fmt.Fprintf(out, "Backup written to %s (%d sections)\n", flags.out, len(bundle.Sections))
	return nil
}

func newBackupImportCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Restore the valid sections of a backup file",
		Long: `Restore a backup bundle. Each section is checked on its own: valid sections
overwrite the stored state, invalid or unknown ones are skipped and listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				return runBackupImport(cmd.Context(), cmd.OutOrStdout(), ws, args[0])
			})
		},
	}
}

func runBackupImport(ctx context.Context, out io.Writer, ws *workspace.Workspace, path string) error {
	bundle, err := backup.Load(ws.Fs, path)
	if err != nil {
		return err
	}
	result, err := ws.Restore(ctx, bundle)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Restored %d section(s), skipped %d\n", len(result.Imported), len(result.Skipped))
	for _, key := range result.Imported {
		fmt.Fprintf(out, "  ✓ %s\n", key)
	}
	for _, skip := range result.Skipped {
		fmt.Fprintf(out, "  ✗ %s: %s\n", skip.Key, skip.Reason)
	}
	return nil
}
