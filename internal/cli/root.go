// Package cli holds the cobra commands behind the waypoint binary. With no
// subcommand the TUI runs; the subcommands script the same workspace.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/tui"
	"github.com/kingrea/waypoint/internal/workspace"
)

// rootFlags holds the flags shared by every command.
type rootFlags struct {
	project string
}

// NewRootCommand creates the waypoint command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "waypoint",
		Short: "Guided business planning journeys in the terminal",
		Long: `Waypoint walks you through multi-step journeys (brand identity,
business plan, name checking and any custom journeys in .waypoint/journeys)
and keeps your answers in the project's .waypoint directory.

Run without a subcommand to open the interactive board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd.Context(), flags)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.project, "project", "C", "", "Project directory (default: current directory)")

	cmd.AddCommand(
		NewJourneysCommand(flags),
		NewStatusCommand(flags),
		NewShowCommand(flags),
		NewSetCommand(flags),
		NewMarkCommand(flags),
		NewGotoCommand(flags),
		NewResetCommand(flags),
		NewExportCommand(flags),
		NewBackupCommand(flags),
		NewNamesCommand(flags),
		NewSheetCommand(flags),
		NewBrandCommand(flags),
	)
	return cmd
}

func (f *rootFlags) dir() (string, error) {
	dir := f.project
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(dir)
}

// withWorkspace opens the project's workspace for the duration of fn.
func (f *rootFlags) withWorkspace(ctx context.Context, fn func(ws *workspace.Workspace) error, opts ...workspace.Option) (err error) {
	dir, err := f.dir()
	if err != nil {
		return err
	}
	ws, err := workspace.Open(ctx, dir, opts...)
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer func() {
		if closeErr := ws.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()
	return fn(ws)
}

func runBoard(ctx context.Context, flags *rootFlags) error {
	return flags.withWorkspace(ctx, func(ws *workspace.Workspace) error {
		app, err := tui.NewApp(ws, tui.WithContext(ctx))
		if err != nil {
			return err
		}
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	}, workspace.WithWatch(true))
}
