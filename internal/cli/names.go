package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/journeys/namecheck"
	"github.com/kingrea/waypoint/internal/wizard"
	"github.com/kingrea/waypoint/internal/workspace"
)

// NewNamesCommand groups the name checker's search and saved-list commands.
func NewNamesCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names",
		Short: "Search candidate names and manage the saved list",
	}
	cmd.AddCommand(
		newNamesActionCommand(root, "search <name>", "search", "Start checking a candidate name", cobra.MinimumNArgs(1)),
		newNamesActionCommand(root, "save", "save", "Save the current candidate with its score", cobra.NoArgs),
		newNamesActionCommand(root, "remove <id>", "remove", "Remove a saved name", cobra.ExactArgs(1)),
		newNamesListCommand(root),
	)
	return cmd
}

// newNamesActionCommand runs one of the name checker's session actions.
func newNamesActionCommand(root *rootFlags, use, action, short string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				session, err := ws.Session(cmd.Context(), namecheck.Key)
				if err != nil {
					return err
				}
				act, ok := wizard.FindAction(session, action)
				if !ok {
					return fmt.Errorf("name checker has no %s action", action)
				}
				status, err := act.Run(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

func newNamesListCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved names, best score first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				saved, err := savedNames(cmd.Context(), ws)
				if err != nil {
					return err
				}
				if len(saved) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved names")
					return nil
				}
				t := newTable("ID", "Name", "Score", "Verdict", "Saved")
				for _, entry := range saved {
					t.Row(entry.ID, entry.Name, strconv.Itoa(entry.Score), entry.Verdict, entry.SavedAt.Format("2006-01-02 15:04"))
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.Render())
				return nil
			})
		},
	}
}

func savedNames(ctx context.Context, ws *workspace.Workspace) ([]document.SavedName, error) {
	session, err := ws.Session(ctx, namecheck.Key)
	if err != nil {
		return nil, err
	}
	checker, ok := session.(*namecheck.Session)
	if !ok {
		return nil, fmt.Errorf("name checker session has unexpected type %T", session)
	}
	saved := checker.Saved()
	sort.SliceStable(saved, func(i, j int) bool { return saved[i].Score > saved[j].Score })
	return saved, nil
}
