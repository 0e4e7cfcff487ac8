package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
	"github.com/kingrea/waypoint/internal/wizard"
	"github.com/kingrea/waypoint/internal/workspace"
)

// NewJourneysCommand lists the registered journeys.
func NewJourneysCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "journeys",
		Short: "List built-in and custom journeys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				custom := map[string]bool{}
				for _, key := range ws.Custom {
					custom[key] = true
				}
				t := newTable("Key", "Journey", "Storage", "Source")
				for _, info := range ws.Catalog.Infos() {
					source := "built-in"
					if custom[info.Key] {
						source = "custom"
					}
					t.Row(info.Key, info.Name, info.StorageKey, source)
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.Render())
				return nil
			})
		},
	}
}

// NewStatusCommand prints progress for every journey, or the step list of
// one journey.
func NewStatusCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status [journey]",
		Short: "Show journey progress",
		Long: `Show progress for every journey and worksheet, or the step list of a single journey.

Examples:
  waypoint status
  waypoint status brand`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				if len(args) == 1 {
					return runStepStatus(cmd.Context(), cmd.OutOrStdout(), ws, args[0])
				}
				return runStatus(cmd.Context(), cmd.OutOrStdout(), ws)
			})
		},
	}
}

func runStatus(ctx context.Context, out io.Writer, ws *workspace.Workspace) error {
	t := newTable("Journey", "Step", "Done", "Progress")
	for _, info := range ws.Catalog.Infos() {
		session, err := ws.Session(ctx, info.Key)
		if err != nil {
			return err
		}
		progress := fmt.Sprintf("%.0f%%", session.Percent())
		if session.IsComplete() {
			progress = "complete"
		}
		t.Row(
			info.Name,
			fmt.Sprintf("%d/%d", session.CurrentStepID(), session.Total()),
			fmt.Sprintf("%d", session.CompletedCount()),
			progress,
		)
	}
	fmt.Fprintln(out, t.Render())

	sheets := newTable("Worksheet", "Items")
	for _, key := range sortedSheetKeys(ws) {
		sheet := ws.Sheets[key]
		sheet.Load(ctx)
		total := 0
		for _, list := range sheet.Lists() {
			items, err := sheet.Items(ctx, list)
			if err != nil {
				return err
			}
			total += len(items)
		}
		sheets.Row(sheet.Title(), strconv.Itoa(total))
	}
	fmt.Fprintln(out, sheets.Render())
	return nil
}

func runStepStatus(ctx context.Context, out io.Writer, ws *workspace.Workspace, key string) error {
	session, err := ws.Session(ctx, key)
	if err != nil {
		return err
	}
	info := session.Info()
	fmt.Fprintf(out, "%s · step %d of %d · %.0f%%\n", info.Name, session.CurrentStepID(), session.Total(), session.Percent())
	fmt.Fprintf(out, "Current step %.0f%% filled\n\n", session.CurrentStepPercent())
	for _, status := range session.Statuses() {
		marker := "○"
		switch {
		case status.Done:
			marker = "✓"
		case status.Current:
			marker = "●"
		}
		current := ""
		if status.Current {
			current = "  ← current"
		}
		fmt.Fprintf(out, "  %s %2d. %s%s\n", marker, status.ID, status.Name, current)
	}
	return nil
}

// showFlags holds the flags for the show command.
type showFlags struct {
	jsonOut bool
}

// NewShowCommand prints a journey document.
func NewShowCommand(root *rootFlags) *cobra.Command {
	flags := &showFlags{}

	cmd := &cobra.Command{
		Use:   "show <journey>",
		Short: "Print a journey's document",
		Long: `Print a journey's document as markdown, or as the stored JSON with --json.

Examples:
  waypoint show brand
  waypoint show namecheck --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				return runShow(cmd.Context(), cmd.OutOrStdout(), ws, args[0], flags)
			})
		},
	}

	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Output the document as JSON")

	return cmd
}

func runShow(ctx context.Context, out io.Writer, ws *workspace.Workspace, key string, flags *showFlags) error {
	session, err := ws.Session(ctx, key)
	if err != nil {
		return err
	}
	if flags.jsonOut {
		raw, err := session.DocumentJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(raw))
		return nil
	}
	fmt.Fprint(out, export.RenderMarkdown(session.Render()))
	return nil
}

// setFlags holds the flags for the set command.
type setFlags struct {
	jsonPatch bool
}

// NewSetCommand writes one field, or a JSON patch, into a journey document.
func NewSetCommand(root *rootFlags) *cobra.Command {
	flags := &setFlags{}

	cmd := &cobra.Command{
		Use:   "set <journey> <path> <value> | set <journey> --json <patch|->",
		Short: "Update a journey document",
		Long: `Update one field of a journey document. Values are parsed the way the
interactive form parses them: lists are comma separated, entries use "|" between
columns and ";" between rows. Paths without a form field accept JSON literals.

With --json the single argument after the journey is a JSON object merged onto
the document ("-" reads it from stdin). Fields that do not fit are reported and
skipped; the rest still apply.

Examples:
  waypoint set brand brandName "Acme"
  waypoint set brand associations "Trustworthy | 5; Fast | 4"
  waypoint set businessplan --json '{"businessType":"saas"}'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				return runSet(cmd.Context(), cmd, ws, args, flags)
			})
		},
	}

	cmd.Flags().BoolVar(&flags.jsonPatch, "json", false, "Treat the argument as a JSON patch")

	return cmd
}

func runSet(ctx context.Context, cmd *cobra.Command, ws *workspace.Workspace, args []string, flags *setFlags) error {
	session, err := ws.Session(ctx, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if flags.jsonPatch {
		if len(args) != 2 {
			return errors.New("set --json takes exactly one patch argument")
		}
		raw := []byte(args[1])
		if args[1] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read patch: %w", err)
			}
		}
		changed, fieldErrs, err := session.ApplyJSON(ctx, raw)
		if err != nil {
			return err
		}
		reportFieldErrors(cmd.ErrOrStderr(), fieldErrs)
		fmt.Fprintln(out, changedLine(session.Info().Name, changed))
		return nil
	}

	if len(args) != 3 {
		return errors.New("set takes <journey> <path> <value>")
	}
	path := args[1]
	value, err := parseFieldValue(session, path, args[2])
	if err != nil {
		return err
	}
	changed, fieldErrs := session.SetField(ctx, path, value)
	if len(fieldErrs) > 0 {
		return fieldErrs[0]
	}
	fmt.Fprintln(out, changedLine(session.Info().Name, changed))
	return nil
}

// findField searches every step form of the session for path.
func findField(session wizard.Session, path string) (journey.FormField, bool) {
	for id := 1; id <= session.Total(); id++ {
		form, ok := journey.FormOf(session.StepMeta(id))
		if !ok {
			continue
		}
		if field, ok := form.Field(path); ok {
			return field, true
		}
	}
	return journey.FormField{}, false
}

func parseFieldValue(session wizard.Session, path, input string) (any, error) {
	if field, ok := findField(session, path); ok {
		return field.Parse(input)
	}
	var value any
	if err := json.Unmarshal([]byte(input), &value); err == nil {
		return value, nil
	}
	return input, nil
}

func changedLine(name string, changed bool) string {
	if changed {
		return "Updated " + name
	}
	return name + " unchanged"
}

func reportFieldErrors(w io.Writer, errs []document.FieldError) {
	for _, err := range errs {
		fmt.Fprintf(w, "skipped: %v\n", err)
	}
}

// NewMarkCommand marks a step complete.
func NewMarkCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <journey> [step]",
		Short: "Mark the current (or given) step complete",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				ctx := cmd.Context()
				session, err := ws.Session(ctx, args[0])
				if err != nil {
					return err
				}
				if len(args) == 2 {
					id, err := parseStep(args[1], session.Total())
					if err != nil {
						return err
					}
					session.GoTo(ctx, id)
				}
				session.MarkStepComplete(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "Marked step %d of %s complete\n", session.CurrentStepID(), session.Info().Name)
				return nil
			})
		},
	}
}

// NewGotoCommand moves a journey to a step.
func NewGotoCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <journey> <step>",
		Short: "Move a journey to a step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				ctx := cmd.Context()
				session, err := ws.Session(ctx, args[0])
				if err != nil {
					return err
				}
				id, err := parseStep(args[1], session.Total())
				if err != nil {
					return err
				}
				session.GoTo(ctx, id)
				fmt.Fprintf(cmd.OutOrStdout(), "%s · step %d of %d\n", session.Info().Name, session.CurrentStepID(), session.Total())
				return nil
			})
		},
	}
}

func parseStep(value string, total int) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || id < 1 || id > total {
		return 0, fmt.Errorf("step must be a number between 1 and %d", total)
	}
	return id, nil
}

// resetFlags holds the flags for the reset command.
type resetFlags struct {
	force bool
}

// NewResetCommand restores a journey to its defaults.
func NewResetCommand(root *rootFlags) *cobra.Command {
	flags := &resetFlags{}

	cmd := &cobra.Command{
		Use:   "reset <journey>",
		Short: "Clear a journey back to its defaults",
		Long: `Clear a journey's document, marks and position.

This cannot be undone; take a backup first if you may want the answers back.

Examples:
  waypoint backup export
  waypoint reset brand --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.force {
				return errors.New("reset discards the journey; rerun with --force to confirm")
			}
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				session, err := ws.Session(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				session.Reset(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "%s reset\n", session.Info().Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Confirm the reset")

	return cmd
}

// exportFlags holds the flags for the export command.
type exportFlags struct {
	format string
	name   string
}

// NewExportCommand renders a journey or worksheet into the exports directory.
func NewExportCommand(root *rootFlags) *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <journey|worksheet>",
		Short: "Export a journey or worksheet",
		Long: `Render a journey or worksheet into .waypoint/exports.

Formats:
  pdf   portrait report
  deck  landscape slides, one section per page
  xlsx  spreadsheet, one sheet per section
  md    markdown

Examples:
  waypoint export brand
  waypoint export swot --format xlsx --name swot-review`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				return runExport(cmd.Context(), cmd.OutOrStdout(), ws, args[0], flags)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", string(export.FormatPDF), "Output format (pdf, deck, xlsx, md)")
	cmd.Flags().StringVar(&flags.name, "name", "", "File name (default: derived from the title and date)")

	return cmd
}

func runExport(ctx context.Context, out io.Writer, ws *workspace.Workspace, key string, flags *exportFlags) error {
	format, err := export.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	var doc export.Document
	if sheet, ok := ws.Sheets[key]; ok {
		sheet.Load(ctx)
		doc = sheet.Render()
	} else {
		session, err := ws.Session(ctx, key)
		if err != nil {
			return err
		}
		doc = session.Render()
	}
	path, err := ws.Export(doc, format, flags.name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %s\n", path)
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers(headers...)
}
