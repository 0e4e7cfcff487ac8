package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/waypoint/internal/brandkit"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
	"github.com/kingrea/waypoint/internal/journeys/brand"
	"github.com/kingrea/waypoint/internal/wizard"
)

var (
	pillDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	pillCurrent = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Underline(true)
	pillPending = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// inputMode is what the journey screen's text input is collecting.
type inputMode int

const (
	modeBrowse inputMode = iota
	modeEdit
	modeGoto
	modeExport
	modeAction
	modeConfirmReset
)

type exportDoneMsg struct {
	path string
	err  error
}

type actionDoneMsg struct {
	label  string
	result string
	err    error
}

type journeyView struct {
	app     *App
	info    journey.Info
	session wizard.Session
	err     error

	// palette is written by the kit's listener, which may run off the UI loop.
	palette     atomic.Pointer[brandkit.Palette]
	unsubscribe func()

	field    int
	mode     inputMode
	input    textinput.Model
	progress progress.Model
	preview  bool
}

func newJourneyView(app *App, info journey.Info) *journeyView {
	return &journeyView{
		app:      app,
		info:     info,
		input:    newInput(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// attach binds the hydrated session. The brand journey also gets its palette
// store so colors show as swatches.
func (v *journeyView) attach(session wizard.Session) {
	v.session = session
	v.err = nil
	v.field = 0
	if v.info.Key == brand.Key {
		kit, err := v.app.ws.BrandKit(v.app.ctx)
		if err != nil {
			v.app.logWarn("Brand kit unavailable: %v", err)
			return
		}
		current := kit.Palette()
		v.palette.Store(&current)
		v.unsubscribe = kit.Subscribe(func(p brandkit.Palette) {
			v.palette.Store(&p)
		})
	}
}

// detach stops palette updates once the view is left.
func (v *journeyView) detach() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

// swatch renders the last palette the kit reported, or "" when it has no colors.
func (v *journeyView) swatch() string {
	palette := v.palette.Load()
	if palette == nil || len(palette.Colors()) == 0 {
		return ""
	}
	return palette.Swatch()
}

func (v *journeyView) ctx() context.Context { return v.app.ctx }

// form returns the editable fields of the current step.
func (v *journeyView) form() journey.Form {
	if v.session == nil {
		return journey.Form{}
	}
	form, _ := journey.FormOf(v.session.StepMeta(v.session.CurrentStepID()))
	return form
}

func (v *journeyView) selectedField() (journey.FormField, bool) {
	fields := v.form().Fields
	if v.field < 0 || v.field >= len(fields) {
		return journey.FormField{}, false
	}
	return fields[v.field], true
}

// documentFields decodes the current document for display and prefill.
func (v *journeyView) documentFields() map[string]any {
	raw, err := v.session.DocumentJSON()
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func (v *journeyView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case exportDoneMsg:
		if m.err != nil {
			v.app.setStatus("Export failed: %v", m.err)
			return nil
		}
		v.app.setStatus("Exported %s", m.path)
		return nil
	case actionDoneMsg:
		if m.err != nil {
			v.app.setStatus("%s failed: %v", m.label, m.err)
			return nil
		}
		v.app.setStatus("%s", m.result)
		return nil
	case tea.KeyMsg:
		if v.session == nil {
			if m.String() == "esc" {
				return backToMenu
			}
			return nil
		}
		if v.mode != modeBrowse {
			return v.handleInputKey(m)
		}
		return v.handleBrowseKey(m)
	}
	return nil
}

func backToMenu() tea.Msg { return backToMenuMsg{} }

func (v *journeyView) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	ctx := v.ctx()
	switch msg.String() {
	case "esc", "q":
		if v.preview {
			v.preview = false
			return nil
		}
		return backToMenu
	case "right", "l", "n":
		before := v.session.CurrentStepID()
		v.session.GoNext(ctx)
		v.stepChanged(before)
	case "left", "h", "b":
		before := v.session.CurrentStepID()
		v.session.GoPrev(ctx)
		v.stepChanged(before)
	case "up", "k":
		if v.field > 0 {
			v.field--
		}
	case "down", "j":
		if v.field < len(v.form().Fields)-1 {
			v.field++
		}
	case "enter":
		field, ok := v.selectedField()
		if !ok {
			v.app.setStatus("This step has nothing to fill in")
			return nil
		}
		v.beginInput(modeEdit, field.Format(journey.Lookup(v.documentFields(), field.Path)), field.Hint)
	case "m":
		if v.session.MarkStepComplete(ctx) {
			v.app.setStatus("Marked step %d done", v.session.CurrentStepID())
		}
	case "g":
		v.beginInput(modeGoto, "", fmt.Sprintf("step 1-%d", v.session.Total()))
	case "e":
		v.beginInput(modeExport, string(export.FormatPDF), "pdf, deck, xlsx or md")
	case "a":
		provider, ok := v.session.(wizard.ActionProvider)
		if !ok || len(provider.Actions()) == 0 {
			v.app.setStatus("No actions for %s", v.info.Name)
			return nil
		}
		v.beginInput(modeAction, "", actionHint(provider.Actions()))
	case "R":
		v.beginInput(modeConfirmReset, "", "type yes to clear every answer")
	case "v":
		v.preview = !v.preview
	}
	return nil
}

// stepChanged resets the field cursor and reports completion when the user
// advanced past the last step.
func (v *journeyView) stepChanged(before int) {
	after := v.session.CurrentStepID()
	if after != before {
		v.field = 0
		v.app.setStatus("Step %d of %d", after, v.session.Total())
		return
	}
	if after == v.session.Total() && v.session.IsComplete() {
		v.app.setStatus("%s is complete · press e to export", v.info.Name)
	}
}

func actionHint(actions []wizard.Action) string {
	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		part := action.Key
		if action.ArgHint != "" {
			part += " <" + action.ArgHint + ">"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " · ")
}

func (v *journeyView) beginInput(mode inputMode, value, placeholder string) {
	v.mode = mode
	v.input.Reset()
	v.input.SetValue(value)
	v.input.Placeholder = placeholder
	v.input.CursorEnd()
	v.input.Focus()
}

func (v *journeyView) endInput() {
	v.mode = modeBrowse
	v.input.Blur()
}

func (v *journeyView) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.endInput()
		v.app.setStatus("Cancelled")
		return nil
	case "enter":
		value := v.input.Value()
		mode := v.mode
		v.endInput()
		return v.submit(mode, value)
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *journeyView) submit(mode inputMode, value string) tea.Cmd {
	ctx := v.ctx()
	switch mode {
	case modeEdit:
		v.saveField(value)
	case modeGoto:
		id, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || !v.session.GoTo(ctx, id) {
			v.app.setStatus("No step %q", strings.TrimSpace(value))
			return nil
		}
		v.field = 0
		v.app.setStatus("Step %d of %d", id, v.session.Total())
	case modeExport:
		format, err := export.ParseFormat(value)
		if err != nil {
			v.app.setStatus("%v", err)
			return nil
		}
		doc := v.session.Render()
		ws := v.app.ws
		return func() tea.Msg {
			path, err := ws.Export(doc, format, "")
			return exportDoneMsg{path: path, err: err}
		}
	case modeAction:
		name, arg, _ := strings.Cut(strings.TrimSpace(value), " ")
		action, ok := wizard.FindAction(v.session, name)
		if !ok {
			v.app.setStatus("Unknown action %q", name)
			return nil
		}
		v.app.logInfo("Action · %s %s", v.info.Key, action.Key)
		return func() tea.Msg {
			out, err := action.Run(ctx, strings.TrimSpace(arg))
			return actionDoneMsg{label: action.Label, result: out, err: err}
		}
	case modeConfirmReset:
		if !strings.EqualFold(strings.TrimSpace(value), "yes") {
			v.app.setStatus("Reset cancelled")
			return nil
		}
		if v.session.Reset(ctx) {
			v.field = 0
			v.app.setStatus("%s reset", v.info.Name)
			v.app.logInfo("Reset %s", v.info.Key)
		}
	}
	return nil
}

func (v *journeyView) saveField(value string) {
	field, ok := v.selectedField()
	if !ok {
		return
	}
	parsed, err := field.Parse(value)
	if err != nil {
		v.app.setStatus("%v", err)
		return
	}
	changed, errs := v.session.SetField(v.ctx(), field.Path, parsed)
	if len(errs) > 0 {
		v.app.setStatus("%s not saved: %v", field.Label, errs[0])
		return
	}
	if !changed {
		v.app.setStatus("%s unchanged", field.Label)
		return
	}
	v.app.setStatus("Saved %s", field.Label)
}

func (v *journeyView) View(width int) string {
	if v.err != nil {
		return errorStyle.Render(fmt.Sprintf("%s could not be opened: %v", v.info.Name, v.err))
	}
	if v.session == nil || v.session.Loading() {
		return fmt.Sprintf("Loading %s…", v.info.Name)
	}
	if v.preview {
		return v.renderPreview(width)
	}
	statuses := v.session.Statuses()
	current := v.session.CurrentStepID()
	name := ""
	if current >= 1 && current <= len(statuses) {
		name = statuses[current-1].Name
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s · Step %d of %d: %s", v.info.Name, current, v.session.Total(), name)),
		lipgloss.NewStyle().Width(max(20, width)).Render(renderPills(statuses)),
		fmt.Sprintf("%s %d/%d complete",
			v.progress.ViewAs(v.session.Percent()/100), v.session.CompletedCount(), v.session.Total()),
	}
	if swatch := v.swatch(); swatch != "" {
		lines = append(lines, swatch)
	}
	lines = append(lines, "", v.renderForm())
	if v.mode != modeBrowse {
		lines = append(lines, "", labelStyle.Render(v.inputLabel()), v.input.View())
	}
	lines = append(lines, hintStyle.Render(v.help()))
	return strings.Join(lines, "\n")
}

// renderPills draws one pill per step. A pill is done when the step's
// predicate holds or the user marked it.
func renderPills(statuses []journey.StepStatus) string {
	pills := make([]string, 0, len(statuses))
	for _, status := range statuses {
		label := fmt.Sprintf("%d %s", status.ID, status.Name)
		switch {
		case status.Current && status.Done:
			pills = append(pills, pillCurrent.Foreground(lipgloss.Color("#4CAF50")).Render("✓ "+label))
		case status.Current:
			pills = append(pills, pillCurrent.Render("● "+label))
		case status.Done:
			pills = append(pills, pillDone.Render("✓ "+label))
		default:
			pills = append(pills, pillPending.Render("○ "+label))
		}
	}
	return strings.Join(pills, "  ")
}

func (v *journeyView) renderForm() string {
	form := v.form()
	var lines []string
	if form.Prompt != "" {
		lines = append(lines, detailStyle.Render(form.Prompt), "")
	}
	if len(form.Fields) == 0 {
		lines = append(lines, mutedStyle.Render("Nothing to fill in here. Press n to continue or m to mark it done."))
		return strings.Join(lines, "\n")
	}
	fields := v.documentFields()
	for idx, field := range form.Fields {
		indicator := " "
		if idx == v.field {
			indicator = ">"
		}
		value := field.Format(journey.Lookup(fields, field.Path))
		if strings.TrimSpace(value) == "" {
			value = mutedStyle.Render("(empty)")
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", indicator, labelStyle.Render(field.Label), value))
		if idx == v.field && field.Hint != "" {
			lines = append(lines, detailStyle.Render("    "+field.Hint))
		}
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("This step %.0f%% filled", v.session.CurrentStepPercent())))
	return strings.Join(lines, "\n")
}

func (v *journeyView) inputLabel() string {
	switch v.mode {
	case modeEdit:
		if field, ok := v.selectedField(); ok {
			return field.Label
		}
	case modeGoto:
		return "Go to step"
	case modeExport:
		return "Export format"
	case modeAction:
		return "Action"
	case modeConfirmReset:
		return "Reset " + v.info.Name + "?"
	}
	return ""
}

func (v *journeyView) help() string {
	if v.mode != modeBrowse {
		return "enter=confirm  esc=cancel"
	}
	keys := "←/→=step  ↑/↓=field  enter=edit  m=mark done  g=go to  e=export  v=preview  R=reset"
	if _, ok := v.session.(wizard.ActionProvider); ok {
		keys += "  a=action"
	}
	return keys + "\nesc=back to menu"
}

// renderPreview shows the export snapshot as styled markdown.
func (v *journeyView) renderPreview(width int) string {
	md := export.RenderMarkdown(v.session.Render())
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(20, width)),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out + hintStyle.Render("v/esc=close preview")
}
