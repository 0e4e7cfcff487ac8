package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/worksheet"
)

type sheetView struct {
	app    *App
	sheet  worksheet.Worksheet
	list   int
	item   int
	mode   inputMode
	input  textinput.Model
	cached map[string][]string
}

func newSheetView(app *App, sheet worksheet.Worksheet) *sheetView {
	v := &sheetView{app: app, sheet: sheet, input: newInput()}
	v.reload()
	return v
}

func (v *sheetView) reload() {
	v.cached = map[string][]string{}
	for _, list := range v.sheet.Lists() {
		items, err := v.sheet.Items(v.app.ctx, list)
		if err != nil {
			v.app.logWarn("worksheet %s: %v", v.sheet.Key(), err)
			continue
		}
		v.cached[list] = items
	}
	if items := v.cached[v.currentList()]; v.item >= len(items) {
		v.item = max(0, len(items)-1)
	}
}

func (v *sheetView) currentList() string {
	lists := v.sheet.Lists()
	if v.list < 0 || v.list >= len(lists) {
		return ""
	}
	return lists[v.list]
}

func (v *sheetView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case exportDoneMsg:
		if m.err != nil {
			v.app.setStatus("Export failed: %v", m.err)
			return nil
		}
		v.app.setStatus("Exported %s", m.path)
		return nil
	case tea.KeyMsg:
		if v.mode != modeBrowse {
			return v.handleInputKey(m)
		}
		return v.handleBrowseKey(m)
	}
	return nil
}

func (v *sheetView) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	lists := v.sheet.Lists()
	switch msg.String() {
	case "esc", "q":
		return backToMenu
	case "right", "l", "tab":
		v.list = (v.list + 1) % len(lists)
		v.item = 0
	case "left", "h", "shift+tab":
		v.list = (v.list - 1 + len(lists)) % len(lists)
		v.item = 0
	case "up", "k":
		if v.item > 0 {
			v.item--
		}
	case "down", "j":
		if v.item < len(v.cached[v.currentList()])-1 {
			v.item++
		}
	case "a", "enter":
		v.beginInput(modeEdit, "", "new "+worksheet.Heading(v.currentList())+" item")
	case "d", "x":
		list := v.currentList()
		if len(v.cached[list]) == 0 {
			return nil
		}
		if err := v.sheet.RemoveItem(v.app.ctx, list, v.item); err != nil {
			v.app.setStatus("%v", err)
			return nil
		}
		v.app.setStatus("Removed item from %s", worksheet.Heading(list))
		v.reload()
	case "e":
		v.beginInput(modeExport, string(export.FormatPDF), "pdf, deck, xlsx or md")
	case "R":
		v.beginInput(modeConfirmReset, "", "type yes to clear the sheet")
	}
	return nil
}

func (v *sheetView) beginInput(mode inputMode, value, placeholder string) {
	v.mode = mode
	v.input.Reset()
	v.input.SetValue(value)
	v.input.Placeholder = placeholder
	v.input.CursorEnd()
	v.input.Focus()
}

func (v *sheetView) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.mode = modeBrowse
		v.input.Blur()
		return nil
	case "enter":
		value := strings.TrimSpace(v.input.Value())
		mode := v.mode
		v.mode = modeBrowse
		v.input.Blur()
		return v.submit(mode, value)
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *sheetView) submit(mode inputMode, value string) tea.Cmd {
	ctx := v.app.ctx
	switch mode {
	case modeEdit:
		if value == "" {
			return nil
		}
		list := v.currentList()
		if err := v.sheet.AddItem(ctx, list, value); err != nil {
			v.app.setStatus("%v", err)
			return nil
		}
		v.reload()
		v.item = len(v.cached[list]) - 1
		v.app.setStatus("Added to %s", worksheet.Heading(list))
	case modeExport:
		format, err := export.ParseFormat(value)
		if err != nil {
			v.app.setStatus("%v", err)
			return nil
		}
		doc := v.sheet.Render()
		ws := v.app.ws
		return func() tea.Msg {
			path, err := ws.Export(doc, format, "")
			return exportDoneMsg{path: path, err: err}
		}
	case modeConfirmReset:
		if !strings.EqualFold(value, "yes") {
			v.app.setStatus("Reset cancelled")
			return nil
		}
		if err := v.sheet.Clear(ctx); err != nil {
			v.app.setStatus("%v", err)
			return nil
		}
		v.reload()
		v.app.setStatus("%s cleared", v.sheet.Title())
	}
	return nil
}

// View lays the lists out as a grid of boxes, two per row for four lists and
// three per row otherwise.
func (v *sheetView) View(width int) string {
	lists := v.sheet.Lists()
	perRow := 3
	if len(lists) <= 4 {
		perRow = 2
	}
	boxWidth := max(18, width/perRow-2)
	var rows []string
	var row []string
	for idx, list := range lists {
		row = append(row, v.renderList(idx, list, boxWidth))
		if len(row) == perRow || idx == len(lists)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	lines := []string{titleStyle.Render(v.sheet.Title()), strings.Join(rows, "\n")}
	if v.mode != modeBrowse {
		label := "Add to " + worksheet.Heading(v.currentList())
		switch v.mode {
		case modeExport:
			label = "Export format"
		case modeConfirmReset:
			label = "Clear " + v.sheet.Title() + "?"
		}
		lines = append(lines, labelStyle.Render(label), v.input.View())
		lines = append(lines, hintStyle.Render("enter=confirm  esc=cancel"))
	} else {
		lines = append(lines, hintStyle.Render("←/→=list  ↑/↓=item  a=add  d=remove  e=export  R=clear\nesc=back to menu"))
	}
	return strings.Join(lines, "\n")
}

func (v *sheetView) renderList(idx int, list string, width int) string {
	border := borderColor
	if idx == v.list {
		border = accentColor
	}
	lines := []string{labelStyle.Render(worksheet.Heading(list))}
	items := v.cached[list]
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render("(empty)"))
	}
	for i, item := range items {
		indicator := "•"
		if idx == v.list && i == v.item {
			indicator = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %s", indicator, item))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}
