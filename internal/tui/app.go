// internal/tui/app.go
//
// This is the main TUI for waypoint. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: the application state (menu, open journey or worksheet)
// 2. Update: a function that updates state based on messages
// 3. View: a function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"github.com/kingrea/waypoint/internal/backup"
	"github.com/kingrea/waypoint/internal/wizard"
	"github.com/kingrea/waypoint/internal/workspace"
)

// appState represents which screen is showing.
type appState int

const (
	stateMenu    appState = iota // journey, worksheet and backup menu
	stateJourney                 // stepping through a journey
	stateSheet                   // editing a worksheet
)

const boardRefreshInterval = 2 * time.Second

var (
	accentColor = lipgloss.Color("#5B8DEF")
	borderColor = lipgloss.Color("#444444")
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type menuKind int

const (
	itemJourney menuKind = iota
	itemSheet
	itemBackup
	itemRestore
	itemExit
)

// menuItem implements list.Item for the main menu.
type menuItem struct {
	kind  menuKind
	key   string
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type boardRefreshMsg struct{}

type backToMenuMsg struct{}

type sessionOpenedMsg struct {
	key     string
	session wizard.Session
	err     error
}

type backupDoneMsg struct {
	path string
	err  error
}

type restoreDoneMsg struct {
	path   string
	result backup.Result
	err    error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithContext sets the context used for storage calls.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the root bubbletea model.
type App struct {
	ctx   context.Context
	ws    *workspace.Workspace
	state appState

	menu    list.Model
	journey *journeyView
	sheet   *sheetView
	// opened keeps every session touched this run for the progress panel.
	opened map[string]wizard.Session

	statusMsg     string
	lastLogStatus string

	width  int
	height int
}

// NewApp creates the root model over an opened workspace.
func NewApp(ws *workspace.Workspace, opts ...AppOption) (*App, error) {
	if ws == nil {
		return nil, fmt.Errorf("tui: workspace is required")
	}
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "◈ WAYPOINT"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	app := &App{
		ctx:    context.Background(),
		ws:     ws,
		state:  stateMenu,
		menu:   menu,
		opened: map[string]wizard.Session{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.refreshMenu()
	app.selectDefaultJourney()
	app.logInfo("TUI opened · %d journey(s)", len(ws.Catalog.Keys()))
	return app, nil
}

// buildMenu lists journeys in catalog order, then worksheets, then backup
// commands.
func (a *App) buildMenu() []list.Item {
	items := []list.Item{}
	for _, info := range a.ws.Catalog.Infos() {
		desc := info.Description
		if session, ok := a.opened[info.Key]; ok {
			desc = fmt.Sprintf("%d%% complete · %s", int(session.Percent()), info.Description)
		}
		items = append(items, menuItem{kind: itemJourney, key: info.Key, title: info.Name, desc: desc})
	}
	sheetKeys := make([]string, 0, len(a.ws.Sheets))
	for key := range a.ws.Sheets {
		sheetKeys = append(sheetKeys, key)
	}
	sort.Strings(sheetKeys)
	for _, key := range sheetKeys {
		items = append(items, menuItem{kind: itemSheet, key: key, title: a.ws.Sheets[key].Title(), desc: "Worksheet"})
	}
	items = append(items,
		menuItem{kind: itemBackup, title: "Back Up Everything", desc: "Write every journey and worksheet to a bundle"},
		menuItem{kind: itemRestore, title: "Restore Latest Backup", desc: "Import the valid sections of the newest bundle"},
		menuItem{kind: itemExit, title: "Exit", desc: "Quit waypoint"},
	)
	return items
}

func (a *App) refreshMenu() {
	selected := a.menu.Index()
	a.menu.SetItems(a.buildMenu())
	a.menu.Select(selected)
}

// selectDefaultJourney highlights the journey opened last time.
func (a *App) selectDefaultJourney() {
	def := strings.TrimSpace(a.ws.Config.DefaultJourney())
	if def == "" {
		return
	}
	for idx, item := range a.menu.Items() {
		if mi, ok := item.(menuItem); ok && mi.kind == itemJourney && mi.key == def {
			a.menu.Select(idx)
			return
		}
	}
}

func (a *App) logInfo(format string, args ...any) {
	a.ws.Log.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	a.ws.Log.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	a.ws.Log.Error(format, args...)
}

func (a *App) logProgress(status string) {
	status = strings.TrimSpace(status)
	if status == "" || status == a.lastLogStatus {
		return
	}
	a.lastLogStatus = status
	a.logInfo(status)
}

func (a *App) setStatus(format string, args ...any) {
	a.statusMsg = fmt.Sprintf(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.scheduleRefresh()
}

// scheduleRefresh re-renders periodically so edits made by another process
// show up after the workspace reloads them.
func (a *App) scheduleRefresh() tea.Cmd {
	return tea.Tick(boardRefreshInterval, func(time.Time) tea.Msg { return boardRefreshMsg{} })
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.menu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case boardRefreshMsg:
		if a.state == stateMenu {
			a.refreshMenu()
		}
		return a, a.scheduleRefresh()

	case backToMenuMsg:
		return a.returnToMenu()

	case sessionOpenedMsg:
		return a.handleSessionOpened(msg)

	case backupDoneMsg:
		if msg.err != nil {
			a.setStatus("Backup failed: %v", msg.err)
			return a, nil
		}
		a.setStatus("Backup written to %s", msg.path)
		return a, nil

	case restoreDoneMsg:
		if msg.err != nil {
			a.setStatus("Restore failed: %v", msg.err)
			return a, nil
		}
		a.setStatus("Restored %d section(s), skipped %d from %s",
			len(msg.result.Imported), len(msg.result.Skipped), filepath.Base(msg.path))
		if len(msg.result.Skipped) > 0 {
			reasons := make([]string, 0, len(msg.result.Skipped))
			for _, skip := range msg.result.Skipped {
				reasons = append(reasons, skip.Key+": "+skip.Reason)
			}
			a.statusMsg += " · " + strings.Join(reasons, "; ")
		}
		a.refreshMenu()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateJourney:
			if a.journey != nil {
				return a, a.journey.Update(msg)
			}
		case stateSheet:
			if a.sheet != nil {
				return a, a.sheet.Update(msg)
			}
		case stateMenu:
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "enter":
				return a.handleMenuSelection()
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case stateMenu:
		a.menu, cmd = a.menu.Update(msg)
	case stateJourney:
		if a.journey != nil {
			cmd = a.journey.Update(msg)
		}
	case stateSheet:
		if a.sheet != nil {
			cmd = a.sheet.Update(msg)
		}
	}
	return a, cmd
}

// handleMenuSelection processes menu item selection.
func (a *App) handleMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.menu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	switch item.kind {
	case itemJourney:
		a.logInfo("Menu · %s selected", item.title)
		return a.openJourney(item.key)
	case itemSheet:
		a.logInfo("Menu · %s selected", item.title)
		return a.openSheet(item.key)
	case itemBackup:
		a.setStatus("Writing backup…")
		return a, a.backupCmd()
	case itemRestore:
		a.setStatus("Restoring latest backup…")
		return a, a.restoreCmd()
	case itemExit:
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}
	return a, nil
}

// openJourney switches to the journey screen immediately and hydrates the
// session in a command so the view can show its loading placeholder.
func (a *App) openJourney(key string) (tea.Model, tea.Cmd) {
	info, ok := a.ws.Catalog.Lookup(key)
	if !ok {
		a.setStatus("Unknown journey %s", key)
		return a, nil
	}
	a.state = stateJourney
	a.sheet = nil
	a.leaveJourney()
	a.journey = newJourneyView(a, info)
	if err := a.ws.Config.SetDefaultJourney(key); err != nil {
		a.logWarn("Could not remember %s as the default journey: %v", key, err)
	}
	ctx := a.ctx
	return a, func() tea.Msg {
		session, err := a.ws.Session(ctx, key)
		return sessionOpenedMsg{key: key, session: session, err: err}
	}
}

func (a *App) handleSessionOpened(msg sessionOpenedMsg) (tea.Model, tea.Cmd) {
	if a.journey == nil || a.journey.info.Key != msg.key {
		return a, nil
	}
	if msg.err != nil {
		a.journey.err = msg.err
		a.setStatus("Could not open %s: %v", msg.key, msg.err)
		a.logError("Open %s: %v", msg.key, msg.err)
		return a, nil
	}
	a.opened[msg.key] = msg.session
	a.journey.attach(msg.session)
	a.setStatus("%s · step %d of %d", a.journey.info.Name, msg.session.CurrentStepID(), msg.session.Total())
	return a, nil
}

func (a *App) openSheet(key string) (tea.Model, tea.Cmd) {
	sheet, err := a.ws.Sheet(a.ctx, key)
	if err != nil {
		a.setStatus("%v", err)
		return a, nil
	}
	a.state = stateSheet
	a.leaveJourney()
	a.sheet = newSheetView(a, sheet)
	a.setStatus("%s", sheet.Title())
	return a, nil
}

func (a *App) backupCmd() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		path, err := a.ws.BackupToFile(ctx)
		return backupDoneMsg{path: path, err: err}
	}
}

func (a *App) restoreCmd() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		path, err := latestBackup(a.ws.Fs, a.ws.Config.BackupsDir())
		if err != nil {
			return restoreDoneMsg{err: err}
		}
		bundle, err := backup.Load(a.ws.Fs, path)
		if err != nil {
			return restoreDoneMsg{path: path, err: err}
		}
		result, err := a.ws.Restore(ctx, bundle)
		return restoreDoneMsg{path: path, result: result, err: err}
	}
}

// latestBackup returns the newest bundle in dir. Bundle names embed their
// timestamp, so the lexically greatest name is the newest.
func latestBackup(fs afero.Fs, dir string) (string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return "", fmt.Errorf("tui: read backups: %w", err)
	}
	latest := ""
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "waypoint-backup-") || filepath.Ext(name) != ".json" {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return "", fmt.Errorf("tui: no backups in %s", dir)
	}
	return filepath.Join(dir, latest), nil
}

// returnToMenu transitions back to the main menu.
func (a *App) returnToMenu() (tea.Model, tea.Cmd) {
	if a.journey != nil && a.journey.session != nil {
		a.logProgress(fmt.Sprintf("Left %s at step %d (%d%%)",
			a.journey.info.Name, a.journey.session.CurrentStepID(), int(a.journey.session.Percent())))
	}
	a.state = stateMenu
	a.leaveJourney()
	a.sheet = nil
	a.refreshMenu()
	return a, nil
}

func (a *App) leaveJourney() {
	if a.journey != nil {
		a.journey.detach()
	}
	a.journey = nil
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(28, width/4)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}
	var content string
	switch a.state {
	case stateMenu:
		a.menu.SetSize(max(20, leftWidth-4), max(10, a.height-12))
		content = a.menu.View()
	case stateJourney:
		if a.journey != nil {
			content = a.journey.View(leftWidth - 4)
		}
	case stateSheet:
		if a.sheet != nil {
			content = a.sheet.View(leftWidth - 4)
		}
	}
	return a.renderStatusBoard(content, leftWidth, rightWidth)
}

func (a *App) renderLogPanel() string {
	lines, _ := a.ws.Log.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.ws.Log.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderStatusBoard(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("◈ WAYPOINT")
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(a.renderMainArea(mainContent, leftWidth-4))
	body := leftBox
	if rightWidth > 0 {
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(a.renderProgressPanel(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := mutedStyle.MarginTop(1).Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderMainArea(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		content = "Pick a journey to begin."
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(content)
}

// renderProgressPanel lists every journey with its progress when it has been
// opened this run.
func (a *App) renderProgressPanel(width int) string {
	lines := []string{titleStyle.Render("Progress")}
	for _, info := range a.ws.Catalog.Infos() {
		session, ok := a.opened[info.Key]
		switch {
		case !ok:
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("· %s", info.Name)))
		case session.IsComplete():
			lines = append(lines, pillDone.Render(fmt.Sprintf("✓ %s", info.Name)))
		default:
			lines = append(lines, fmt.Sprintf("%s %d%%", info.Name, int(session.Percent())))
		}
	}
	if done := a.ws.Completed(); len(done) > 0 {
		lines = append(lines, "", mutedStyle.Render("Finished this session: "+strings.Join(done, ", ")))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}
