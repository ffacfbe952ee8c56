package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/export"
	"github.com/sadopc/zenfocus/internal/i18n"
	"github.com/sadopc/zenfocus/internal/notify"
	"github.com/sadopc/zenfocus/internal/session"
	"github.com/sadopc/zenfocus/internal/sound"
	"github.com/sadopc/zenfocus/internal/store"
)

// Deps are the collaborators the UI talks to. Nil channels are never read.
type Deps struct {
	Store      *store.Store
	Surface    *control.Surface
	Session    *session.Manager
	Translator *i18n.Translator
	Sounds     sound.Catalog
	Player     sound.Player

	Initial   engine.Snapshot
	Snapshots <-chan engine.Snapshot
	Prompts   <-chan control.ConfirmRequest
	Alerts    <-chan notify.Signal

	// ExportDir receives history exports; empty means the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	surface   *control.Surface
	tr        *i18n.Translator
	exportDir string
	width     int
	height    int

	snapshots <-chan engine.Snapshot
	prompts   <-chan control.ConfirmRequest
	alerts    <-chan notify.Signal

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timer    pomodoroModel
	history  historyModel
	sounds   soundsModel
	settings settingsModel

	confirm *confirmModel
	queued  []control.ConfirmRequest
	alert   *notify.Signal

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	if d.Translator == nil {
		d.Translator = i18n.New("en")
	}
	if d.Player == nil {
		d.Player = sound.NopPlayer{}
	}

	applyTheme(d.Session.Preferences().Theme)
	timer := newPomodoroModel(d)
	timer.timer.apply(d.Initial)

	return App{
		store:      d.Store,
		surface:    d.Surface,
		tr:         d.Translator,
		exportDir:  d.ExportDir,
		snapshots:  d.Snapshots,
		prompts:    d.Prompts,
		alerts:     d.Alerts,
		activeView: viewTimer,
		timer:      timer,
		history:    newHistoryModel(d.Store, d.Translator),
		sounds:     newSoundsModel(d.Session, d.Sounds, d.Player),
		settings:   newSettingsModel(d.Store, d.Session),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		waitSnapshot(a.snapshots),
		waitPrompt(a.prompts),
		waitAlert(a.alerts),
		a.timer.welcome.loadData(),
		a.settings.refresh(),
	)
}

func waitSnapshot(ch <-chan engine.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func waitPrompt(ch <-chan control.ConfirmRequest) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return promptMsg(req)
	}
}

func waitAlert(ch <-chan notify.Signal) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		sig, ok := <-ch
		if !ok {
			return nil
		}
		return alertMsg(sig)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.sounds.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case snapshotMsg:
		var cmds []tea.Cmd
		a.timer, _ = a.timer.update(msg)
		switch msg.Kind {
		case engine.EventPhaseChanged, engine.EventReset, engine.EventCompleted:
			cmds = append(cmds, a.timer.welcome.loadData())
			if a.activeView == viewHistory {
				cmds = append(cmds, a.history.refresh())
			}
		}
		cmds = append(cmds, waitSnapshot(a.snapshots))
		return a, tea.Batch(cmds...)

	case promptMsg:
		req := control.ConfirmRequest(msg)
		if a.confirm != nil {
			if a.confirm.req.ID != req.ID {
				a.queued = append(a.queued, req)
			}
			return a, waitPrompt(a.prompts)
		}
		return a, tea.Batch(a.openConfirm(req), waitPrompt(a.prompts))

	case resolvedMsg:
		if !msg.confirmed {
			a.status = "Cancelled"
		}
		return a, nil

	case alertMsg:
		sig := notify.Signal(msg)
		a.alert = &sig
		return a, waitAlert(a.alerts)

	case PreferencesMsg:
		if msg.Prefs.Theme != currentTheme {
			applyTheme(msg.Prefs.Theme)
		}
		a.timer.compact = msg.Prefs.Compact
		a.timer.showWelcome = msg.Prefs.ShowWelcome
		a.sounds.applyPreferences(msg.Prefs)
		return a, a.settings.refresh()

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil

	case welcomeDataMsg:
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd

	case historyDataMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	return a.updateActiveView(msg)
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.confirm != nil {
		c, cmd, done := a.confirm.update(msg)
		if !done {
			a.confirm = &c
			return a, cmd
		}
		a.confirm = nil
		if next := a.nextQueued(); next != nil {
			return a, tea.Batch(cmd, a.openConfirm(*next))
		}
		return a, cmd
	}

	// Any key dismisses an alert.
	if a.alert != nil {
		a.alert = nil
		return a, nil
	}

	if a.exportPicking {
		return a.updateExportPicker(msg)
	}

	// If a child view is capturing input (e.g. form), delegate first.
	if a.isFormActive() {
		return a.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Tab1):
		a.activeView = viewTimer
		return a, a.timer.welcome.loadData()
	case key.Matches(msg, keys.Tab2):
		a.activeView = viewHistory
		return a, a.history.refresh()
	case key.Matches(msg, keys.Tab3):
		a.activeView = viewSounds
		return a, nil
	case key.Matches(msg, keys.Tab4):
		a.activeView = viewSettings
		return a, a.settings.refresh()
	case key.Matches(msg, keys.Tab):
		a.activeView = (a.activeView + 1) % viewState(len(viewNames))
		return a, a.refreshCurrentView()
	}

	// Timer controls work from every view.
	if a.activeView != viewTimer && isTimerKey(msg) {
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func isTimerKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, keys.Toggle) ||
		key.Matches(msg, keys.Skip) ||
		key.Matches(msg, keys.Redo) ||
		key.Matches(msg, keys.ResetRound) ||
		key.Matches(msg, keys.NewSession) ||
		key.Matches(msg, keys.Compact)
}

func (a *App) openConfirm(req control.ConfirmRequest) tea.Cmd {
	c := newConfirmModel(a.surface, a.tr, req)
	a.confirm = &c
	return c.init()
}

func (a *App) nextQueued() *control.ConfirmRequest {
	if len(a.queued) == 0 {
		return nil
	}
	next := a.queued[0]
	a.queued = a.queued[1:]
	return &next
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSounds:
		a.sounds, cmd = a.sounds.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.timer.welcome.loadData()
	case viewHistory:
		return a.history.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.timer.compact && a.confirm == nil && a.alert == nil {
		return a.timer.compactView()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewHistory:
		content = a.history.view()
	case viewSounds:
		content = a.sounds.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case a.confirm != nil:
		content = a.confirm.view(a.width)
	case a.alert != nil:
		content = a.renderAlert()
	case a.exportPicking:
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("zenfocus")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Timer indicator in footer
	timerInfo := ""
	t := a.timer.timer
	switch {
	case t.playing():
		timerInfo = successStyle.Render(" ● " + a.tr.Phase(t.snap.Phase) + " " + formatClock(t.remaining()))
	case t.paused():
		timerInfo = warningStyle.Render(" ⏸ " + a.tr.Phase(t.snap.Phase) + " " + formatClock(t.remaining()))
	case t.complete():
		timerInfo = successStyle.Render(" ✓ " + a.tr.T("Session complete"))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderAlert() string {
	style := alertStyle
	if a.alert.Type == notify.SignalError {
		style = errorAlertStyle
	}
	w := min(a.width-4, 64)
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		a.alert.Message,
		"",
		mutedStyle.Render("press any key"),
	))
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	st, dir := a.store, a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return errStatus(err)
			}
			dir = home
		}
		name := fmt.Sprintf("zenfocus-export-%s.%s", time.Now().Format("2006-01-02"), format)
		path := filepath.Join(dir, name)
		if _, err := export.FromStore(st, store.PhaseFilter{}, format, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
