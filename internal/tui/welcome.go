package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/zenfocus/internal/i18n"
	"github.com/sadopc/zenfocus/internal/phase"
	"github.com/sadopc/zenfocus/internal/store"
)

// welcomeModel is shown before the first session and until the welcome
// screen is dismissed: a greeting, today's focus time and recent phases.
type welcomeModel struct {
	store  *store.Store
	tr     *i18n.Translator
	width  int
	height int

	todayFocus int64
	todayDay   *store.DailyFocus
	recent     []store.PhaseRecord
}

func newWelcomeModel(s *store.Store, tr *i18n.Translator) welcomeModel {
	return welcomeModel{store: s, tr: tr}
}

func (m *welcomeModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type welcomeDataMsg struct {
	todayFocus int64
	todayDay   *store.DailyFocus
	recent     []store.PhaseRecord
}

func (m welcomeModel) loadData() tea.Cmd {
	return func() tea.Msg {
		total, _ := m.store.GetTodayFocus()

		now := time.Now().UTC()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		days, _ := m.store.GetDailyFocus(dayStart, dayStart.Add(24*time.Hour))

		recent, _ := m.store.ListPhases(store.PhaseFilter{Limit: 5})

		msg := welcomeDataMsg{todayFocus: total, recent: recent}
		if len(days) > 0 {
			msg.todayDay = &days[0]
		}
		return msg
	}
}

func (m welcomeModel) update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	if msg, ok := msg.(welcomeDataMsg); ok {
		m.todayFocus = msg.todayFocus
		m.todayDay = msg.todayDay
		m.recent = msg.recent
	}
	return m, nil
}

func (m welcomeModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}

	contentWidth := m.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderGreeting(contentWidth),
		m.renderSummaryPanel(contentWidth),
		m.renderRecentPanel(contentWidth),
	)
}

func (m welcomeModel) renderGreeting(w int) string {
	title := timerStyle.Width(w - 6).Render(m.tr.T("Welcome to zenfocus"))
	hint := mutedStyle.Render("Press enter or space to start a session")
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, title, "", hint),
	)
}

func (m welcomeModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatSeconds(m.todayFocus))
	header := fmt.Sprintf("%s  %s", title, total)

	if m.todayDay == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing recorded today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{
		header,
		fmt.Sprintf("  %s %-16s %s  (%d completed)",
			focusPhaseStyle.Render("●"), m.tr.Phase(phase.Focus),
			formatSeconds(m.todayDay.FocusSeconds), m.todayDay.FocusCompleted),
		fmt.Sprintf("  %s %-16s %s",
			breakPhaseStyle.Render("●"), "Breaks",
			formatSeconds(m.todayDay.BreakSeconds)),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m welcomeModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Phases")
	if len(m.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No phases yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, r := range m.recent {
		mark := "✓"
		switch r.Outcome {
		case "skipped":
			mark = "»"
		case "reset":
			mark = "↺"
		}
		row := fmt.Sprintf("  %s %s  %-14s %s",
			mark,
			r.EndedAt.Local().Format("15:04"),
			m.tr.Phase(phase.Phase(r.Phase)),
			formatSeconds(r.Elapsed),
		)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
