package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/zenfocus/internal/i18n"
	"github.com/sadopc/zenfocus/internal/phase"
	"github.com/sadopc/zenfocus/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

// historyModel charts focus and break time per day from the phase log.
type historyModel struct {
	store  *store.Store
	tr     *i18n.Translator
	width  int
	height int

	mode   reportMode
	days   []store.DailyFocus
	offset int // weeks or 7-day blocks offset from today (0 = current)

	chart barchart.Model
}

func newHistoryModel(s *store.Store, tr *i18n.Translator) historyModel {
	return historyModel{
		store: s,
		tr:    tr,
		chart: barchart.New(60, 12),
	}
}

func (m *historyModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type historyDataMsg struct {
	days []store.DailyFocus
}

func (m historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := m.dateRange()
		days, _ := m.store.GetDailyFocus(from, to)
		return historyDataMsg{days: days}
	}
}

func (m historyModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch m.mode {
	case reportWeekly:
		// Start of current week (Monday)
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		startOfWeek := today.AddDate(0, 0, -int(weekday-time.Monday))
		startOfWeek = startOfWeek.AddDate(0, 0, -7*m.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		// Daily: last 7 days
		end := today.AddDate(0, 0, 1-7*m.offset)
		start := end.AddDate(0, 0, -7)
		return start, end
	}
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		m.days = msg.days
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.offset++
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Enter):
			if m.mode == reportDaily {
				m.mode = reportWeekly
			} else {
				m.mode = reportDaily
			}
			m.offset = 0
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m *historyModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	from, to := m.dateRange()
	byDate := make(map[string]store.DailyFocus, len(m.days))
	for _, d := range m.days {
		byDate[d.Date] = d
	}

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		day, ok := byDate[d.Format("2006-01-02")]

		var values []barchart.BarValue
		if ok {
			values = append(values,
				barchart.BarValue{
					Name:  m.tr.Phase(phase.Focus),
					Value: float64(day.FocusSeconds) / 3600.0,
					Style: lipgloss.NewStyle().Foreground(colorAccent),
				},
				barchart.BarValue{
					Name:  "Breaks",
					Value: float64(day.BreakSeconds) / 3600.0,
					Style: lipgloss.NewStyle().Foreground(colorSuccess),
				},
			)
		} else {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m historyModel) view() string {
	w := m.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if m.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := m.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", modeTabs, "  ", dateLabel,
	)

	legend := fmt.Sprintf("  %s %s  %s %s",
		focusPhaseStyle.Render("●"), m.tr.Phase(phase.Focus),
		breakPhaseStyle.Render("●"), "Breaks",
	)

	nav := mutedStyle.Render("  ←/→: navigate  enter: switch mode  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), "", legend, "", m.renderSummaryTable(w), "", nav,
		),
	)
}

func (m historyModel) renderSummaryTable(w int) string {
	if len(m.days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %10s", "Date", "Focus", "Breaks", "Completed")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))

	var total int64
	for _, d := range m.days {
		total += d.FocusSeconds
		rows = append(rows, fmt.Sprintf("  %-12s %10s %10s %10d",
			d.Date, formatSeconds(d.FocusSeconds), formatSeconds(d.BreakSeconds), d.FocusCompleted,
		))
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s", "Total", formatHours(total))))

	return strings.Join(rows, "\n")
}
