package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/zenfocus/internal/phase"
)

// palette is one colour theme. The focus colour is warm, breaks are green
// and the long break is drawn inverted.
type palette struct {
	primary   lipgloss.Color
	focus     lipgloss.Color
	rest      lipgloss.Color
	longRest  lipgloss.Color
	muted     lipgloss.Color
	warning   lipgloss.Color
	err       lipgloss.Color
	bg        lipgloss.Color
	fg        lipgloss.Color
	subtle    lipgloss.Color
	highlight lipgloss.Color
}

var palettes = map[string]palette{
	"dark": {
		primary:   "#6C63FF",
		focus:     "#FF6B6B",
		rest:      "#2ECC71",
		longRest:  "#7AA2F7",
		muted:     "#666666",
		warning:   "#F39C12",
		err:       "#E74C3C",
		bg:        "#1A1B26",
		fg:        "#C0CAF5",
		subtle:    "#414868",
		highlight: "#7AA2F7",
	},
	"light": {
		primary:   "#4B3FD9",
		focus:     "#C0392B",
		rest:      "#1E8449",
		longRest:  "#2E5EAA",
		muted:     "#7F8C8D",
		warning:   "#B9770E",
		err:       "#A93226",
		bg:        "#FAFAFA",
		fg:        "#2C3E50",
		subtle:    "#BDC3C7",
		highlight: "#2E5EAA",
	},
}

var currentTheme string

// Colours used directly by views (charts, title).
var (
	colorPrimary lipgloss.Color
	colorAccent  lipgloss.Color
	colorSuccess lipgloss.Color
	colorSubtle  lipgloss.Color
)

var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	timerStyle        lipgloss.Style
	timerRunningStyle lipgloss.Style
	timerPausedStyle  lipgloss.Style
	titleStyle        lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style

	focusPhaseStyle     lipgloss.Style
	breakPhaseStyle     lipgloss.Style
	longBreakPhaseStyle lipgloss.Style

	alertStyle      lipgloss.Style
	errorAlertStyle lipgloss.Style
	compactStyle    lipgloss.Style
)

func init() {
	applyTheme("dark")
}

// applyTheme rebuilds every style from the named palette. Unknown names
// fall back to dark.
func applyTheme(name string) {
	p, ok := palettes[name]
	if !ok {
		name = "dark"
		p = palettes[name]
	}
	currentTheme = name

	colorPrimary = p.primary
	colorAccent = p.focus
	colorSuccess = p.rest
	colorSubtle = p.subtle

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.primary).
		Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.subtle).
		Padding(1, 2)
	activePanelStyle = panelStyle.BorderForeground(p.primary)

	timer := lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	timerStyle = timer.Foreground(p.primary)
	timerRunningStyle = timer.Foreground(p.rest)
	timerPausedStyle = timer.Foreground(p.warning)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.fg)
	accentStyle = lipgloss.NewStyle().Foreground(p.focus)
	successStyle = lipgloss.NewStyle().Foreground(p.rest)
	warningStyle = lipgloss.NewStyle().Foreground(p.warning)
	errorStyle = lipgloss.NewStyle().Foreground(p.err)
	mutedStyle = lipgloss.NewStyle().Foreground(p.muted)
	highlightStyle = lipgloss.NewStyle().Foreground(p.highlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(p.fg)

	focusPhaseStyle = lipgloss.NewStyle().Bold(true).Foreground(p.focus)
	breakPhaseStyle = lipgloss.NewStyle().Bold(true).Foreground(p.rest)
	longBreakPhaseStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.bg).
		Background(p.longRest).
		Padding(0, 1)

	alert := lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 2)
	alertStyle = alert.BorderForeground(p.warning)
	errorAlertStyle = alert.BorderForeground(p.err)
	compactStyle = lipgloss.NewStyle().Padding(0, 1)
}

// phaseStyle picks the label style for a phase.
func phaseStyle(p phase.Phase) lipgloss.Style {
	switch p {
	case phase.Focus:
		return focusPhaseStyle
	case phase.LongBreak:
		return longBreakPhaseStyle
	default:
		return breakPhaseStyle
	}
}
