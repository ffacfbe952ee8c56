package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/zenfocus/internal/phase"
	"github.com/sadopc/zenfocus/internal/session"
	"github.com/sadopc/zenfocus/internal/store"
)

type settingsModel struct {
	store   *store.Store
	session *session.Manager
	width   int
	height  int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	totalRounds *string
	phases      *string
	focus       *string
	shortBreak  *string
	longBreak   *string
	theme       *string
	compact     *bool
	showWelcome *bool
}

func newSettingsModel(s *store.Store, m *session.Manager) settingsModel {
	tr, ph, f, sb, lb, th := "", "", "", "", "", ""
	c, w := false, false
	return settingsModel{
		store:       s,
		session:     m,
		totalRounds: &tr,
		phases:      &ph,
		focus:       &f,
		shortBreak:  &sb,
		longBreak:   &lb,
		theme:       &th,
		compact:     &c,
		showWelcome: &w,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	p := s.session.Preferences()
	*s.totalRounds = strconv.Itoa(p.TotalRounds)
	*s.phases = p.Phases.String()
	*s.focus = durationToMin(p.FocusDuration)
	*s.shortBreak = durationToMin(p.ShortBreakDuration)
	*s.longBreak = durationToMin(p.LongBreakDuration)
	*s.theme = p.Theme
	*s.compact = p.Compact
	*s.showWelcome = p.ShowWelcome

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Rounds per session").Value(s.totalRounds).Validate(validatePositive),
			huh.NewSelect[string]().Title("Phases in a round").
				Options(
					huh.NewOption("Focus, short break", "focus,short_break"),
					huh.NewOption("Focus, short break, long break", "focus,short_break,long_break"),
					huh.NewOption("Focus, long break", "focus,long_break"),
					huh.NewOption("Focus only", "focus"),
				).Value(s.phases),
			huh.NewInput().Title("Focus (min)").Value(s.focus).Validate(validatePositive),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validatePositive),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validatePositive),
		).Title("Session"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).Value(s.theme),
			huh.NewConfirm().Title("Compact mode").Value(s.compact),
			huh.NewConfirm().Title("Show welcome screen").Value(s.showWelcome),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, tea.Sequence(s.saveSettings(), s.refresh())
	}

	return s, cmd
}

// preferences builds Preferences from the form values on top of the
// current ones.
func (s settingsModel) preferences() (store.Preferences, error) {
	p := s.session.Preferences()

	rounds, err := strconv.Atoi(*s.totalRounds)
	if err != nil {
		return p, fmt.Errorf("rounds: %w", err)
	}
	catalog, err := phase.ParseCatalog(*s.phases)
	if err != nil {
		return p, err
	}
	p.TotalRounds = rounds
	p.Phases = catalog
	if p.FocusDuration, err = minToDuration(*s.focus); err != nil {
		return p, err
	}
	if p.ShortBreakDuration, err = minToDuration(*s.shortBreak); err != nil {
		return p, err
	}
	if p.LongBreakDuration, err = minToDuration(*s.longBreak); err != nil {
		return p, err
	}
	p.Theme = *s.theme
	p.Compact = *s.compact
	p.ShowWelcome = *s.showWelcome
	return p, nil
}

func (s settingsModel) saveSettings() tea.Cmd {
	return func() tea.Msg {
		p, err := s.preferences()
		if err == nil {
			err = s.session.Apply(p)
		}
		if err != nil {
			return errStatus(err)
		}
		return statusMsg{text: "Settings saved. Phases and rounds apply to the next session"}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyFocusDuration, store.KeyShortBreakDuration, store.KeyLongBreakDuration:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case store.KeyPhases:
		if c, err := phase.ParseCatalog(v); err == nil {
			var out string
			for i, p := range c {
				if i > 0 {
					out += " → "
				}
				out += p.Label()
			}
			return out
		}
	}
	return v
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive whole number")
	}
	return nil
}

func durationToMin(d time.Duration) string {
	return strconv.Itoa(int(d / time.Minute))
}

func minToDuration(s string) (time.Duration, error) {
	mins, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("minutes %q: %w", s, err)
	}
	return time.Duration(mins) * time.Minute, nil
}
