package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/i18n"
	"github.com/sadopc/zenfocus/internal/session"
)

// pomodoroModel is the timer view: countdown, phase, round progress and
// the session controls.
type pomodoroModel struct {
	surface *control.Surface
	session *session.Manager
	tr      *i18n.Translator
	width   int
	height  int

	timer       timerModel
	welcome     welcomeModel
	compact     bool
	showWelcome bool
}

func newPomodoroModel(d Deps) pomodoroModel {
	prefs := d.Session.Preferences()
	return pomodoroModel{
		surface:     d.Surface,
		session:     d.Session,
		tr:          d.Translator,
		welcome:     newWelcomeModel(d.Store, d.Translator),
		compact:     prefs.Compact,
		showWelcome: prefs.ShowWelcome,
	}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.welcome.setSize(w, h)
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		p.timer.apply(engine.Snapshot(msg))
		return p, nil

	case welcomeDataMsg:
		var cmd tea.Cmd
		p.welcome, cmd = p.welcome.update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.onWelcome() {
			switch {
			case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Toggle):
				p.showWelcome = false
				return p, p.startFromWelcome()
			}
			return p, nil
		}

		switch {
		case key.Matches(msg, keys.Toggle):
			return p, p.toggle()
		case key.Matches(msg, keys.Skip):
			if p.timer.complete() {
				return p, status(p.tr.T("Session complete") + ". Press N for a new session")
			}
			return p, p.run(p.surface.RequestSkip)
		case key.Matches(msg, keys.Redo):
			return p, p.run(func() error {
				_, err := p.surface.RequestReset()
				return err
			})
		case key.Matches(msg, keys.ResetRound):
			return p, p.run(func() error {
				_, err := p.surface.RequestResetRound()
				return err
			})
		case key.Matches(msg, keys.NewSession):
			return p, p.dispatch(control.CmdNewSession)
		case key.Matches(msg, keys.Compact):
			return p, p.dispatch(control.CmdToggleCompact)
		}
	}
	return p, nil
}

// onWelcome reports whether the welcome screen replaces the timer.
func (p pomodoroModel) onWelcome() bool {
	return p.showWelcome || !p.timer.snap.Active
}

func (p pomodoroModel) startFromWelcome() tea.Cmd {
	dismiss := p.showWelcome
	active := p.timer.snap.Active
	return func() tea.Msg {
		if dismiss {
			if err := p.session.DismissWelcome(); err != nil {
				return errStatus(err)
			}
		}
		if !active {
			if err := p.surface.Dispatch(control.Command{Type: control.CmdNewSession, Source: control.SourceUI}); err != nil {
				return errStatus(err)
			}
		}
		p.surface.Play()
		return nil
	}
}

func (p pomodoroModel) toggle() tea.Cmd {
	active := p.timer.snap.Active
	return p.run(func() error {
		if !active {
			if err := p.surface.Dispatch(control.Command{Type: control.CmdNewSession, Source: control.SourceUI}); err != nil {
				return err
			}
		}
		return p.surface.TogglePlayback()
	})
}

func (p pomodoroModel) dispatch(t control.CommandType) tea.Cmd {
	return p.run(func() error {
		return p.surface.Dispatch(control.Command{Type: t, Source: control.SourceUI})
	})
}

func (p pomodoroModel) run(fn func() error) tea.Cmd {
	return func() tea.Msg {
		err := fn()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, engine.ErrTerminalState):
			return statusMsg{text: p.tr.T("Session complete")}
		case errors.Is(err, engine.ErrNoSession):
			return statusMsg{text: "No session. Press N to start one"}
		}
		return errStatus(err)
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func (p pomodoroModel) view() string {
	if p.compact {
		return p.compactView()
	}
	if p.onWelcome() {
		return p.welcome.view()
	}

	w := p.width - 4
	s := p.timer.snap

	title := titleStyle.Render(p.tr.Tf("Round %d of %d", s.Round, s.TotalRounds))

	var timeDisplay, phaseLabel string
	switch {
	case p.timer.complete():
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		phaseLabel = successStyle.Bold(true).Render(strings.ToUpper(p.tr.T("Session complete")))
	case p.timer.playing():
		timeDisplay = timerRunningStyle.Width(w - 6).Render(formatClock(p.timer.remaining()))
		phaseLabel = phaseStyle(s.Phase).Render(strings.ToUpper(p.tr.Phase(s.Phase)))
	default:
		timeDisplay = timerPausedStyle.Width(w - 6).Render(formatClock(p.timer.remaining()))
		phaseLabel = phaseStyle(s.Phase).Render(strings.ToUpper(p.tr.Phase(s.Phase))) + mutedStyle.Render("  paused")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		p.renderBar(w-10),
		"",
		p.renderProgress(),
	)

	var controls string
	switch {
	case p.timer.complete():
		controls = mutedStyle.Render("N: new session  q: quit")
	case p.timer.playing():
		controls = mutedStyle.Render("space: pause  n: skip  r: redo phase  R: reset round")
	default:
		controls = mutedStyle.Render("space: play  n: skip  r: redo phase  R: reset round")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// compactView is a single line for small terminal panes.
func (p pomodoroModel) compactView() string {
	s := p.timer.snap
	if !s.Active {
		return compactStyle.Render(mutedStyle.Render("zenfocus  space: start"))
	}
	icon := "▶"
	if !s.IsPlaying {
		icon = "⏸"
	}
	if s.Complete {
		icon = "✓"
	}
	line := fmt.Sprintf("%s %s %s  %d/%d",
		icon,
		phaseStyle(s.Phase).Render(p.tr.Phase(s.Phase)),
		formatClock(s.Remaining),
		s.Round, s.TotalRounds,
	)
	return compactStyle.Render(line)
}

func (p pomodoroModel) renderBar(width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(p.timer.snap.Progress() * float64(width))
	if filled > width {
		filled = width
	}
	return phaseStyle(p.timer.snap.Phase).UnsetBackground().UnsetPadding().Render(strings.Repeat("━", filled)) +
		mutedStyle.Render(strings.Repeat("─", width-filled))
}

func (p pomodoroModel) renderProgress() string {
	s := p.timer.snap
	var parts []string
	for r := 1; r <= s.TotalRounds; r++ {
		switch {
		case r < s.Round || s.Complete:
			parts = append(parts, successStyle.Render("●"))
		case r == s.Round:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	done := s.Round - 1
	if s.Complete {
		done = s.TotalRounds
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", done, s.TotalRounds))
	return strings.Join(parts, " ") + counter
}
