package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/zenfocus/internal/session"
	"github.com/sadopc/zenfocus/internal/sound"
	"github.com/sadopc/zenfocus/internal/store"
)

// soundsModel picks the tick sound played during focus phases.
type soundsModel struct {
	session *session.Manager
	player  sound.Player
	width   int
	height  int

	entries  []sound.Entry
	alerts   []sound.Entry
	cursor   int
	selected string
	enabled  bool
}

func newSoundsModel(m *session.Manager, catalog sound.Catalog, player sound.Player) soundsModel {
	prefs := m.Preferences()
	s := soundsModel{
		session:  m,
		player:   player,
		entries:  catalog.ByCategory(sound.CategoryTick),
		alerts:   catalog.ByCategory(sound.CategoryAlert),
		selected: prefs.SoundID,
		enabled:  prefs.SoundEnabled,
	}
	for i, e := range s.entries {
		if e.ID == s.selected {
			s.cursor = i
		}
	}
	return s
}

func (s *soundsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *soundsModel) applyPreferences(p store.Preferences) {
	s.selected = p.SoundID
	s.enabled = p.SoundEnabled
}

func (s soundsModel) update(msg tea.Msg) (soundsModel, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch {
	case key.Matches(msgKey, keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msgKey, keys.Down):
		if s.cursor < len(s.entries)-1 {
			s.cursor++
		}
	case key.Matches(msgKey, keys.Preview):
		if s.cursor < len(s.entries) && s.player != nil {
			s.player.StopAll()
			s.player.Play(s.entries[s.cursor].ID)
		}
	case key.Matches(msgKey, keys.Enter):
		if s.cursor >= len(s.entries) {
			return s, nil
		}
		e := s.entries[s.cursor]
		s.selected = e.ID
		return s, s.save(func(p *store.Preferences) { p.SoundID = e.ID }, "Tick sound: "+e.Title)
	case key.Matches(msgKey, keys.Mute):
		s.enabled = !s.enabled
		enabled := s.enabled
		label := "Sound off"
		if enabled {
			label = "Sound on"
		}
		return s, s.save(func(p *store.Preferences) { p.SoundEnabled = enabled }, label)
	}
	return s, nil
}

func (s soundsModel) save(change func(*store.Preferences), done string) tea.Cmd {
	m := s.session
	return func() tea.Msg {
		p := m.Preferences()
		change(&p)
		if err := m.Apply(p); err != nil {
			return errStatus(err)
		}
		return statusMsg{text: done}
	}
}

func (s soundsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Sounds")

	state := successStyle.Render("on")
	if !s.enabled {
		state = warningStyle.Render("off")
	}

	var rows []string
	rows = append(rows, title+mutedStyle.Render("  sound is ")+state)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s", "", "Tick sound", "ID")))

	for i, e := range s.entries {
		cursor := "  "
		style := normalItemStyle
		if i == s.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := " "
		if e.ID == s.selected {
			mark = "✓"
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-10s", cursor, mark, e.Title, e.ID)))
	}

	if len(s.alerts) > 0 {
		rows = append(rows, "")
		var names []string
		for _, a := range s.alerts {
			names = append(names, a.Title)
		}
		rows = append(rows, mutedStyle.Render("  Phase alert: ")+highlightStyle.Render(strings.Join(names, ", ")))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  p: preview  m: sound on/off"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
