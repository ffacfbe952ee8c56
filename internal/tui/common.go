package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/notify"
	"github.com/sadopc/zenfocus/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewHistory
	viewSounds
	viewSettings
)

var viewNames = []string{"Timer", "History", "Sounds", "Settings"}

// --- Messages ---

type snapshotMsg engine.Snapshot

type promptMsg control.ConfirmRequest

type alertMsg notify.Signal

// PreferencesMsg tells the UI that stored preferences changed, whoever
// changed them.
type PreferencesMsg struct {
	Prefs store.Preferences
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type resolvedMsg struct {
	confirmed bool
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// formatClock renders a countdown as MM:SS, rounding partial seconds up.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func errStatus(err error) tea.Msg {
	return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
