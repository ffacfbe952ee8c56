// Package control serializes every request that mutates the timer. The UI,
// the host API and the signal directory all go through a Surface.
package control

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned by ParseCommand for unrecognized names.
var ErrUnknownCommand = errors.New("unknown command")

// CommandType enumerates supported operations.
type CommandType int

const (
	CmdToggle CommandType = iota
	CmdPlay
	CmdPause
	CmdSkip
	CmdReset
	CmdNewSession
	CmdResetRound
	CmdToggleCompact
)

var commandNames = []string{
	CmdToggle:        "toggle",
	CmdPlay:          "play",
	CmdPause:         "pause",
	CmdSkip:          "skip",
	CmdReset:         "reset",
	CmdNewSession:    "new-session",
	CmdResetRound:    "reset-round",
	CmdToggleCompact: "toggle-compact",
}

func (t CommandType) String() string {
	if int(t) >= 0 && int(t) < len(commandNames) {
		return commandNames[t]
	}
	return fmt.Sprintf("command(%d)", int(t))
}

// ParseCommand maps a wire name such as "new-session" to its type.
func ParseCommand(name string) (CommandType, error) {
	n := strings.TrimSpace(strings.ToLower(name))
	for i, c := range commandNames {
		if c == n {
			return CommandType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// CommandNames lists every wire name in declaration order.
func CommandNames() []string {
	return append([]string(nil), commandNames...)
}

// Source identifies where a command came from.
type Source string

const (
	SourceUI     Source = "ui"
	SourceHTTP   Source = "http"
	SourceSocket Source = "socket"
	SourceSignal Source = "signal"
)

// Command is a queued request. Reply, when set, receives the result of
// the dispatch without blocking the command loop.
type Command struct {
	Type   CommandType
	Source Source
	Reply  chan error
}
