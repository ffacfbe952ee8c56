package control

import (
	"errors"
	"time"
)

// ErrUnknownRequest is returned when resolving an id that is not pending.
var ErrUnknownRequest = errors.New("unknown confirmation request")

// ConfirmKind names the action waiting for confirmation.
type ConfirmKind string

const (
	ConfirmRedoPhase  ConfirmKind = "redo-phase"
	ConfirmResetRound ConfirmKind = "reset-round"
)

// ConfirmRequest asks the user to approve a destructive action.
type ConfirmRequest struct {
	ID          string      `json:"id"`
	Kind        ConfirmKind `json:"kind"`
	Message     string      `json:"message"`
	ConfirmText string      `json:"confirm_text"`
	CancelText  string      `json:"cancel_text"`
	At          time.Time   `json:"at"`
}

// Prompter shows confirmation requests to the user. Answers come back
// through Surface.Resolve.
type Prompter interface {
	Confirm(req ConfirmRequest)
}

type nopPrompter struct{}

func (nopPrompter) Confirm(ConfirmRequest) {}

var confirmMessages = map[ConfirmKind]string{
	ConfirmRedoPhase:  "Are you sure you want to redo the current phase?",
	ConfirmResetRound: "Are you sure you want to reset the current round?",
}
