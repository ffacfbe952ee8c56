package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/i18n"
)

// confirmModel asks the user to answer one pending confirmation request.
type confirmModel struct {
	surface   *control.Surface
	req       control.ConfirmRequest
	form      *huh.Form
	confirmed *bool
}

func newConfirmModel(surface *control.Surface, tr *i18n.Translator, req control.ConfirmRequest) confirmModel {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(tr.T(req.Message)).
				Affirmative(req.ConfirmText).
				Negative(tr.T(req.CancelText)).
				Value(&confirmed),
		),
	).WithShowHelp(false)

	return confirmModel{
		surface:   surface,
		req:       req,
		form:      form,
		confirmed: &confirmed,
	}
}

func (c confirmModel) init() tea.Cmd {
	return c.form.Init()
}

// update returns done once the request has been answered.
func (c confirmModel) update(msg tea.Msg) (confirmModel, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return c, c.resolve(false), true
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	switch c.form.State {
	case huh.StateCompleted:
		return c, c.resolve(*c.confirmed), true
	case huh.StateAborted:
		return c, c.resolve(false), true
	}
	return c, cmd, false
}

func (c confirmModel) resolve(confirmed bool) tea.Cmd {
	surface, id := c.surface, c.req.ID
	return func() tea.Msg {
		err := surface.Resolve(id, confirmed)
		switch {
		case errors.Is(err, control.ErrUnknownRequest):
			return statusMsg{text: "Already answered"}
		case err != nil:
			return errStatus(err)
		}
		return resolvedMsg{confirmed: confirmed}
	}
}

func (c confirmModel) view(width int) string {
	w := min(width-4, 64)
	return activePanelStyle.Width(w).Render(c.form.View())
}
