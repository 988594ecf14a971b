package main

import (
	"errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/suryansh-23/btterm/internal/ui"
)

type tickMsg struct{}

// wizardModel shows a huh form under the animated banner.
type wizardModel struct {
	form     *huh.Form
	frame    int
	interval time.Duration
}

func newWizardModel(form *huh.Form) wizardModel {
	return wizardModel{
		form:     form,
		interval: 140 * time.Millisecond,
	}
}

func (m wizardModel) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), tick(m.interval))
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tickMsg); ok {
		m.frame = (m.frame + 1) % len(ui.Palette)
		return m, tick(m.interval)
	}
	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}
	return m, cmd
}

func (m wizardModel) View() string {
	return ui.LogoFrame(m.frame) + "\n\n" + m.form.View()
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{} })
}

// runForm runs form with the banner, falling back to a plain form on dumb
// terminals. Aborting returns huh.ErrUserAborted.
func runForm(form *huh.Form) error {
	if os.Getenv("TERM") == "dumb" {
		return form.Run()
	}
	form.SubmitCmd = tea.Quit
	form.CancelCmd = tea.Interrupt

	p := tea.NewProgram(newWizardModel(form), tea.WithOutput(os.Stderr), tea.WithInput(os.Stdin))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrInterrupted) {
			return huh.ErrUserAborted
		}
		return err
	}
	if wm, ok := final.(wizardModel); ok && wm.form.State == huh.StateAborted {
		return huh.ErrUserAborted
	}
	return nil
}
