package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type countdownTickMsg time.Time

type countdownModel struct {
	spinner   spinner.Model
	remaining time.Duration
	done      bool
}

func newCountdownModel(d time.Duration) countdownModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return countdownModel{spinner: s, remaining: d}
}

func (m countdownModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, countdownTick())
}

func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case countdownTickMsg:
		m.remaining -= time.Second
		if m.remaining <= 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, countdownTick()
	default:
		return m, nil
	}
}

func (m countdownModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s next cycle in %s", m.spinner.View(), m.remaining.Round(time.Second))
}

// countdownWaiter shows an interruptible per-second countdown between
// scheduler cycles.
type countdownWaiter struct {
	out io.Writer
}

func (w countdownWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	p := tea.NewProgram(
		newCountdownModel(d),
		tea.WithInput(nil),
		tea.WithOutput(w.out),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		// Cancellation surfaces as a killed program; report it as such.
		if errors.Is(err, tea.ErrProgramKilled) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		}
		return err
	}

	return ctx.Err()
}
