package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	account   lipgloss.Style
	detail    lipgloss.Style
	warning   lipgloss.Style
	errored   lipgloss.Style
	healthy   lipgloss.Style
	empty     lipgloss.Style
	separator lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		errored:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		healthy:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		empty:     lipgloss.NewStyle().Faint(true),
		separator: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}
