package cli

import "github.com/charmbracelet/lipgloss"

type styles struct {
	enabled bool
	init    lipgloss.Style
	play    lipgloss.Style
	write   lipgloss.Style
	err     lipgloss.Style
}

// ANSI colors: 1 red, 2 green, 3 yellow, 6 cyan, 7 white.
func newStyles(enabled bool) styles {
	return styles{
		enabled: enabled,
		init:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(2)),
		play:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
		write:   lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(6)),
		err:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}
