package ui

import "github.com/charmbracelet/lipgloss"

// Spotify brand green plus status colors.
const (
	colorBrand   = lipgloss.Color("#1DB954")
	colorSuccess = lipgloss.Color("#04B575")
	colorError   = lipgloss.Color("#FF4D4D")
	colorWarning = lipgloss.Color("#FFA500")
	colorMuted   = lipgloss.Color("#626262")
)

// theme holds the styles used by the views.
type theme struct {
	title  lipgloss.Style
	cursor lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
}

var styles = newTheme()

func newTheme() theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return theme{
		title:  fg(colorBrand).Bold(true).MarginBottom(1),
		cursor: fg(colorBrand).Bold(true),
		ok:     fg(colorSuccess).Bold(true),
		err:    fg(colorError).Bold(true),
		warn:   fg(colorWarning),
		help:   fg(colorMuted).Italic(true),
	}
}
