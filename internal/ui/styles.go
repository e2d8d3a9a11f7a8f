package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One cyan accent, gray support colors.
const (
	ColorCyan     = "51"  // Primary accent
	ColorCyanDim  = "31"  // Dimmed accent for borders
	ColorWhite    = "255" // Headers
	ColorGray     = "245" // Secondary text
	ColorDarkGray = "238" // Separators
	ColorRed      = "196" // Failed runs
	ColorGreen    = "40"  // Successful runs
)

// Styles holds the browser's render styles.
type Styles struct {
	Header   lipgloss.Style
	Selected lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Dim      lipgloss.Style
	Panel    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the styled components for TTY rendering.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Failure:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain rendering.
func NoColorStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle(),
		Success:  lipgloss.NewStyle(),
		Failure:  lipgloss.NewStyle(),
		Dim:      lipgloss.NewStyle(),
		Panel:    lipgloss.NewStyle(),
		Help:     lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
