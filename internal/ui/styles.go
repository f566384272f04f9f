package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - for titles, directories
	ColorHighlight = "205" // Magenta - for the cursor row, borders
	ColorDanger    = "196" // Red - for errors, excluded entries
	ColorMuted     = "241" // Gray - for hints
	ColorText      = "252" // Light gray - for normal text
	ColorWarning   = "208" // Orange - for confirmations
)

// Styles contains shared style definitions used across screens.
var Styles = struct {
	Title        lipgloss.Style // Bold accent color - screen titles
	TitleWarning lipgloss.Style // Bold danger color - error and confirm titles

	BoxDanger lipgloss.Style // Error box (danger border)
	BoxPrompt lipgloss.Style // Single-line prompt box

	Selected lipgloss.Style // Cursor row
	Normal   lipgloss.Style // Included entries
	Excluded lipgloss.Style // Excluded entries
	Dir      lipgloss.Style // Directory entries
	Muted    lipgloss.Style // Dimmed text
	Key      lipgloss.Style // Help bar key names
	Hint     lipgloss.Style // Help bar descriptions
	Flash    lipgloss.Style // Transient status messages
	Empty    lipgloss.Style // Empty state text
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	BoxDanger: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDanger)).
		Padding(0, 1),
	BoxPrompt: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Excluded: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)).
		Strikethrough(true),
	Dir: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Key: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Flash: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
}
