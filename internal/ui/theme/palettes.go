package theme

import "github.com/charmbracelet/lipgloss"

// Nord - https://www.nordtheme.com/
var Nord = Theme{
	Name: "nord",

	Foreground: lipgloss.Color("#ECEFF4"),
	Subtle:     lipgloss.Color("#4C566A"),
	Highlight:  lipgloss.Color("#3B4252"),
	Border:     lipgloss.Color("#4C566A"),

	Primary: lipgloss.Color("#88C0D0"), // Nord8
	Accent:  lipgloss.Color("#81A1C1"), // Nord9
	Success: lipgloss.Color("#A3BE8C"), // Nord14
	Warning: lipgloss.Color("#EBCB8B"), // Nord13
	Error:   lipgloss.Color("#BF616A"), // Nord11

	Done:    lipgloss.Color("#616E88"),
	Editing: lipgloss.Color("#B48EAD"), // Nord15
}

// Dracula - https://draculatheme.com/
var Dracula = Theme{
	Name: "dracula",

	Foreground: lipgloss.Color("#F8F8F2"),
	Subtle:     lipgloss.Color("#6272A4"),
	Highlight:  lipgloss.Color("#44475A"),
	Border:     lipgloss.Color("#6272A4"),

	Primary: lipgloss.Color("#BD93F9"),
	Accent:  lipgloss.Color("#8BE9FD"),
	Success: lipgloss.Color("#50FA7B"),
	Warning: lipgloss.Color("#F1FA8C"),
	Error:   lipgloss.Color("#FF5555"),

	Done:    lipgloss.Color("#6272A4"),
	Editing: lipgloss.Color("#FF79C6"),
}
