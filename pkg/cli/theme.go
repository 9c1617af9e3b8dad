package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the lipgloss styles and symbols used by the help renderer.
type Theme struct {
	Bold   lipgloss.Style
	Cyan   lipgloss.Style
	Green  lipgloss.Style
	Yellow lipgloss.Style
	Dim    lipgloss.Style

	Bullet  string
	BoxTree string
	BoxLast string
	BoxItem string

	IconRun   string
	IconImage string
	IconDisk  string
	IconHelp  string
}

func DefaultTheme() *Theme {
	return &Theme{
		Bold:   lipgloss.NewStyle().Bold(true),
		Cyan:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Dim:    lipgloss.NewStyle().Faint(true),

		Bullet:  "•",
		BoxTree: "├──",
		BoxLast: "└──",
		BoxItem: "│  ",

		IconRun:   "🚀",
		IconImage: "📦",
		IconDisk:  "💾",
		IconHelp:  "💡",
	}
}

func (t *Theme) Styled(style lipgloss.Style, text string) string {
	return style.Render(text)
}
