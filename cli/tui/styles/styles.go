package styles

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Primary   = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#7D56F4"}
	Highlight = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#FAFAFA"}
	Surface   = lipgloss.AdaptiveColor{Light: "#E8E6F5", Dark: "#3C3A4F"}
	Border    = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#555555"}
	Muted     = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#888888"}
	Success   = lipgloss.Color("#04B575")
	Warning   = lipgloss.Color("#FFB86C")
	Danger    = lipgloss.Color("#FF6B6B")
	Info      = lipgloss.Color("#8BE9FD")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().Padding(0, 1)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(Highlight).
				Background(Surface).
				Bold(true)

	EditingCellStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(Warning).
				Underline(true)

	FocusedCellStyle = EditingCellStyle.
				Background(Surface).
				Bold(true)

	HelpStyle       = lipgloss.NewStyle().Foreground(Muted)
	HelpKeyStyle    = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	HelpDescStyle   = lipgloss.NewStyle().Foreground(Muted)
	InfoStyle       = lipgloss.NewStyle().Foreground(Info)
	SuccessStyle    = lipgloss.NewStyle().Foreground(Success)
	WarningStyle    = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle      = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	PaginationStyle = lipgloss.NewStyle().Foreground(Muted).MarginTop(1)
	DisabledStyle   = lipgloss.NewStyle().Foreground(Border)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)
)

// RenderTitle renders a section title
func RenderTitle(title string) string {
	return TitleStyle.Render(title)
}
