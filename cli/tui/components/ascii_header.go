package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"github.com/municrud/municrud/cli/tui/styles"
)

// RenderBanner renders the product name as ASCII art, clipped to width
func RenderBanner(width int) string {
	art := figure.NewFigure("municrud", "standard", true)
	style := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true)
	if width > 0 {
		style = style.MaxWidth(width)
	}
	return style.Render(art.String())
}
