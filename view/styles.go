package view

import "github.com/charmbracelet/lipgloss"

const (
	padding  = 2
	maxTypes = 9
)

var (
	baseStyle = lipgloss.NewStyle().Padding(1, padding)

	clockStyle = lipgloss.NewStyle().Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	itemStyle = lipgloss.NewStyle().PaddingLeft(2)

	activeItemStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Bold(true)
)

func titleStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color))
}
