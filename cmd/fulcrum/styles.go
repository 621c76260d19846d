package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff")).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("#444466"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))
)

func verdict(ok bool) string {
	if ok {
		return passStyle.Render("pass")
	}
	return failStyle.Render("FAIL")
}
