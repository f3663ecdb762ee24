package logger

import (
	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

func getDefaultStyles() *charmlog.Styles {
	styles := charmlog.DefaultStyles()
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["file"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styles.Keys["pattern"] = lipgloss.NewStyle().Foreground(lipgloss.Color("192"))
	return styles
}
