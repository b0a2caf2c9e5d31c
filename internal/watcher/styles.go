package watcher

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	phaseStyle  = lipgloss.NewStyle().Bold(true)
	movedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
