package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleStatusError   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleStatusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleStatusSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleDim           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	styleItemDetail   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("7"))
	styleItemSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)

	stylePanelHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)

	styleFocusedBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("6"))

	styleUnfocusedBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("8"))
)
