package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold       lipgloss.Style
	Header     lipgloss.Style
	Key        lipgloss.Style
	Value      lipgloss.Style
	Muted      lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold:   lipgloss.NewStyle().Bold(true),
	Header: lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	Key:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Value:  lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1).
		Width(72),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(72),
}
