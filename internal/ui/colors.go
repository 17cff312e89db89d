package ui

import "github.com/charmbracelet/lipgloss"

// View styles. Mint titles, green for success, red for errors, muted grey
// for secondary text.
var styles = struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	dim   lipgloss.Style
}{
	title: lipgloss.NewStyle().Foreground(lipgloss.Color("#7BDCB5")).Bold(true).MarginBottom(1),
	ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
	err:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5C5C")).Bold(true),
	dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
}
