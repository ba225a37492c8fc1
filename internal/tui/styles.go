package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the results screen.
type Styles struct {
	Title    lipgloss.Style
	Status   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Brand    lipgloss.Style
	Price    lipgloss.Style
	Sale     lipgloss.Style
	Dim      lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// NewStyles returns the default styles.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Row:      lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Background(lipgloss.Color("238")).Bold(true),
		Brand:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Price:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")), // green
		Sale:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Dim:      lipgloss.NewStyle().Faint(true),
		Notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Help:     lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
