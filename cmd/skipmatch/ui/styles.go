// Package ui provides the visual styling for the skipmatch CLI output.
package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors shared by all renderers.
var (
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Destructive = lipgloss.Color("#e53935") // Red
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	MutedGray   = lipgloss.Color("#6b7280")
)

// Styles holds the style set used by CLI renderers.
type Styles struct {
	Title lipgloss.Style
	Bold  lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
	Good  lipgloss.Style
	Bad   lipgloss.Style
	Warn  lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(Info),
		Bold:  lipgloss.NewStyle().Bold(true),
		Body:  lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().Foreground(MutedGray),
		Good:  lipgloss.NewStyle().Bold(true).Foreground(Success),
		Bad:   lipgloss.NewStyle().Bold(true).Foreground(Destructive),
		Warn:  lipgloss.NewStyle().Bold(true).Foreground(Warning),
	}
}

// Verdict renders an equivalence verdict.
func (s Styles) Verdict(equivalent bool) string {
	if equivalent {
		return s.Good.Render("EQUIVALENT")
	}
	return s.Bad.Render("DISTINCT")
}
