package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors for the UI theme - Muted Professional Palette
var (
	ColorPrimary   = lipgloss.Color("#A78BFA") // Soft Purple (Lavender 400)
	ColorSecondary = lipgloss.Color("#22D3EE") // Bright Cyan (Cyan 400)
	ColorSuccess   = lipgloss.Color("#059669") // Emerald 600 (muted green)
	ColorWarning   = lipgloss.Color("#D97706") // Amber 600 (muted amber)
	ColorError     = lipgloss.Color("#DC2626") // Red 600 (muted red)
	ColorMuted     = lipgloss.Color("#9CA3AF") // Neutral Gray (Gray 400)
	ColorDim       = lipgloss.Color("#6B7280") // Gray 500
)

// MessageIcons provides consistent icons for different message types
var MessageIcons = map[string]string{
	"success": "✓",
	"error":   "✗",
	"warning": "⚠",
	"info":    "ℹ",
	"pending": "○",
}

// Styles holds the console styles. They are bound to one renderer so that
// color support is detected for the actual output writer.
type Styles struct {
	Title    lipgloss.Style
	Prompt   lipgloss.Style
	Proposal lipgloss.Style
	Status   lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Dim      lipgloss.Style
}

// NewStyles creates styles for r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:    r.NewStyle().Foreground(ColorPrimary).Bold(true),
		Prompt:   r.NewStyle().Foreground(ColorSecondary).Bold(true),
		Proposal: r.NewStyle().Foreground(ColorSecondary),
		Status:   r.NewStyle().Foreground(ColorMuted).Italic(true),
		Success:  r.NewStyle().Foreground(ColorSuccess),
		Error:    r.NewStyle().Foreground(ColorError).Bold(true),
		Warning:  r.NewStyle().Foreground(ColorWarning).Bold(true),
		Dim:      r.NewStyle().Foreground(ColorDim),
	}
}
