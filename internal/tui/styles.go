package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/kbackup/internal/model"
)

var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorPurple = lipgloss.Color("#8b5cf6")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorAlt    = lipgloss.Color("#0f172a")
)

// StyleHeader is the full-width title bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

var (
	StyleError    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim      = lipgloss.NewStyle().Foreground(colorGray)
	StyleSelected = lipgloss.NewStyle().Foreground(colorWhite).Background(colorBlue)
	StyleDetail   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

// TypeStyle colors a type tag.
func TypeStyle(t model.ObjectType) lipgloss.Style {
	switch t {
	case model.TypeDashboard:
		return lipgloss.NewStyle().Foreground(colorPurple)
	case model.TypeVisualization:
		return lipgloss.NewStyle().Foreground(colorCyan)
	case model.TypeSearch:
		return lipgloss.NewStyle().Foreground(colorGreen)
	default:
		return lipgloss.NewStyle().Foreground(colorYellow)
	}
}
