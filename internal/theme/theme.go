package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/order-incidents/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the board title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the incident detail pane.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ColumnStyle frames one board column.
var ColumnStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// FocusedColumnStyle frames the column holding the cursor.
var FocusedColumnStyle = ColumnStyle.
	BorderForeground(ColorBlue)

// CardStyle is the base style for an incident card.
var CardStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedCardStyle highlights the card under the cursor.
var SelectedCardStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders secondary card lines.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// OverdueStyle flags incidents past their due date.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// ManualBadgeStyle marks incidents that started from a manual report.
var ManualBadgeStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// ErrorStyle renders the last failed action in the status bar.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// StatusStyle returns a color-coded style for an incident status.
func StatusStyle(status model.IncidentStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusWaiting:
		return base.Foreground(ColorYellow)
	case model.StatusFixing:
		return base.Foreground(ColorBlue)
	case model.StatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// ChecklistStyle renders a checklist item, struck through once done.
func ChecklistStyle(done bool) lipgloss.Style {
	if done {
		return lipgloss.NewStyle().Foreground(ColorGreen).Strikethrough(true)
	}
	return lipgloss.NewStyle().Foreground(ColorWhite)
}
