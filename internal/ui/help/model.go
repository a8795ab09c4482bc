package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/order-incidents/internal/keys"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/theme"
)

// Model renders the keyboard help overlay and the compact hints shown in
// the status bar.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders the help overlay: every binding, then a legend of the
// board columns.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	legend := make([]string, 0, len(model.ActiveStatuses)+2)
	for _, s := range append(append([]model.IncidentStatus{}, model.ActiveStatuses...), model.StatusArchived) {
		legend = append(legend, theme.StatusStyle(s).Render(s.Label()))
	}
	legend = append(legend, theme.OverdueStyle.Render("OVERDUE")+" past due, not done")

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		helpText,
		"",
		titleStyle.Render("Columns"),
		strings.Join(legend, "  "),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// ShortView renders the compact hints for the status bar.
func (m Model) ShortView() string {
	m.help.ShowAll = false
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
