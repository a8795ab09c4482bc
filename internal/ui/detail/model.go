package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/order-incidents/internal/keys"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/theme"
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// ToggleMsg asks the parent to tick or untick a checklist item.
type ToggleMsg struct {
	IncidentID string
	ItemID     string
}

// SaveNotesMsg asks the parent to replace the notes of an incident.
type SaveNotesMsg struct {
	IncidentID string
	Notes      string
}

// Model is the incident detail pane: order snapshot, checklist with a
// cursor, and notes.
type Model struct {
	inc      *model.Incident
	cursor   int
	editing  bool
	notes    textarea.Model
	viewport viewport.Model
	keys     *keys.KeyMap
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail pane. now drives the overdue marker.
func New(k *keys.KeyMap, now func() time.Time, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	ta := textarea.New()
	ta.Placeholder = "Notes..."
	ta.ShowLineNumbers = false

	m := Model{
		notes:    ta,
		viewport: vp,
		keys:     k,
		now:      now,
	}
	m.SetSize(width, height)
	return m
}

// SetIncident shows inc. The checklist cursor is kept when the same
// incident is shown again.
func (m *Model) SetIncident(inc model.Incident) {
	if m.inc == nil || m.inc.IncidentID != inc.IncidentID {
		m.cursor = 0
		m.editing = false
		m.notes.Blur()
		m.viewport.GotoTop()
	}
	m.inc = &inc
	if m.cursor >= len(inc.ChecklistItems) {
		m.cursor = len(inc.ChecklistItems) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refresh()
}

// IncidentID returns the id of the shown incident, or "".
func (m Model) IncidentID() string {
	if m.inc == nil {
		return ""
	}
	return m.inc.IncidentID
}

// Editing reports whether the notes editor has focus.
func (m Model) Editing() bool {
	return m.editing
}

// Cursor returns the index of the highlighted checklist item.
func (m Model) Cursor() int {
	return m.cursor
}

// Update handles messages for the detail pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.inc == nil {
		return m, nil
	}
	if m.editing {
		return m.updateNotes(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.inc.ChecklistItems)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			if m.cursor < len(m.inc.ChecklistItems) {
				toggle := ToggleMsg{IncidentID: m.inc.IncidentID, ItemID: m.inc.ChecklistItems[m.cursor].ID}
				return m, func() tea.Msg { return toggle }
			}
			return m, nil

		case key.Matches(msg, m.keys.EditNotes):
			m.editing = true
			m.notes.SetValue(m.inc.Notes)
			cmd := m.notes.Focus()
			m.refresh()
			return m, cmd
		}
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateNotes(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Save):
			m.editing = false
			m.notes.Blur()
			m.refresh()
			save := SaveNotesMsg{IncidentID: m.inc.IncidentID, Notes: m.notes.Value()}
			return m, func() tea.Msg { return save }

		case key.Matches(keyMsg, m.keys.Back):
			m.editing = false
			m.notes.Blur()
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

// View renders the detail pane.
func (m Model) View() string {
	if m.inc == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No incident selected")
	}

	content := m.viewport.View()
	if m.editing {
		hint := theme.DimmedStyle.Render("ctrl+s save · esc discard")
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.notes.View(), hint)
	}
	return theme.DetailPanelStyle.Width(m.width - 2).Render(content)
}

// SetSize updates the detail pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 6
	m.viewport.Height = height - 2
	m.notes.SetWidth(width - 6)
	m.notes.SetHeight(5)
	m.refresh()
}

func (m *Model) refresh() {
	if m.editing {
		m.viewport.Height = m.height - 10
	} else {
		m.viewport.Height = m.height - 2
	}
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.inc == nil {
		return ""
	}

	inc := m.inc
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	badges := []string{
		titleStyle.Render("Order " + inc.OrderNumber),
		theme.StatusStyle(inc.Status).Render(inc.Status.Label()),
	}
	if inc.ManualOrigin {
		badges = append(badges, theme.ManualBadgeStyle.Render("MANUAL"))
	}
	if inc.IsOverdue(m.now()) {
		badges = append(badges, theme.OverdueStyle.Render("OVERDUE"))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	field := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-9s", label+":")), valStyle.Render(value)))
	}

	field("Created", dateText(inc.CreatedAt))
	field("Due", dateText(inc.DueDate))
	if inc.OrderFound {
		field("Email", inc.Email)
		field("Club", inc.Club)
		field("Products", inc.ProductsSummary)
		field("Sizes", inc.SizesSummary)
		field("Total", inc.OrderTotal.StringFixed(2)+" €")
	} else {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("Order not found in imported orders"))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-8, 80), 1)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	sections = append(sections, "", separator, "",
		headerStyle.Render(fmt.Sprintf("Checklist (%d/%d)", inc.DoneCount(), len(inc.ChecklistItems))))
	for i, item := range inc.ChecklistItems {
		box := "[ ]"
		if item.Done {
			box = "[x]"
		}
		line := theme.ChecklistStyle(item.Done).Render(box + " " + item.Label)
		if i == m.cursor && !m.editing {
			line = theme.SelectedCardStyle.Render(line)
		} else {
			line = theme.CardStyle.Render(line)
		}
		sections = append(sections, line)
	}

	if !m.editing {
		sections = append(sections, "", separator, "", headerStyle.Render("Notes"))
		if strings.TrimSpace(inc.Notes) == "" {
			sections = append(sections, lipgloss.NewStyle().
				Foreground(theme.ColorGray).
				Italic(true).
				Render("No notes. Press n to edit."))
		} else {
			sections = append(sections, strings.TrimRight(inc.Notes, "\n"))
		}
	} else {
		sections = append(sections, "", headerStyle.Render("Notes"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func dateText(ts model.Timestamp) string {
	if !ts.Valid() {
		return "-"
	}
	return ts.Format("2006-01-02")
}
