package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/summary"
	"github.com/nhle/order-incidents/internal/theme"
)

const dateLayout = "2006-01-02"

func dateText(ts model.Timestamp) string {
	if !ts.Valid() {
		return "-"
	}
	return ts.Format(dateLayout)
}

// View renders the board.
func (m Model) View() string {
	k := summary.IncidentStats(m.state.Incidents, m.now())
	status := fmt.Sprintf("v%d · %d open · %d overdue · %d done", m.state.Version, k.Open, k.Overdue, k.Done)

	title := "Incidents"
	if m.archived {
		title = "Incidents · archive"
	}
	header := m.layout.RenderHeader(title, status)

	var content string
	switch m.mode {
	case modeReport:
		content = m.form.View()
	case modeHelp:
		content = m.help.View()
	case modeDetail:
		content = m.detail.View()
	default:
		if m.archived {
			content = m.renderArchive()
		} else {
			content = m.renderColumns()
		}
	}
	content = lipgloss.NewStyle().
		Height(m.layout.ContentHeight()).
		MaxHeight(m.layout.ContentHeight()).
		Render(content)

	return m.layout.RenderWithFrame(header, content, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	switch {
	case m.err != nil:
		return m.layout.RenderStatusBar(theme.ErrorStyle.Render("error: " + m.err.Error()))
	case m.info != "":
		return m.layout.RenderStatusBar(m.info)
	}
	return m.layout.RenderStatusBar(m.help.ShortView())
}

func (m Model) renderColumns() string {
	cols := Columns(m.state.Incidents)
	width := m.layout.ColumnWidth(len(cols))
	height := m.layout.ContentHeight() - 2

	rendered := make([]string, len(cols))
	for i, list := range cols {
		style := theme.ColumnStyle
		if i == m.col {
			style = theme.FocusedColumnStyle
		}
		status := model.ActiveStatuses[i]
		heading := theme.StatusStyle(status).Render(fmt.Sprintf("%s (%d)", status.Label(), len(list)))

		cursor := -1
		if i == m.col {
			cursor = m.rows[i]
		}
		body := m.renderCards(list, cursor, width-4)
		rendered[i] = style.
			Width(width - 2).
			Height(height).
			Render(heading + "\n\n" + body)
	}
	return m.layout.RenderColumns(rendered)
}

func (m Model) renderArchive() string {
	list := Archived(m.state.Incidents)
	heading := theme.StatusStyle(model.StatusArchived).Render(fmt.Sprintf("Archived (%d)", len(list)))
	body := m.renderCards(list, m.archRow, m.layout.Width-6)
	if len(list) == 0 {
		body = theme.DimmedStyle.Render("Nothing archived.")
	}
	return theme.FocusedColumnStyle.
		Width(m.layout.Width - 2).
		Height(m.layout.ContentHeight() - 2).
		Render(heading + "\n\n" + body)
}

func (m Model) renderCards(list []model.Incident, cursor, width int) string {
	cards := make([]string, len(list))
	for i, inc := range list {
		style := theme.CardStyle
		if i == cursor {
			style = theme.SelectedCardStyle
		}
		cards[i] = style.MaxWidth(width).Render(m.renderCard(inc))
	}
	return strings.Join(cards, "\n")
}

// renderCard renders the order number, badges, checklist progress and due
// date of one incident.
func (m Model) renderCard(inc model.Incident) string {
	var b strings.Builder
	b.WriteString(inc.OrderNumber)
	if inc.ManualOrigin {
		b.WriteString(" " + theme.ManualBadgeStyle.Render("MANUAL"))
	}
	if !inc.OrderFound {
		b.WriteString(" " + theme.DimmedStyle.Render("(no order)"))
	}
	b.WriteString("\n")

	meta := fmt.Sprintf("%d/%d done", inc.DoneCount(), len(inc.ChecklistItems))
	if inc.Club != "" {
		meta += " · " + inc.Club
	}
	b.WriteString(theme.DimmedStyle.Render(meta))
	b.WriteString("\n")

	due := "due " + dateText(inc.DueDate)
	if inc.IsOverdue(m.now()) {
		b.WriteString(theme.OverdueStyle.Render("OVERDUE " + due))
	} else {
		b.WriteString(theme.DimmedStyle.Render(due))
	}
	return b.String()
}
