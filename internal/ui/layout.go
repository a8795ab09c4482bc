package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/order-incidents/internal/theme"
)

// Layout manages the board's terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the height available for the columns or the detail
// pane, accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 3 {
		h = 3
	}
	return h
}

// ColumnWidth returns the outer width of one of n side-by-side columns.
func (l Layout) ColumnWidth(n int) int {
	if n < 1 {
		n = 1
	}
	w := l.Width / n
	if w < 16 {
		w = 16
	}
	return w
}

// bar fills the full width with style, text left-aligned and right
// right-aligned.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := l.Width - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}

// RenderHeader renders the title bar with a right-aligned status text.
func (l Layout) RenderHeader(title, status string) string {
	return l.bar(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the bottom bar with keyboard hints or a message.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, hints, "")
}

// RenderColumns joins rendered columns side by side.
func (l Layout) RenderColumns(columns []string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
