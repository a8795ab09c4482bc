package report

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
	"github.com/nhle/order-incidents/internal/theme"
)

// SubmittedMsg is dispatched when the user completes the form.
type SubmittedMsg struct {
	Report reconcile.ManualReport
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	orderNumber string
	lineID      string
	issueType   model.ManualIssueType
	detail      string
}

// Model is the Bubble Tea model for the manual report form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	orders []model.OrderLine
	width  int
	height int
}

// New creates a new report form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{issueType: model.IssueColor},
		width:  width,
		height: height,
	}
}

// Start initializes the form, prefilled from initial. orders feed the line
// selector.
func (m *Model) Start(orders []model.OrderLine, initial reconcile.ManualReport) tea.Cmd {
	m.orders = orders
	m.fb.orderNumber = initial.OrderNumber
	m.fb.lineID = initial.LineID
	m.fb.detail = initial.Detail
	m.fb.issueType = model.IssueColor
	if initial.Type.IsValid() {
		m.fb.issueType = initial.Type
	}
	m.form = newForm(m.fb, orders).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// Update handles messages for the report form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		r := m.fb.report()
		m.form = nil
		return m, func() tea.Msg { return SubmittedMsg{Report: r} }
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// Active reports whether the form is being filled in.
func (m Model) Active() bool {
	return m.form != nil
}

// View renders the report form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Manual incident report") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Prompt runs the form standalone and returns the completed report.
// huh.ErrUserAborted is returned if the user cancels.
func Prompt(orders []model.OrderLine, initial reconcile.ManualReport) (reconcile.ManualReport, error) {
	fb := &formBindings{
		orderNumber: initial.OrderNumber,
		lineID:      initial.LineID,
		issueType:   model.IssueColor,
		detail:      initial.Detail,
	}
	if initial.Type.IsValid() {
		fb.issueType = initial.Type
	}
	if err := newForm(fb, orders).Run(); err != nil {
		return reconcile.ManualReport{}, err
	}
	return fb.report(), nil
}

func (fb *formBindings) report() reconcile.ManualReport {
	return reconcile.ManualReport{
		OrderNumber: strings.TrimSpace(fb.orderNumber),
		LineID:      fb.lineID,
		Type:        fb.issueType,
		Detail:      strings.TrimSpace(fb.detail),
	}
}

func newForm(fb *formBindings, orders []model.OrderLine) *huh.Form {
	typeOpts := make([]huh.Option[model.ManualIssueType], len(model.ManualIssueTypes))
	for i, t := range model.ManualIssueTypes {
		typeOpts[i] = huh.NewOption(string(t), t)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Order number").
				Value(&fb.orderNumber).
				Validate(validateRequired("Order number")),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Scope").
				OptionsFunc(func() []huh.Option[string] {
					return LineOptions(orders, strings.TrimSpace(fb.orderNumber))
				}, &fb.orderNumber).
				Value(&fb.lineID),
			huh.NewSelect[model.ManualIssueType]().
				Title("Issue type").
				Options(typeOpts...).
				Value(&fb.issueType),
			huh.NewText().
				Title("Detail").
				Placeholder("What is wrong?").
				Value(&fb.detail).
				Validate(validateRequired("Detail")),
		),
	)
}

// LineOptions lists the scope choices for an order: the whole order, then
// each of its lines.
func LineOptions(orders []model.OrderLine, orderNumber string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Full order", "")}
	for _, l := range orders {
		if l.OrderNumber != orderNumber {
			continue
		}
		label := l.Product
		if l.Size != "" {
			label = fmt.Sprintf("%s (%s)", l.Product, l.Size)
		}
		if l.BandName != "" || l.BandNumber != "" {
			label += fmt.Sprintf(" %s %s", l.BandName, l.BandNumber)
		}
		opts = append(opts, huh.NewOption(strings.TrimSpace(label), l.LineID))
	}
	return opts
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
