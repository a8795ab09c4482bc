// Package board is the interactive incident board: one column per active
// status, an archive list, an incident detail pane with its checklist and
// notes, and the manual report form.
package board

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/order-incidents/internal/keys"
	"github.com/nhle/order-incidents/internal/ledger"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
	"github.com/nhle/order-incidents/internal/ui"
	"github.com/nhle/order-incidents/internal/ui/detail"
	helpview "github.com/nhle/order-incidents/internal/ui/help"
	"github.com/nhle/order-incidents/internal/ui/report"
)

type mode int

const (
	modeBoard mode = iota
	modeDetail
	modeReport
	modeHelp
)

// StateMsg carries a newly committed ledger state.
type StateMsg struct {
	State ledger.State
}

// actionMsg reports the outcome of a ledger operation.
type actionMsg struct {
	info string
	err  error
}

// Model is the root Bubble Tea model of the board.
type Model struct {
	ledger *ledger.Ledger
	keys   *keys.KeyMap
	layout ui.Layout
	now    func() time.Time

	state    ledger.State
	updates  chan ledger.State
	archived bool

	mode    mode
	col     int
	rows    [3]int
	archRow int

	detail detail.Model
	help   helpview.Model
	form   report.Model

	info string
	err  error
}

// New creates a board over l. now drives overdue badges.
func New(l *ledger.Ledger, k *keys.KeyMap, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}

	layout := ui.NewLayout(80, 24)
	return Model{
		ledger:  l,
		keys:    k,
		layout:  layout,
		now:     now,
		state:   l.Snapshot(),
		updates: make(chan ledger.State, 1),
		detail:  detail.New(k, now, layout.Width, layout.ContentHeight()),
		help:    helpview.New(k, layout.Width, layout.ContentHeight()),
		form:    report.New(layout.Width, layout.ContentHeight()),
	}
}

// Run starts the board in the alternate screen and blocks until it exits.
func Run(l *ledger.Ledger, k *keys.KeyMap) error {
	m := New(l, k, nil)
	unsubscribe := l.Subscribe(func(s ledger.State) {
		select {
		case m.updates <- s:
		default:
		}
	})
	defer unsubscribe()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init starts listening for ledger updates.
func (m Model) Init() tea.Cmd {
	return m.waitForState()
}

func (m Model) waitForState() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		return StateMsg{State: <-ch}
	}
}

// Update handles messages for the board.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.detail.SetSize(msg.Width, m.layout.ContentHeight())
		m.help.SetSize(msg.Width, m.layout.ContentHeight())
		m.form.SetSize(msg.Width, m.layout.ContentHeight())
		return m, nil

	case StateMsg:
		m.setState(msg.State)
		return m, m.waitForState()

	case actionMsg:
		m.info, m.err = msg.info, msg.err
		m.setState(m.ledger.Snapshot())
		return m, nil

	case report.SubmittedMsg:
		m.mode = modeBoard
		return m, m.submitReport(msg.Report)

	case report.CancelMsg:
		m.mode = modeBoard
		m.info = "report cancelled"
		return m, nil

	case detail.BackMsg:
		m.mode = modeBoard
		return m, nil

	case detail.ToggleMsg:
		return m, m.toggle(msg.IncidentID, msg.ItemID)

	case detail.SaveNotesMsg:
		return m, m.setNotes(msg.IncidentID, msg.Notes)
	}

	switch m.mode {
	case modeReport:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case modeDetail:
		return m.updateDetail(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.mode == modeHelp {
		if key.Matches(keyMsg, m.keys.Help, m.keys.Back) {
			m.mode = modeBoard
		}
		return m, nil
	}
	return m.updateBoard(keyMsg)
}

// setState installs s and keeps the cursors in range.
func (m *Model) setState(s ledger.State) {
	if s.Version < m.state.Version {
		return
	}
	m.state = s
	cols := Columns(s.Incidents)
	for i := range m.rows {
		m.rows[i] = clamp(m.rows[i], len(cols[i]))
	}
	m.archRow = clamp(m.archRow, len(Archived(s.Incidents)))

	if m.mode == modeDetail {
		inc, ok := m.find(m.detail.IncidentID())
		if !ok {
			m.mode = modeBoard
			return
		}
		m.detail.SetIncident(inc)
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.ShowArchived):
		m.archived = !m.archived
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.setState(m.ledger.Snapshot())
		m.info = "reloaded"
		return m, nil

	case key.Matches(msg, m.keys.Report):
		m.mode = modeReport
		cmd := m.form.Start(m.state.Orders, m.reportDefaults())
		return m, cmd

	case key.Matches(msg, m.keys.Left):
		if !m.archived && m.col > 0 {
			m.col--
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if !m.archived && m.col < len(model.ActiveStatuses)-1 {
			m.col++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	}

	inc, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		m.mode = modeDetail
		m.detail.SetIncident(inc)
		return m, nil
	case key.Matches(msg, m.keys.MoveLeft):
		return m, m.shift(inc, -1)
	case key.Matches(msg, m.keys.MoveRight):
		return m, m.shift(inc, 1)
	case key.Matches(msg, m.keys.Archive):
		return m, m.archive(inc)
	case key.Matches(msg, m.keys.Restore):
		return m, m.restore(inc)
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if m.archived {
		m.archRow = clamp(m.archRow+delta, len(Archived(m.state.Incidents)))
		return
	}
	n := len(Columns(m.state.Incidents)[m.col])
	m.rows[m.col] = clamp(m.rows[m.col]+delta, n)
}

// selected returns the incident under the board cursor.
func (m Model) selected() (model.Incident, bool) {
	var list []model.Incident
	row := m.archRow
	if m.archived {
		list = Archived(m.state.Incidents)
	} else {
		list = Columns(m.state.Incidents)[m.col]
		row = m.rows[m.col]
	}
	if row < 0 || row >= len(list) {
		return model.Incident{}, false
	}
	return list[row], true
}

// find returns the incident with id from the current state.
func (m Model) find(id string) (model.Incident, bool) {
	for _, inc := range m.state.Incidents {
		if inc.IncidentID == id {
			return inc, true
		}
	}
	return model.Incident{}, false
}

// updateDetail handles the board-level actions available from the detail
// pane and delegates everything else to it.
func (m Model) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	inc, ok := m.find(m.detail.IncidentID())
	if !ok {
		m.mode = modeBoard
		return m, nil
	}

	if keyMsg, isKey := msg.(tea.KeyMsg); isKey && !m.detail.Editing() {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.MoveLeft):
			return m, m.shift(inc, -1)
		case key.Matches(keyMsg, m.keys.MoveRight):
			return m, m.shift(inc, 1)
		case key.Matches(keyMsg, m.keys.Archive):
			return m, m.archive(inc)
		case key.Matches(keyMsg, m.keys.Restore):
			return m, m.restore(inc)
		}
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// reportDefaults prefills the report form with the selected order.
func (m Model) reportDefaults() reconcile.ManualReport {
	if inc, ok := m.selected(); ok {
		return reconcile.ManualReport{OrderNumber: inc.OrderNumber}
	}
	return reconcile.ManualReport{}
}

// run executes op against the ledger off the update loop.
func (m Model) run(info string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(context.Background()); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{info: info}
	}
}

func (m Model) shift(inc model.Incident, delta int) tea.Cmd {
	to, ok := Adjacent(inc.Status, delta)
	if !ok {
		return nil
	}
	l := m.ledger
	return m.run(fmt.Sprintf("%s → %s", inc.OrderNumber, to.Label()), func(ctx context.Context) error {
		return l.Move(ctx, inc.IncidentID, to)
	})
}

func (m Model) archive(inc model.Incident) tea.Cmd {
	l := m.ledger
	return m.run(inc.OrderNumber+" archived", func(ctx context.Context) error {
		return l.Archive(ctx, inc.IncidentID)
	})
}

func (m Model) restore(inc model.Incident) tea.Cmd {
	l := m.ledger
	return m.run(inc.OrderNumber+" restored", func(ctx context.Context) error {
		return l.Restore(ctx, inc.IncidentID)
	})
}

func (m Model) toggle(incidentID, itemID string) tea.Cmd {
	l := m.ledger
	return m.run("checklist updated", func(ctx context.Context) error {
		return l.ToggleChecklist(ctx, incidentID, itemID)
	})
}

func (m Model) setNotes(id, notes string) tea.Cmd {
	l := m.ledger
	return m.run("notes saved", func(ctx context.Context) error {
		return l.SetNotes(ctx, id, notes)
	})
}

func (m Model) submitReport(r reconcile.ManualReport) tea.Cmd {
	l := m.ledger
	return func() tea.Msg {
		res, err := l.ReportManual(context.Background(), r)
		if err != nil {
			return actionMsg{err: err}
		}
		if res.Created {
			return actionMsg{info: "incident created for " + r.OrderNumber}
		}
		return actionMsg{info: "report added to " + r.OrderNumber}
	}
}

// Columns splits incidents into one list per active status, in
// collection order.
func Columns(incidents []model.Incident) [][]model.Incident {
	cols := make([][]model.Incident, len(model.ActiveStatuses))
	for _, inc := range incidents {
		for i, s := range model.ActiveStatuses {
			if inc.Status == s {
				cols[i] = append(cols[i], inc)
			}
		}
	}
	return cols
}

// Archived returns the archived incidents in collection order.
func Archived(incidents []model.Incident) []model.Incident {
	var out []model.Incident
	for _, inc := range incidents {
		if inc.Status == model.StatusArchived {
			out = append(out, inc)
		}
	}
	return out
}

// Adjacent returns the active status delta columns away from s.
func Adjacent(s model.IncidentStatus, delta int) (model.IncidentStatus, bool) {
	for i, a := range model.ActiveStatuses {
		if a != s {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(model.ActiveStatuses) {
			return "", false
		}
		return model.ActiveStatuses[j], true
	}
	return "", false
}
