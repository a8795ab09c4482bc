package detail

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/order-incidents/internal/keys"
	"github.com/nhle/order-incidents/internal/model"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestDetail() Model {
	m := New(keys.DefaultKeyMap(), func() time.Time { return testNow }, 100, 30)
	m.SetIncident(model.Incident{
		IncidentID:  "inc-1",
		OrderNumber: "P1",
		Status:      model.StatusWaiting,
		CreatedAt:   model.NewTimestamp(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		DueDate:     model.NewTimestamp(time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)),
		ChecklistItems: []model.ChecklistItem{
			{ID: "a", Label: "Jersey - Color"},
			{ID: "b", Label: "Jersey - Sizing", Done: true},
		},
		Notes: "first call",
	})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDetail_CursorAndToggle(t *testing.T) {
	m := newTestDetail()

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j"))
	if m.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor())
	}

	_, cmd := m.Update(runes("x"))
	if cmd == nil {
		t.Fatal("expected a toggle command")
	}
	msg, ok := cmd().(ToggleMsg)
	if !ok || msg.IncidentID != "inc-1" || msg.ItemID != "b" {
		t.Errorf("toggle msg = %+v", msg)
	}

	m, _ = m.Update(runes("k"))
	m, _ = m.Update(runes("k"))
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor())
	}
}

func TestDetail_Back(t *testing.T) {
	m := newTestDetail()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a back command")
	}
	if _, ok := cmd().(BackMsg); !ok {
		t.Error("esc should emit BackMsg")
	}
}

func TestDetail_EditNotes(t *testing.T) {
	m := newTestDetail()

	m, _ = m.Update(runes("n"))
	if !m.Editing() {
		t.Fatal("n should open the notes editor")
	}
	m, _ = m.Update(runes(", left voicemail"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.Editing() {
		t.Error("ctrl+s should close the editor")
	}
	save, ok := cmd().(SaveNotesMsg)
	if !ok || save.IncidentID != "inc-1" || save.Notes != "first call, left voicemail" {
		t.Errorf("save msg = %+v", save)
	}
}

func TestDetail_DiscardNotes(t *testing.T) {
	m := newTestDetail()

	m, _ = m.Update(runes("n"))
	m, _ = m.Update(runes("junk"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Editing() || cmd != nil {
		t.Errorf("esc while editing should close the editor without saving")
	}
}

func TestDetail_SetIncidentKeepsCursor(t *testing.T) {
	m := newTestDetail()
	m, _ = m.Update(runes("j"))

	inc := *m.inc
	inc.ChecklistItems = append([]model.ChecklistItem(nil), inc.ChecklistItems...)
	inc.ChecklistItems[1].Done = false
	m.SetIncident(inc)
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1 after refreshing the same incident", m.Cursor())
	}

	inc.IncidentID = "inc-2"
	m.SetIncident(inc)
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 for another incident", m.Cursor())
	}
}

func TestDetail_View(t *testing.T) {
	m := newTestDetail()
	view := m.View()

	for _, want := range []string{"Order P1", "Waiting for fix", "OVERDUE", "[x] Jersey - Sizing", "first call", "Checklist (1/2)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
