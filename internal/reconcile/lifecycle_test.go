package reconcile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nhle/order-incidents/internal/model"
)

// seedIncidents returns two synthesized incidents (orders P1 and P2).
func seedIncidents(t *testing.T) []model.Incident {
	t.Helper()
	env := testEnv()
	raw := mustImportRaw(env, nil,
		[]string{"P1", "Wrong size"},
		[]string{"P1", "Misprint"},
		[]string{"P2", "Color"},
	)
	incidents, _ := Synthesize(env, raw, nil, nil)
	if len(incidents) != 2 {
		t.Fatalf("seed produced %d incidents, want 2", len(incidents))
	}
	return incidents
}

func TestToggleChecklistItem_OnlyFlipsDone(t *testing.T) {
	incidents := seedIncidents(t)
	incidents, _ = ReplaceNotes(incidents, incidents[0].IncidentID, "keep me")
	incidents, _ = MoveIncident(incidents, incidents[0].IncidentID, model.StatusFixing)
	before := incidents[0]
	item := before.ChecklistItems[1]

	next, err := ToggleChecklistItem(incidents, before.IncidentID, item.ID)
	if err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}

	after := next[0].Clone()
	if !after.ChecklistItems[1].Done {
		t.Fatal("item not toggled")
	}

	// Everything except that one flag must be identical.
	after.ChecklistItems[1].Done = false
	if !reflect.DeepEqual(before, after) {
		t.Errorf("toggle changed other fields:\nbefore %+v\nafter  %+v", before, after)
	}
	if !reflect.DeepEqual(incidents[1], next[1]) {
		t.Error("toggle changed another incident")
	}
	if incidents[0].ChecklistItems[1].Done {
		t.Error("ToggleChecklistItem modified its input")
	}

	back, _ := ToggleChecklistItem(next, before.IncidentID, item.ID)
	if back[0].ChecklistItems[1].Done {
		t.Error("second toggle should clear the flag")
	}
}

func TestToggleChecklistItem_NotFound(t *testing.T) {
	incidents := seedIncidents(t)

	if _, err := ToggleChecklistItem(incidents, "nope", "x"); !errors.Is(err, ErrIncidentNotFound) {
		t.Errorf("err = %v, want ErrIncidentNotFound", err)
	}
	if _, err := ToggleChecklistItem(incidents, incidents[0].IncidentID, "x"); !errors.Is(err, ErrChecklistItemNotFound) {
		t.Errorf("err = %v, want ErrChecklistItemNotFound", err)
	}
}

func TestArchiveRestore_ResetsToWaiting(t *testing.T) {
	for _, from := range model.ActiveStatuses {
		t.Run(string(from), func(t *testing.T) {
			incidents := seedIncidents(t)
			id := incidents[0].IncidentID

			incidents, err := MoveIncident(incidents, id, from)
			if err != nil {
				t.Fatalf("MoveIncident: %v", err)
			}
			incidents, err = ArchiveIncident(incidents, id)
			if err != nil {
				t.Fatalf("ArchiveIncident: %v", err)
			}
			if incidents[0].Status != model.StatusArchived {
				t.Fatalf("status = %q, want archived", incidents[0].Status)
			}

			incidents, err = RestoreIncident(incidents, id)
			if err != nil {
				t.Fatalf("RestoreIncident: %v", err)
			}
			if incidents[0].Status != model.StatusWaiting {
				t.Errorf("restored status = %q, want waiting", incidents[0].Status)
			}
		})
	}
}

func TestMoveIncident(t *testing.T) {
	incidents := seedIncidents(t)
	id := incidents[0].IncidentID

	next, err := MoveIncident(incidents, id, model.StatusDone)
	if err != nil {
		t.Fatalf("direct Waiting→Done move rejected: %v", err)
	}
	if next[0].Status != model.StatusDone {
		t.Errorf("status = %q, want done", next[0].Status)
	}
	if incidents[0].Status != model.StatusWaiting {
		t.Error("MoveIncident modified its input")
	}

	next, err = MoveIncident(next, id, model.StatusWaiting)
	if err != nil || next[0].Status != model.StatusWaiting {
		t.Errorf("Done→Waiting = %q, %v", next[0].Status, err)
	}
}

func TestMoveIncident_Illegal(t *testing.T) {
	incidents := seedIncidents(t)
	id := incidents[0].IncidentID

	if _, err := MoveIncident(incidents, id, model.StatusArchived); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("drop onto archived: err = %v, want ErrIllegalTransition", err)
	}
	if _, err := MoveIncident(incidents, id, "bogus"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("drop onto unknown: err = %v, want ErrIllegalTransition", err)
	}

	archived, _ := ArchiveIncident(incidents, id)
	if _, err := MoveIncident(archived, id, model.StatusFixing); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("drag archived: err = %v, want ErrIllegalTransition", err)
	}
	if _, err := ArchiveIncident(archived, id); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("archive twice: err = %v, want ErrIllegalTransition", err)
	}
	if _, err := RestoreIncident(incidents, id); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("restore active: err = %v, want ErrIllegalTransition", err)
	}
}

func TestReplaceNotes(t *testing.T) {
	incidents := seedIncidents(t)
	id := incidents[1].IncidentID

	next, err := ReplaceNotes(incidents, id, "first")
	if err != nil {
		t.Fatalf("ReplaceNotes: %v", err)
	}
	next, _ = ReplaceNotes(next, id, "second")

	if next[1].Notes != "second" {
		t.Errorf("notes = %q, want %q", next[1].Notes, "second")
	}
}

func TestToggleOrderLineChecked(t *testing.T) {
	orders := mustImportOrders(testEnv(),
		[]string{"P1", "", "", "", "Jersey", "M", "20", "", ""},
		[]string{"P1", "", "", "", "Cap", "", "8", "", ""},
	)

	next, err := ToggleOrderLineChecked(orders, orders[1].LineID)
	if err != nil {
		t.Fatalf("ToggleOrderLineChecked: %v", err)
	}
	if !next[1].Checked || next[0].Checked {
		t.Errorf("checked = %v/%v, want false/true", next[0].Checked, next[1].Checked)
	}
	if orders[1].Checked {
		t.Error("ToggleOrderLineChecked modified its input")
	}
	if _, err := ToggleOrderLineChecked(orders, "missing"); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("err = %v, want ErrLineNotFound", err)
	}
}

func TestResolveIncident(t *testing.T) {
	incidents := seedIncidents(t)

	got, err := ResolveIncident(incidents, "P2")
	if err != nil || got.OrderNumber != "P2" {
		t.Errorf("by order number = %+v, %v", got, err)
	}
	got, err = ResolveIncident(incidents, incidents[0].IncidentID)
	if err != nil || got.OrderNumber != "P1" {
		t.Errorf("by id = %+v, %v", got, err)
	}
	if _, err := ResolveIncident(incidents, "id-"); !errors.Is(err, ErrAmbiguousRef) {
		t.Errorf("shared prefix: err = %v, want ErrAmbiguousRef", err)
	}
	if _, err := ResolveIncident(incidents, "zzz"); !errors.Is(err, ErrIncidentNotFound) {
		t.Errorf("unknown: err = %v, want ErrIncidentNotFound", err)
	}
}

func TestIncidentIsOverdue(t *testing.T) {
	incidents := seedIncidents(t)
	inc := incidents[0]
	after := inc.DueDate.Add(1)

	if inc.IsOverdue(inc.CreatedAt.Time) {
		t.Error("fresh incident reported overdue")
	}
	if !inc.IsOverdue(after) {
		t.Error("waiting incident past due not overdue")
	}

	inc.Status = model.StatusDone
	if inc.IsOverdue(after) {
		t.Error("done incident reported overdue")
	}
	inc.Status = model.StatusArchived
	if inc.IsOverdue(after) {
		t.Error("archived incident reported overdue")
	}
}
