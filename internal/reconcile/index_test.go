package reconcile

import (
	"testing"
	"time"

	"github.com/nhle/order-incidents/internal/model"
)

func incidentAt(id, order string, labels ...string) model.Incident {
	created := model.NewTimestamp(testNow)
	inc := model.Incident{
		IncidentID:  id,
		OrderNumber: order,
		CreatedAt:   created,
		DueDate:     model.NewTimestamp(testNow.Add(model.DueWindow)),
		Status:      model.StatusWaiting,
	}
	for i, l := range labels {
		inc.ChecklistItems = append(inc.ChecklistItems, model.ChecklistItem{ID: id + "-" + string(rune('a'+i)), Label: l})
	}
	return inc
}

func TestIncidentIndex(t *testing.T) {
	idx := NewIncidentIndex([]model.Incident{
		incidentAt("i1", "P1"),
		incidentAt("i2", "P2"),
		incidentAt("i3", "P1"),
	})

	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
	if pos, ok := idx.Lookup("P1"); !ok || pos != 0 {
		t.Errorf("Lookup(P1) = %d, %v; want 0, true", pos, ok)
	}
	if _, ok := idx.Lookup("P9"); ok {
		t.Error("Lookup(P9) should miss")
	}
	if err := idx.Add("P2", 5); err == nil {
		t.Error("Add must refuse an order that already has an incident")
	}
	if err := idx.Add("P3", 3); err != nil {
		t.Errorf("Add(P3): %v", err)
	}
}

func TestValidate(t *testing.T) {
	skewed := incidentAt("i4", "P4")
	skewed.DueDate = model.NewTimestamp(testNow.Add(6 * 24 * time.Hour))

	tests := []struct {
		name      string
		incidents []model.Incident
		wantErr   bool
	}{
		{"valid", []model.Incident{incidentAt("i1", "P1", "a", "b"), incidentAt("i2", "P2", "a")}, false},
		{"two per order", []model.Incident{incidentAt("i1", "P1"), incidentAt("i2", "P1")}, true},
		{"duplicate id", []model.Incident{incidentAt("i1", "P1"), incidentAt("i1", "P2")}, true},
		{"duplicate label", []model.Incident{incidentAt("i1", "P1", "a", "a")}, true},
		{"due window", []model.Incident{skewed}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.incidents)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
