package reconcile

import (
	"fmt"

	"github.com/nhle/order-incidents/internal/model"
)

// IncidentIndex maps an order number to the position of its incident in a
// collection. It is the unique constraint behind "one incident per order".
type IncidentIndex struct {
	byOrder map[string]int
}

// NewIncidentIndex indexes incidents. If two incidents share an order
// number the first one wins; use Validate to detect that case.
func NewIncidentIndex(incidents []model.Incident) *IncidentIndex {
	idx := &IncidentIndex{byOrder: make(map[string]int, len(incidents))}
	for i, inc := range incidents {
		if _, ok := idx.byOrder[inc.OrderNumber]; !ok {
			idx.byOrder[inc.OrderNumber] = i
		}
	}
	return idx
}

// Lookup returns the position of the incident for orderNumber.
func (x *IncidentIndex) Lookup(orderNumber string) (int, bool) {
	i, ok := x.byOrder[orderNumber]
	return i, ok
}

// Add records that the incident for orderNumber lives at pos. It refuses
// to shadow an existing entry.
func (x *IncidentIndex) Add(orderNumber string, pos int) error {
	if _, ok := x.byOrder[orderNumber]; ok {
		return fmt.Errorf("order %s already has an incident", orderNumber)
	}
	x.byOrder[orderNumber] = pos
	return nil
}

// Len returns the number of indexed orders.
func (x *IncidentIndex) Len() int {
	return len(x.byOrder)
}

// Validate checks the collection invariants: one incident per order number,
// unique incident ids, unique checklist labels per incident, and the fixed
// due window.
func Validate(incidents []model.Incident) error {
	orders := make(map[string]string, len(incidents))
	ids := make(map[string]bool, len(incidents))

	for _, inc := range incidents {
		if other, ok := orders[inc.OrderNumber]; ok {
			return fmt.Errorf("order %s has two incidents (%s, %s)", inc.OrderNumber, other, inc.IncidentID)
		}
		orders[inc.OrderNumber] = inc.IncidentID

		if ids[inc.IncidentID] {
			return fmt.Errorf("incident id %s is used twice", inc.IncidentID)
		}
		ids[inc.IncidentID] = true

		labels := make(map[string]bool, len(inc.ChecklistItems))
		for _, item := range inc.ChecklistItems {
			if labels[item.Label] {
				return fmt.Errorf("incident %s has duplicate checklist label %q", inc.IncidentID, item.Label)
			}
			labels[item.Label] = true
		}

		if got := inc.DueDate.Sub(inc.CreatedAt.Time); got != model.DueWindow {
			return fmt.Errorf("incident %s due %s after creation, want %s", inc.IncidentID, got, model.DueWindow)
		}
	}
	return nil
}
