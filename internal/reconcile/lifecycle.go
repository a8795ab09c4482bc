package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/order-incidents/internal/model"
)

// Lifecycle errors.
var (
	ErrIncidentNotFound      = errors.New("incident not found")
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	ErrIllegalTransition     = errors.New("illegal status transition")
)

// findIncident returns the position of the incident with id.
func findIncident(incidents []model.Incident, id string) (int, error) {
	for i, inc := range incidents {
		if inc.IncidentID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrIncidentNotFound, id)
}

// updateIncident copies incidents and applies fn to a clone of the one
// with id. The input slice is never modified.
func updateIncident(
	incidents []model.Incident,
	id string,
	fn func(inc *model.Incident) error,
) ([]model.Incident, error) {
	pos, err := findIncident(incidents, id)
	if err != nil {
		return incidents, err
	}

	inc := incidents[pos].Clone()
	if err := fn(&inc); err != nil {
		return incidents, err
	}

	next := make([]model.Incident, len(incidents))
	copy(next, incidents)
	next[pos] = inc
	return next, nil
}

// MoveIncident is a board drag-and-drop: it sets an active incident
// directly to another active column. No ordering is enforced between
// Waiting, Fixing and Done. Archived incidents cannot be dragged.
func MoveIncident(incidents []model.Incident, id string, to model.IncidentStatus) ([]model.Incident, error) {
	return updateIncident(incidents, id, func(inc *model.Incident) error {
		if !to.IsActive() {
			return fmt.Errorf("%w: cannot drop onto %q", ErrIllegalTransition, to)
		}
		if inc.Status == model.StatusArchived {
			return fmt.Errorf("%w: incident %s is archived", ErrIllegalTransition, inc.IncidentID)
		}
		inc.Status = to
		return nil
	})
}

// ArchiveIncident moves an active incident to Archived.
func ArchiveIncident(incidents []model.Incident, id string) ([]model.Incident, error) {
	return updateIncident(incidents, id, func(inc *model.Incident) error {
		if inc.Status == model.StatusArchived {
			return fmt.Errorf("%w: incident %s is already archived", ErrIllegalTransition, inc.IncidentID)
		}
		inc.Status = model.StatusArchived
		return nil
	})
}

// RestoreIncident returns an archived incident to Waiting. The status it
// had before archiving is not kept.
func RestoreIncident(incidents []model.Incident, id string) ([]model.Incident, error) {
	return updateIncident(incidents, id, func(inc *model.Incident) error {
		if inc.Status != model.StatusArchived {
			return fmt.Errorf("%w: incident %s is not archived", ErrIllegalTransition, inc.IncidentID)
		}
		inc.Status = model.StatusWaiting
		return nil
	})
}

// ToggleChecklistItem flips the done flag of one checklist item.
func ToggleChecklistItem(incidents []model.Incident, incidentID, itemID string) ([]model.Incident, error) {
	return updateIncident(incidents, incidentID, func(inc *model.Incident) error {
		for i := range inc.ChecklistItems {
			if inc.ChecklistItems[i].ID == itemID {
				inc.ChecklistItems[i].Done = !inc.ChecklistItems[i].Done
				return nil
			}
		}
		return fmt.Errorf("%w: %s on incident %s", ErrChecklistItemNotFound, itemID, incidentID)
	})
}

// ReplaceNotes overwrites the notes of an incident.
func ReplaceNotes(incidents []model.Incident, id, notes string) ([]model.Incident, error) {
	return updateIncident(incidents, id, func(inc *model.Incident) error {
		inc.Notes = notes
		return nil
	})
}

// ToggleOrderLineChecked flips the delivery-note tick of one order line.
func ToggleOrderLineChecked(orders []model.OrderLine, lineID string) ([]model.OrderLine, error) {
	for i, line := range orders {
		if line.LineID != lineID {
			continue
		}
		next := make([]model.OrderLine, len(orders))
		copy(next, orders)
		next[i].Checked = !line.Checked
		return next, nil
	}
	return orders, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// ErrAmbiguousRef is returned when a short reference matches more than one
// incident.
var ErrAmbiguousRef = errors.New("ambiguous incident reference")

// ResolveIncident finds an incident by exact id, by order number, or by a
// unique id prefix, in that order of precedence.
func ResolveIncident(incidents []model.Incident, ref string) (model.Incident, error) {
	if ref == "" {
		return model.Incident{}, fmt.Errorf("%w: empty reference", ErrIncidentNotFound)
	}
	for _, inc := range incidents {
		if inc.IncidentID == ref {
			return inc, nil
		}
	}
	if pos, ok := NewIncidentIndex(incidents).Lookup(ref); ok {
		return incidents[pos], nil
	}

	var match *model.Incident
	for i := range incidents {
		if !strings.HasPrefix(incidents[i].IncidentID, ref) {
			continue
		}
		if match != nil {
			return model.Incident{}, fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
		}
		match = &incidents[i]
	}
	if match == nil {
		return model.Incident{}, fmt.Errorf("%w: %s", ErrIncidentNotFound, ref)
	}
	return *match, nil
}
