package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncidentStatus is the lifecycle state of an Incident.
type IncidentStatus string

// Incident status constants. The first three are the active board columns.
const (
	StatusWaiting  IncidentStatus = "waiting"
	StatusFixing   IncidentStatus = "fixing"
	StatusDone     IncidentStatus = "done"
	StatusArchived IncidentStatus = "archived"
)

// ActiveStatuses lists the board columns in display order.
var ActiveStatuses = []IncidentStatus{StatusWaiting, StatusFixing, StatusDone}

// IsValid reports whether s is a known status.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case StatusWaiting, StatusFixing, StatusDone, StatusArchived:
		return true
	}
	return false
}

// IsActive reports whether s is one of the three board columns.
func (s IncidentStatus) IsActive() bool {
	return s == StatusWaiting || s == StatusFixing || s == StatusDone
}

// Label returns the human-readable column title.
func (s IncidentStatus) Label() string {
	switch s {
	case StatusWaiting:
		return "Waiting for fix"
	case StatusFixing:
		return "Fixing"
	case StatusDone:
		return "Done"
	case StatusArchived:
		return "Archived"
	}
	return string(s)
}

// DueWindow is the fixed time allowed to resolve an incident.
const DueWindow = 7 * 24 * time.Hour

// ChecklistItem is one distinct issue type tracked on an Incident.
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Incident aggregates every known issue for one order.
type Incident struct {
	IncidentID  string `json:"incident_id"`
	OrderNumber string `json:"order_number"`

	CreatedAt Timestamp `json:"created_at"`
	// DueDate is CreatedAt + DueWindow, fixed at creation.
	DueDate Timestamp `json:"due_date"`

	Status IncidentStatus `json:"status"`

	// OrderFound is true when at least one order line matched at creation.
	OrderFound      bool            `json:"order_found"`
	Email           string          `json:"email"`
	Club            string          `json:"club"`
	ProductsSummary string          `json:"products_summary"`
	SizesSummary    string          `json:"sizes_summary"`
	OrderTotal      decimal.Decimal `json:"order_total"`

	ChecklistItems []ChecklistItem `json:"checklist_items"`
	ManualOrigin   bool            `json:"manual_origin"`
	Notes          string          `json:"notes"`
}

// IsOverdue reports whether the incident is past due and still unresolved.
func (i Incident) IsOverdue(now time.Time) bool {
	return i.DueDate.Valid() && i.DueDate.Before(now) &&
		i.Status != StatusDone && i.Status != StatusArchived
}

// HasLabel reports whether a checklist item with label exists.
func (i Incident) HasLabel(label string) bool {
	for _, item := range i.ChecklistItems {
		if item.Label == label {
			return true
		}
	}
	return false
}

// DoneCount returns how many checklist items are ticked.
func (i Incident) DoneCount() int {
	n := 0
	for _, item := range i.ChecklistItems {
		if item.Done {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, so the checklist can be modified without
// touching the original.
func (i Incident) Clone() Incident {
	c := i
	c.ChecklistItems = append([]ChecklistItem(nil), i.ChecklistItems...)
	return c
}
