package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/order-incidents/internal/model"
)

// Manual composition errors.
var (
	ErrUnknownIssueType = errors.New("unknown manual issue type")
	ErrEmptyDetail      = errors.New("manual report detail is empty")
	ErrEmptyOrder       = errors.New("manual report has no order number")
	ErrLineNotFound     = errors.New("order line not found")
)

// noteTimeLayout formats the timestamp prefix of a manual note line.
const noteTimeLayout = "2006-01-02 15:04:05"

// ManualReport is a user-entered issue against a whole order or, when
// LineID is set, against one of its lines.
type ManualReport struct {
	OrderNumber string
	LineID      string
	Type        model.ManualIssueType
	Detail      string
}

// ComposeResult says how a manual report was applied.
type ComposeResult struct {
	IncidentID string
	Created    bool
	// LabelAdded is false when the incident already tracked the label.
	LabelAdded bool
	Label      string
}

// manualEntry derives the checklist label and note line for a report.
func manualEntry(report ManualReport, line *model.OrderLine, stamp string) (label, note string) {
	if line == nil {
		label = fmt.Sprintf("MANUAL - Full order - %s", report.Type)
		note = fmt.Sprintf("[%s] MANUAL (Order) | Type: %s | Detail: %s\n",
			stamp, report.Type, report.Detail)
		return label, note
	}
	label = fmt.Sprintf("MANUAL - %s (%s) - %s", line.Product, line.Size, report.Type)
	note = fmt.Sprintf("[%s] MANUAL (Product: %s | Size: %s) | Type: %s | Detail: %s\n",
		stamp, line.Product, line.Size, report.Type, report.Detail)
	return label, note
}

// ComposeManual applies a manual report. If the order already has an
// incident the label is appended unless present and the note line is always
// appended to the notes. Otherwise a new incident is created from the
// order's lines with ManualOrigin set, one checklist item and the note.
func ComposeManual(
	env Env,
	incidents []model.Incident,
	orders []model.OrderLine,
	report ManualReport,
) ([]model.Incident, ComposeResult, error) {
	var res ComposeResult

	report.OrderNumber = strings.TrimSpace(report.OrderNumber)
	report.Detail = strings.TrimSpace(report.Detail)
	if report.OrderNumber == "" {
		return incidents, res, ErrEmptyOrder
	}
	if !report.Type.IsValid() {
		return incidents, res, fmt.Errorf("%w: %q", ErrUnknownIssueType, report.Type)
	}
	if report.Detail == "" {
		return incidents, res, ErrEmptyDetail
	}

	orderLines := linesByOrder(orders)[report.OrderNumber]

	var target *model.OrderLine
	if report.LineID != "" {
		for i := range orderLines {
			if orderLines[i].LineID == report.LineID {
				target = &orderLines[i]
				break
			}
		}
		if target == nil {
			return incidents, res, fmt.Errorf("%w: %s in order %s", ErrLineNotFound, report.LineID, report.OrderNumber)
		}
	}

	now := env.now()
	label, note := manualEntry(report, target, now.Format(noteTimeLayout))
	res.Label = label

	next := make([]model.Incident, len(incidents))
	copy(next, incidents)

	if pos, ok := NewIncidentIndex(next).Lookup(report.OrderNumber); ok {
		inc := next[pos].Clone()
		res.LabelAdded = appendMissingLabels(env, &inc, []string{label})
		inc.Notes += note
		next[pos] = inc
		res.IncidentID = inc.IncidentID
		return next, res, nil
	}

	inc := newIncident(env, report.OrderNumber, now, orderLines, []string{label})
	inc.ManualOrigin = true
	inc.Notes = note
	next = append(next, inc)

	res.IncidentID = inc.IncidentID
	res.Created = true
	res.LabelAdded = true
	return next, res, nil
}
