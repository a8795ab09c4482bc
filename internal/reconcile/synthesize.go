package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nhle/order-incidents/internal/model"
)

// SynthesisCounts reports what a synthesis pass changed.
type SynthesisCounts struct {
	Created int
	Updated int
}

// String renders the counts as a feedback line.
func (c SynthesisCounts) String() string {
	return fmt.Sprintf("%d incidents created, %d updated", c.Created, c.Updated)
}

// rawGroup holds the raw rows of one order in first-seen order.
type rawGroup struct {
	orderNumber string
	rows        []model.RawIncidentRow
}

// groupRawRows groups rows by order number, keeping the order in which
// each order number first appears.
func groupRawRows(raw []model.RawIncidentRow) []rawGroup {
	pos := make(map[string]int)
	var groups []rawGroup
	for _, row := range raw {
		i, ok := pos[row.OrderNumber]
		if !ok {
			i = len(groups)
			pos[row.OrderNumber] = i
			groups = append(groups, rawGroup{orderNumber: row.OrderNumber})
		}
		groups[i].rows = append(groups[i].rows, row)
	}
	return groups
}

// earliestTimestamp returns the earliest valid row timestamp, or fallback
// when no row carries one.
func earliestTimestamp(rows []model.RawIncidentRow, fallback time.Time) time.Time {
	var earliest time.Time
	for _, row := range rows {
		if row.Timestamp == nil || !row.Timestamp.Valid() {
			continue
		}
		if earliest.IsZero() || row.Timestamp.Before(earliest) {
			earliest = row.Timestamp.Time
		}
	}
	if earliest.IsZero() {
		return fallback
	}
	return earliest
}

// distinctLabels returns the trimmed issue labels of rows, deduplicated,
// in first-seen order.
func distinctLabels(rows []model.RawIncidentRow) []string {
	seen := make(map[string]bool, len(rows))
	var labels []string
	for _, row := range rows {
		label := strings.TrimSpace(row.IssueTypeProduct)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// linesByOrder groups order lines by order number.
func linesByOrder(orders []model.OrderLine) map[string][]model.OrderLine {
	m := make(map[string][]model.OrderLine)
	for _, line := range orders {
		m[line.OrderNumber] = append(m[line.OrderNumber], line)
	}
	return m
}

// joinDistinct comma-joins the distinct values in first-seen order.
func joinDistinct(values []string) string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return strings.Join(out, ", ")
}

// newIncident builds a Waiting incident for orderNumber, copying the order
// snapshot from lines (which may be empty).
func newIncident(
	env Env,
	orderNumber string,
	createdAt time.Time,
	lines []model.OrderLine,
	labels []string,
) model.Incident {
	inc := model.Incident{
		IncidentID:     env.newID(),
		OrderNumber:    orderNumber,
		CreatedAt:      model.NewTimestamp(createdAt),
		DueDate:        model.NewTimestamp(createdAt.Add(model.DueWindow)),
		Status:         model.StatusWaiting,
		OrderTotal:     decimal.Zero,
		ChecklistItems: make([]model.ChecklistItem, 0, len(labels)),
	}

	if len(lines) > 0 {
		products := make([]string, len(lines))
		sizes := make([]string, len(lines))
		total := decimal.Zero
		for i, line := range lines {
			products[i] = line.Product
			sizes[i] = line.Size
			total = total.Add(line.Price)
		}
		inc.OrderFound = true
		inc.Email = lines[0].Email
		inc.Club = lines[0].Club
		inc.ProductsSummary = joinDistinct(products)
		inc.SizesSummary = joinDistinct(sizes)
		inc.OrderTotal = total
	}

	for _, label := range labels {
		inc.ChecklistItems = append(inc.ChecklistItems, model.ChecklistItem{
			ID:    env.newID(),
			Label: label,
		})
	}
	return inc
}

// appendMissingLabels adds an unchecked item for every label inc does not
// already track. It reports whether anything was added.
func appendMissingLabels(env Env, inc *model.Incident, labels []string) bool {
	existing := make(map[string]bool, len(inc.ChecklistItems))
	for _, item := range inc.ChecklistItems {
		existing[item.Label] = true
	}

	added := false
	for _, label := range labels {
		if existing[label] {
			continue
		}
		inc.ChecklistItems = append(inc.ChecklistItems, model.ChecklistItem{
			ID:    env.newID(),
			Label: label,
		})
		existing[label] = true
		added = true
	}
	return added
}

// Synthesize regenerates incidents from the full raw row log. Orders that
// already have an incident only gain checklist items for labels they do not
// track yet; status, notes, timing and order snapshot are left alone.
// Orders without one get a new Waiting incident appended after the
// existing collection. Running it again on unchanged input changes nothing.
func Synthesize(
	env Env,
	raw []model.RawIncidentRow,
	orders []model.OrderLine,
	incidents []model.Incident,
) ([]model.Incident, SynthesisCounts) {
	var counts SynthesisCounts

	next := make([]model.Incident, len(incidents))
	for i, inc := range incidents {
		next[i] = inc.Clone()
	}
	idx := NewIncidentIndex(next)
	lines := linesByOrder(orders)
	now := env.now()

	for _, g := range groupRawRows(raw) {
		labels := distinctLabels(g.rows)

		if pos, ok := idx.Lookup(g.orderNumber); ok {
			if appendMissingLabels(env, &next[pos], labels) {
				counts.Updated++
			}
			continue
		}

		createdAt := earliestTimestamp(g.rows, now)
		inc := newIncident(env, g.orderNumber, createdAt, lines[g.orderNumber], labels)
		next = append(next, inc)
		// The group order number is unique here, so Add cannot fail.
		_ = idx.Add(g.orderNumber, len(next)-1)
		counts.Created++
	}

	return next, counts
}
