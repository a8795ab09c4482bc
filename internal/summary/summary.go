// Package summary derives dashboard figures from the order and incident
// collections. Every function is read-only.
package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nhle/order-incidents/internal/model"
)

// NoClub labels incidents whose order had no club.
const NoClub = "No club"

// Filter restricts the figures to a date range and a club. Zero values mean
// unbounded. Entities with an invalid date always pass the date check.
type Filter struct {
	From time.Time
	// To is inclusive of the whole day.
	To   time.Time
	Club string
	// Product and Size apply to order lines only. Size matches SizeKey, so
	// NoSize selects lines without a size.
	Product string
	Size    string
}

func (f Filter) matches(ts model.Timestamp, club string) bool {
	if f.Club != "" && club != f.Club {
		return false
	}
	if !ts.Valid() {
		return true
	}
	if !f.From.IsZero() && ts.Before(startOfDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && !ts.Before(startOfDay(f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Orders returns the lines that pass the filter.
func (f Filter) Orders(lines []model.OrderLine) []model.OrderLine {
	var out []model.OrderLine
	for _, l := range lines {
		if !f.matches(l.OrderDate, l.Club) {
			continue
		}
		if f.Product != "" && l.Product != f.Product {
			continue
		}
		if f.Size != "" && SizeKey(l.Size) != f.Size {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Incidents returns the incidents created within the filter.
func (f Filter) Incidents(incidents []model.Incident) []model.Incident {
	var out []model.Incident
	for _, inc := range incidents {
		if f.matches(inc.CreatedAt, inc.Club) {
			out = append(out, inc)
		}
	}
	return out
}

// OrderKPIs are the headline order figures.
type OrderKPIs struct {
	Orders        int
	Lines         int
	Revenue       decimal.Decimal
	AverageTicket decimal.Decimal
}

// OrderStats computes order counts, revenue and the average ticket
// (revenue per distinct order).
func OrderStats(lines []model.OrderLine) OrderKPIs {
	k := OrderKPIs{Lines: len(lines), Revenue: decimal.Zero, AverageTicket: decimal.Zero}
	orders := make(map[string]bool)
	for _, l := range lines {
		k.Revenue = k.Revenue.Add(l.Price)
		orders[l.OrderNumber] = true
	}
	k.Orders = len(orders)
	if k.Orders > 0 {
		k.AverageTicket = k.Revenue.Div(decimal.NewFromInt(int64(k.Orders))).Round(2)
	}
	return k
}

// IncidentKPIs are the headline incident figures. ResolutionRate is the
// percentage of Done among Done and active incidents.
type IncidentKPIs struct {
	Total          int
	Open           int
	Overdue        int
	Done           int
	ResolutionRate float64
}

// IncidentStats computes incident counts as of now.
func IncidentStats(incidents []model.Incident, now time.Time) IncidentKPIs {
	k := IncidentKPIs{Total: len(incidents)}
	for _, inc := range incidents {
		switch inc.Status {
		case model.StatusWaiting, model.StatusFixing:
			k.Open++
			if inc.IsOverdue(now) {
				k.Overdue++
			}
		case model.StatusDone:
			k.Done++
		}
	}
	if resolved := k.Done + k.Open; resolved > 0 {
		k.ResolutionRate = float64(k.Done) / float64(resolved) * 100
	}
	return k
}

// Count is a labelled tally.
type Count struct {
	Key   string
	Count int
}

// IssueType returns the part of a checklist label after its last " - ",
// so "MANUAL - Jersey (M) - Color" counts as "Color".
func IssueType(label string) string {
	if i := strings.LastIndex(label, " - "); i >= 0 && i+3 < len(label) {
		return label[i+3:]
	}
	return label
}

// TopIssueTypes tallies checklist items by issue type, most frequent first.
func TopIssueTypes(incidents []model.Incident, n int) []Count {
	var keys []string
	for _, inc := range incidents {
		for _, item := range inc.ChecklistItems {
			keys = append(keys, IssueType(item.Label))
		}
	}
	return top(keys, n)
}

// TopProducts tallies order lines by product, most frequent first.
func TopProducts(lines []model.OrderLine, n int) []Count {
	keys := make([]string, len(lines))
	for i, l := range lines {
		keys[i] = l.Product
	}
	return top(keys, n)
}

// top counts keys and returns the n largest tallies. Ties keep first-seen
// order. n <= 0 returns all.
func top(keys []string, n int) []Count {
	pos := make(map[string]int)
	var counts []Count
	for _, k := range keys {
		if i, ok := pos[k]; ok {
			counts[i].Count++
			continue
		}
		pos[k] = len(counts)
		counts = append(counts, Count{Key: k, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// ClubRevenue is the order revenue of one club.
type ClubRevenue struct {
	Club    string
	Revenue decimal.Decimal
}

// TopClubsByRevenue sums line prices per club, highest first. Lines without
// a club are left out.
func TopClubsByRevenue(lines []model.OrderLine, n int) []ClubRevenue {
	pos := make(map[string]int)
	var out []ClubRevenue
	for _, l := range lines {
		if l.Club == "" {
			continue
		}
		i, ok := pos[l.Club]
		if !ok {
			i = len(out)
			pos[l.Club] = i
			out = append(out, ClubRevenue{Club: l.Club, Revenue: decimal.Zero})
		}
		out[i].Revenue = out[i].Revenue.Add(l.Price)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue.GreaterThan(out[j].Revenue) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ClubStats are the incident counts of one club.
type ClubStats struct {
	Club    string
	Total   int
	Open    int
	Overdue int
	Done    int
}

// ByClub groups incidents by club, largest total first.
func ByClub(incidents []model.Incident, now time.Time) []ClubStats {
	pos := make(map[string]int)
	var out []ClubStats
	for _, inc := range incidents {
		club := inc.Club
		if club == "" {
			club = NoClub
		}
		i, ok := pos[club]
		if !ok {
			i = len(out)
			pos[club] = i
			out = append(out, ClubStats{Club: club})
		}
		s := &out[i]
		s.Total++
		switch inc.Status {
		case model.StatusWaiting, model.StatusFixing:
			s.Open++
			if inc.IsOverdue(now) {
				s.Overdue++
			}
		case model.StatusDone:
			s.Done++
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// Recent returns the n most recently created incidents, newest first.
func Recent(incidents []model.Incident, n int) []model.Incident {
	out := append([]model.Incident(nil), incidents...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
