package summary

import (
	"time"

	"github.com/nhle/order-incidents/internal/model"
)

// CalendarEntry places one incident on a day: created that day, due that
// day, or both.
type CalendarEntry struct {
	IncidentID  string               `json:"incident_id"`
	OrderNumber string               `json:"order_number"`
	Status      model.IncidentStatus `json:"status"`
	Created     bool                 `json:"created"`
	Due         bool                 `json:"due"`
	Overdue     bool                 `json:"overdue"`
}

// CalendarDay is one day of the week view.
type CalendarDay struct {
	Date    time.Time       `json:"date"`
	Entries []CalendarEntry `json:"entries"`
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

// Week lays out the Monday-to-Sunday week containing day. Days are compared
// in day's location. Incidents with an invalid date do not appear on that
// date. Overdue is judged as of now.
func Week(incidents []model.Incident, day, now time.Time) []CalendarDay {
	loc := day.Location()
	start := WeekStart(day)

	days := make([]CalendarDay, 7)
	for i := range days {
		days[i].Date = start.AddDate(0, 0, i)
	}

	for _, inc := range incidents {
		created := dayIndex(inc.CreatedAt, start, loc)
		due := dayIndex(inc.DueDate, start, loc)
		for i := range days {
			if created != i && due != i {
				continue
			}
			days[i].Entries = append(days[i].Entries, CalendarEntry{
				IncidentID:  inc.IncidentID,
				OrderNumber: inc.OrderNumber,
				Status:      inc.Status,
				Created:     created == i,
				Due:         due == i,
				Overdue:     due == i && inc.IsOverdue(now),
			})
		}
	}
	return days
}

// dayIndex is the position of ts in the week starting at start, or -1.
func dayIndex(ts model.Timestamp, start time.Time, loc *time.Location) int {
	if !ts.Valid() {
		return -1
	}
	d := startOfDay(ts.In(loc))
	for i := 0; i < 7; i++ {
		if d.Equal(start.AddDate(0, 0, i)) {
			return i
		}
	}
	return -1
}
