package summary

import (
	"testing"
	"time"

	"github.com/nhle/order-incidents/internal/model"
)

func TestWeekStart(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, day := range []int{4, 6, 10} {
		in := time.Date(2024, 3, day, 15, 30, 0, 0, time.UTC)
		if got := WeekStart(in); !got.Equal(monday) {
			t.Errorf("WeekStart(%s) = %s, want %s", in.Weekday(), got, monday)
		}
	}
}

func TestWeek(t *testing.T) {
	// now is Wednesday 2024-03-20; the week shown is 2024-03-11 to 2024-03-17.
	day := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	incidents := []model.Incident{
		incident("A", "", model.StatusWaiting, 11), // created Mon, due next Mon
		incident("B", "", model.StatusFixing, 5),   // due Tue, overdue
		incident("C", "", model.StatusDone, 6),     // due Wed, done
		incident("D", "", model.StatusWaiting, 20), // other week
		{IncidentID: "inc-E", OrderNumber: "E"},    // no dates
	}

	week := Week(incidents, day, now)
	if len(week) != 7 {
		t.Fatalf("len(week) = %d, want 7", len(week))
	}
	if !week[0].Date.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first day = %s", week[0].Date)
	}

	mon := week[0].Entries
	if len(mon) != 1 || mon[0].OrderNumber != "A" || !mon[0].Created || mon[0].Due {
		t.Errorf("monday = %+v", mon)
	}

	tue := week[1].Entries
	if len(tue) != 1 || tue[0].OrderNumber != "B" || !tue[0].Due || !tue[0].Overdue {
		t.Errorf("tuesday = %+v", tue)
	}

	wed := week[2].Entries
	if len(wed) != 1 || wed[0].OrderNumber != "C" || wed[0].Overdue {
		t.Errorf("wednesday = %+v", wed)
	}

	for _, d := range week[3:] {
		if len(d.Entries) != 0 {
			t.Errorf("%s = %+v, want empty", d.Date.Format("Mon"), d.Entries)
		}
	}
}

func TestWeek_SameDayCreatedAndDue(t *testing.T) {
	created := model.NewTimestamp(time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC))
	inc := model.Incident{
		IncidentID:  "inc-A",
		OrderNumber: "A",
		Status:      model.StatusWaiting,
		CreatedAt:   created,
		DueDate:     model.NewTimestamp(created.Add(2 * time.Hour)),
	}

	week := Week([]model.Incident{inc}, created.Time, now)
	e := week[1].Entries
	if len(e) != 1 || !e[0].Created || !e[0].Due || !e[0].Overdue {
		t.Errorf("tuesday = %+v, want one created, due and overdue entry", e)
	}
}
