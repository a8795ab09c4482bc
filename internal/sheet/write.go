package sheet

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/summary"
)

const (
	deliverySheet  = "Delivery note"
	incidentsSheet = "Incidents"
	bandsSheet     = "Bands"

	checkMark = "✓"
	dateFmt   = "2006-01-02"
)

var deliveryHeaders = []string{
	"Order", "Email", "Date", "Club", "Product", "Size", "Price", "Band Name", "Band Number", "Checked",
}

var incidentHeaders = []string{
	"Incident", "Order", "Status", "Created", "Due", "Overdue", "Email", "Club",
	"Products", "Sizes", "Total", "Checklist", "Done", "Manual", "Notes",
}

var bandHeaders = []string{"Band Name", "Band Number"}

// WriteDeliveryNote writes order lines as a delivery note with the current
// check marks.
func WriteDeliveryNote(w io.Writer, lines []model.OrderLine) error {
	f, err := newWorkbook(deliverySheet, deliveryHeaders)
	if err != nil {
		return err
	}
	defer f.Close()

	for i, l := range lines {
		date := l.OrderDateRaw
		if l.OrderDate.Valid() {
			date = l.OrderDate.Format(dateFmt)
		}
		check := ""
		if l.Checked {
			check = checkMark
		}
		err := setRow(f, deliverySheet, i+2, []interface{}{
			l.OrderNumber, l.Email, date, l.Club, l.Product, l.Size,
			l.Price.InexactFloat64(), l.BandName, l.BandNumber, check,
		})
		if err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteIncidents writes incidents with their checklist state and totals as
// of now.
func WriteIncidents(w io.Writer, incidents []model.Incident, now time.Time) error {
	f, err := newWorkbook(incidentsSheet, incidentHeaders)
	if err != nil {
		return err
	}
	defer f.Close()

	for i, inc := range incidents {
		overdue, manual := "", ""
		if inc.IsOverdue(now) {
			overdue = "yes"
		}
		if inc.ManualOrigin {
			manual = "yes"
		}
		err := setRow(f, incidentsSheet, i+2, []interface{}{
			inc.IncidentID, inc.OrderNumber, inc.Status.Label(),
			formatDate(inc.CreatedAt), formatDate(inc.DueDate), overdue,
			inc.Email, inc.Club, inc.ProductsSummary, inc.SizesSummary,
			inc.OrderTotal.InexactFloat64(), checklistText(inc.ChecklistItems),
			fmt.Sprintf("%d/%d", inc.DoneCount(), len(inc.ChecklistItems)),
			manual, strings.TrimSpace(inc.Notes),
		})
		if err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteBands writes one band name and number per row. Numbers stay text so
// leading zeros survive.
func WriteBands(w io.Writer, bands []summary.Band) error {
	f, err := newWorkbook(bandsSheet, bandHeaders)
	if err != nil {
		return err
	}
	defer f.Close()

	for i, b := range bands {
		if err := setRow(f, bandsSheet, i+2, []interface{}{b.Name, b.Number}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// SaveBands writes a band export to path.
func SaveBands(path string, bands []summary.Band) error {
	return saveTo(path, func(w io.Writer) error { return WriteBands(w, bands) })
}

// SaveDeliveryNote writes a delivery note to path.
func SaveDeliveryNote(path string, lines []model.OrderLine) error {
	return saveTo(path, func(w io.Writer) error { return WriteDeliveryNote(w, lines) })
}

// SaveIncidents writes an incident export to path.
func SaveIncidents(path string, incidents []model.Incident, now time.Time) error {
	return saveTo(path, func(w io.Writer) error { return WriteIncidents(w, incidents, now) })
}

func saveTo(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(out); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

// newWorkbook creates a workbook with one named sheet and a header row.
func newWorkbook(sheet string, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNo, err)
	}
	return nil
}

func formatDate(ts model.Timestamp) string {
	if !ts.Valid() {
		return ""
	}
	return ts.Format(dateFmt)
}

// checklistText renders items as "[x] label; [ ] label".
func checklistText(items []model.ChecklistItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		box := "[ ]"
		if item.Done {
			box = "[x]"
		}
		parts[i] = box + " " + item.Label
	}
	return strings.Join(parts, "; ")
}
