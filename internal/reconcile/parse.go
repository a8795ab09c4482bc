package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nhle/order-incidents/internal/model"
)

// dateLayouts are tried in order. Slash and dash forms are always
// day-first, two-digit years included.
var dateLayouts = []string{
	model.TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02/01/06 15:04",
	"02/01/06",
	"2/1/06",
	"02-01-06",
}

// maxExcelSerial is 9999-12-31 as an Excel serial day number.
const maxExcelSerial = 2958465

// parseDate reads a date cell. Spreadsheet serial day numbers are converted
// too. Unreadable input yields the zero (invalid) Timestamp.
func parseDate(raw string) model.Timestamp {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Timestamp{}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 || serial > maxExcelSerial {
			return model.Timestamp{}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return model.Timestamp{}
		}
		return model.NewTimestamp(t)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.NewTimestamp(t)
		}
	}
	return model.Timestamp{}
}

// parsePrice reads a price cell, tolerating currency symbols and a decimal
// comma. Empty, malformed or negative input yields zero.
func parsePrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("€", "", "$", "", "£", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return decimal.Zero
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// Thousands separator plus decimal point; whichever comes last
		// is the decimal mark.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
