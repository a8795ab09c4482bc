package reconcile

import (
	"fmt"
	"time"

	"github.com/nhle/order-incidents/internal/model"
)

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// testEnv returns an Env with a fixed clock and sequential ids.
func testEnv() Env {
	n := 0
	return Env{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
	}
}

var orderHeaders = []string{
	"Order", "Email", "Date", "Club", "Product", "Size", "Price", "Band Name", "Band Number",
}

func orderMapping() Mapping {
	return Mapping{
		FieldOrderNumber: "Order",
		FieldEmail:       "Email",
		FieldOrderDate:   "Date",
		FieldClub:        "Club",
		FieldProduct:     "Product",
		FieldSize:        "Size",
		FieldPrice:       "Price",
		FieldBandName:    "Band Name",
		FieldBandNumber:  "Band Number",
	}
}

func orderTable(rows ...[]string) model.Table {
	return model.Table{Headers: orderHeaders, Rows: rows}
}

var incidentHeaders = []string{"Order number", "Issue"}

func incidentMapping() Mapping {
	return Mapping{
		FieldOrderNumber:      "Order number",
		FieldIssueTypeProduct: "Issue",
	}
}

func incidentTable(rows ...[]string) model.Table {
	return model.Table{Headers: incidentHeaders, Rows: rows}
}

// mustImportOrders imports rows into an empty collection.
func mustImportOrders(env Env, rows ...[]string) []model.OrderLine {
	lines, _, err := ImportOrders(env, nil, orderTable(rows...), orderMapping())
	if err != nil {
		panic(err)
	}
	return lines
}

// mustImportRaw imports rows into existing.
func mustImportRaw(env Env, existing []model.RawIncidentRow, rows ...[]string) []model.RawIncidentRow {
	raw, _, err := ImportRawIncidents(env, existing, incidentTable(rows...), incidentMapping())
	if err != nil {
		panic(err)
	}
	return raw
}

func labelsOf(inc model.Incident) []string {
	labels := make([]string, len(inc.ChecklistItems))
	for i, item := range inc.ChecklistItems {
		labels[i] = item.Label
	}
	return labels
}
