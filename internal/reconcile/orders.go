package reconcile

import (
	"fmt"

	"github.com/nhle/order-incidents/internal/model"
)

// ImportCounts summarizes one ingestion call for user feedback.
type ImportCounts struct {
	// Imported is the number of new entities appended.
	Imported int
	// Duplicates is the number of rows whose key already existed.
	Duplicates int
	// Skipped is the number of rows missing a required identity field.
	Skipped int
}

// String renders the counts as a feedback line.
func (c ImportCounts) String() string {
	return fmt.Sprintf("%d new rows imported, %d duplicates skipped", c.Imported, c.Duplicates)
}

// ImportOrders merges a parsed order sheet into existing. Rows whose line key
// is already present (in existing or earlier in the same sheet) are counted
// as duplicates; rows without an order number or product are skipped.
// Every new line shares one batch id. The import is refused with a
// *MappingError before any row is read if a field is unmapped.
func ImportOrders(
	env Env,
	existing []model.OrderLine,
	table model.Table,
	mapping Mapping,
) ([]model.OrderLine, ImportCounts, error) {
	var counts ImportCounts
	if err := mapping.Check(OrderFields); err != nil {
		return existing, counts, err
	}

	seen := make(map[string]bool, len(existing))
	for _, line := range existing {
		seen[line.LineID] = true
	}

	next := make([]model.OrderLine, len(existing), len(existing)+len(table.Rows))
	copy(next, existing)

	r := newRowReader(table, mapping)
	batchID := "batch-" + env.newID()
	importedAt := model.NewTimestamp(env.now())

	for _, row := range table.Rows {
		orderNumber := r.trimmed(row, FieldOrderNumber)
		product := r.trimmed(row, FieldProduct)
		if orderNumber == "" || product == "" {
			counts.Skipped++
			continue
		}

		size := r.trimmed(row, FieldSize)
		bandName := r.trimmed(row, FieldBandName)
		bandNumber := r.trimmed(row, FieldBandNumber)

		lineID := OrderLineKey(orderNumber, product, size, bandName, bandNumber)
		if seen[lineID] {
			counts.Duplicates++
			continue
		}

		dateRaw := r.cell(row, FieldOrderDate)
		next = append(next, model.OrderLine{
			LineID:       lineID,
			OrderNumber:  orderNumber,
			Email:        r.cell(row, FieldEmail),
			OrderDate:    parseDate(dateRaw),
			OrderDateRaw: dateRaw,
			Club:         r.cell(row, FieldClub),
			Product:      product,
			Size:         size,
			Price:        parsePrice(r.cell(row, FieldPrice)),
			BandName:     bandName,
			BandNumber:   bandNumber,
			Checked:      false,
			BatchID:      batchID,
			ImportedAt:   importedAt,
		})
		seen[lineID] = true
		counts.Imported++
	}

	return next, counts, nil
}
