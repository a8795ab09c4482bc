package reconcile

import "github.com/nhle/order-incidents/internal/model"

// ImportRawIncidents merges a parsed incident sheet into the append-only
// raw row log. Duplicate detection uses RawRowKey; rows without an order
// number or issue label are skipped. Current imports carry no timestamp
// column, so Timestamp stays nil and the row is marked as parsed.
func ImportRawIncidents(
	env Env,
	existing []model.RawIncidentRow,
	table model.Table,
	mapping Mapping,
) ([]model.RawIncidentRow, ImportCounts, error) {
	var counts ImportCounts
	if err := mapping.Check(IncidentFields); err != nil {
		return existing, counts, err
	}

	seen := make(map[string]bool, len(existing))
	for _, row := range existing {
		seen[row.RowHash] = true
	}

	next := make([]model.RawIncidentRow, len(existing), len(existing)+len(table.Rows))
	copy(next, existing)

	r := newRowReader(table, mapping)
	loadedAt := model.NewTimestamp(env.now())

	for _, row := range table.Rows {
		orderNumber := r.trimmed(row, FieldOrderNumber)
		issue := r.trimmed(row, FieldIssueTypeProduct)
		if orderNumber == "" || issue == "" {
			counts.Skipped++
			continue
		}

		hash := RawRowKey(orderNumber, issue)
		if seen[hash] {
			counts.Duplicates++
			continue
		}

		next = append(next, model.RawIncidentRow{
			OrderNumber:      orderNumber,
			IssueTypeProduct: issue,
			RowHash:          hash,
			LoadedAt:         loadedAt,
			Timestamp:        nil,
			TimestampParseOK: true,
		})
		seen[hash] = true
		counts.Imported++
	}

	return next, counts, nil
}
