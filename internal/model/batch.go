package model

import "time"

// ImportKind names the collection an import batch was merged into.
type ImportKind string

const (
	ImportOrders    ImportKind = "orders"
	ImportIncidents ImportKind = "incidents"
)

// ImportBatch records one spreadsheet import and its outcome.
type ImportBatch struct {
	ID         string     `json:"id" db:"id"`
	Kind       ImportKind `json:"kind" db:"kind"`
	Source     string     `json:"source" db:"source"`
	Imported   int        `json:"imported" db:"imported"`
	Duplicates int        `json:"duplicates" db:"duplicates"`
	Skipped    int        `json:"skipped" db:"skipped"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
