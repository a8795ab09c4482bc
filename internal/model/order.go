package model

import "github.com/shopspring/decimal"

// OrderLine is one product line within a customer order, as imported
// from an orders spreadsheet.
type OrderLine struct {
	// LineID is the derived identity key; unique across the collection.
	LineID string `json:"line_id"`

	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`

	// OrderDate is the zero Timestamp when the imported cell could not be
	// read as a date. OrderDateRaw keeps the cell text either way.
	OrderDate    Timestamp `json:"order_date"`
	OrderDateRaw string    `json:"order_date_raw,omitempty"`

	Club       string          `json:"club"`
	Product    string          `json:"product"`
	Size       string          `json:"size"`
	Price      decimal.Decimal `json:"price"`
	BandName   string          `json:"band_name"`
	BandNumber string          `json:"band_number"`

	// Checked is the delivery-note tick. It is the only field that
	// changes after import.
	Checked bool `json:"checked"`

	BatchID    string    `json:"batch_id"`
	ImportedAt Timestamp `json:"imported_at"`
}

// RawIncidentRow is one reported issue line from an incidents import,
// prior to aggregation into an Incident. Rows are never modified once stored.
type RawIncidentRow struct {
	OrderNumber      string `json:"order_number"`
	IssueTypeProduct string `json:"issue_type_product"`

	// RowHash is the derived identity key; unique across the collection.
	RowHash  string    `json:"row_hash"`
	LoadedAt Timestamp `json:"loaded_at"`

	// Timestamp is nil for current imports. It is kept for rows loaded by
	// earlier versions that read a timestamp column.
	Timestamp           *Timestamp `json:"timestamp"`
	TimestampRaw        string     `json:"timestamp_raw,omitempty"`
	TimestampParseOK    bool       `json:"timestamp_parse_ok"`
	TimestampParseError string     `json:"timestamp_parse_error"`
}

// Table is a parsed spreadsheet: a header row followed by data rows.
// Rows may be shorter than Headers; missing cells read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}
