package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/order-incidents/internal/model"
)

// Order import field names.
const (
	FieldOrderNumber = "order_number"
	FieldEmail       = "email"
	FieldOrderDate   = "order_date"
	FieldClub        = "club"
	FieldProduct     = "product"
	FieldSize        = "size"
	FieldPrice       = "price"
	FieldBandName    = "band_name"
	FieldBandNumber  = "band_number"
)

// Incident import field names.
const (
	FieldIssueTypeProduct = "issue_type_product"
)

// OrderFields lists every column an order import must map.
var OrderFields = []string{
	FieldOrderNumber, FieldEmail, FieldOrderDate, FieldClub, FieldProduct,
	FieldSize, FieldPrice, FieldBandName, FieldBandNumber,
}

// IncidentFields lists every column an incident import must map.
var IncidentFields = []string{FieldOrderNumber, FieldIssueTypeProduct}

// ErrMappingIncomplete is returned (wrapped in a *MappingError) when an
// import is attempted before every required field has a column.
var ErrMappingIncomplete = errors.New("column mapping incomplete")

// MappingError lists the required fields that have no column assigned.
type MappingError struct {
	Missing []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map every required column before importing (missing: %s)",
		strings.Join(e.Missing, ", "))
}

func (e *MappingError) Unwrap() error { return ErrMappingIncomplete }

// Mapping assigns a spreadsheet header to each field name.
type Mapping map[string]string

// Missing returns the required fields that are unmapped, in order.
func (m Mapping) Missing(required []string) []string {
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(m[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Check returns a *MappingError when any required field is unmapped.
func (m Mapping) Check(required []string) error {
	if missing := m.Missing(required); len(missing) > 0 {
		return &MappingError{Missing: missing}
	}
	return nil
}

// normalizeHeader lower-cases s and drops spaces and underscores so
// "Order Number" and "order_number" compare equal.
func normalizeHeader(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}

// SuggestMapping proposes a column for each field by matching header names.
// A header matches when its normalized form contains one of the field's
// aliases (or the field name itself when no aliases are given). The first
// matching header wins; fields with no match are left out.
func SuggestMapping(headers []string, fields []string, aliases map[string][]string) Mapping {
	m := make(Mapping)
	for _, field := range fields {
		terms := aliases[field]
		if len(terms) == 0 {
			terms = []string{field}
		}
	search:
		for _, h := range headers {
			nh := normalizeHeader(h)
			for _, term := range terms {
				if t := normalizeHeader(term); t != "" && strings.Contains(nh, t) {
					m[field] = h
					break search
				}
			}
		}
	}
	return m
}

// rowReader resolves mapped fields against one table's header row.
type rowReader struct {
	index map[string]int
}

func newRowReader(table model.Table, m Mapping) rowReader {
	pos := make(map[string]int, len(table.Headers))
	for i, h := range table.Headers {
		if _, seen := pos[h]; !seen {
			pos[h] = i
		}
	}

	index := make(map[string]int, len(m))
	for field, header := range m {
		if i, ok := pos[header]; ok {
			index[field] = i
		}
	}
	return rowReader{index: index}
}

// cell returns the raw value for field in row, or "" when the column is
// unmapped, absent from the headers, or beyond the end of a short row.
func (r rowReader) cell(row []string, field string) string {
	i, ok := r.index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// trimmed is cell with surrounding whitespace removed.
func (r rowReader) trimmed(row []string, field string) string {
	return strings.TrimSpace(r.cell(row, field))
}
