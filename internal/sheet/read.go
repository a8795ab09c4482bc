// Package sheet converts spreadsheet files into header/row tables for the
// importers and writes the delivery-note and incident exports.
package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nhle/order-incidents/internal/model"
)

// ErrUnsupportedFormat is returned for files that are neither XLSX nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// ErrEmptySheet is returned when a sheet has no header row.
var ErrEmptySheet = errors.New("sheet has no header row")

// ReadFile reads the first sheet of an .xlsx/.xlsm file or a .csv file.
func ReadFile(path string) (model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(f)
	case ".csv", ".txt":
		return ReadCSV(f)
	}
	return model.Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// ReadXLSX reads the first sheet of a workbook. Cells are read raw, so date
// cells arrive as Excel serial numbers.
func ReadXLSX(r io.Reader) (model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.Table{}, ErrEmptySheet
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Table{}, fmt.Errorf("unable to read sheet %s: %w", sheets[0], err)
	}
	return newTable(rows)
}

// ReadCSV reads comma- or semicolon-separated text. The delimiter is taken
// from the header line.
func ReadCSV(r io.Reader) (model.Table, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return newTable(rows)
}

// newTable splits off the header row and drops blank rows.
func newTable(rows [][]string) (model.Table, error) {
	if len(rows) == 0 {
		return model.Table{}, ErrEmptySheet
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	t := model.Table{Headers: headers}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
