package reconcile

import (
	"errors"
	"testing"

	"github.com/nhle/order-incidents/internal/model"
)

func TestSuggestMapping(t *testing.T) {
	headers := []string{"Marca temporal", "Número de pedido", "Tipo de incidencia + producto"}
	aliases := map[string][]string{
		FieldOrderNumber:      {"pedido", "order"},
		FieldIssueTypeProduct: {"incidencia", "issue"},
	}

	got := SuggestMapping(headers, IncidentFields, aliases)

	if got[FieldOrderNumber] != "Número de pedido" {
		t.Errorf("order_number = %q, want %q", got[FieldOrderNumber], "Número de pedido")
	}
	if got[FieldIssueTypeProduct] != "Tipo de incidencia + producto" {
		t.Errorf("issue_type_product = %q, want %q", got[FieldIssueTypeProduct], "Tipo de incidencia + producto")
	}
}

func TestSuggestMapping_FieldNameFallback(t *testing.T) {
	headers := []string{"Order Number", "E-mail", "Band Name", "Price"}

	got := SuggestMapping(headers, OrderFields, nil)

	if got[FieldOrderNumber] != "Order Number" {
		t.Errorf("order_number = %q, want %q", got[FieldOrderNumber], "Order Number")
	}
	if got[FieldBandName] != "Band Name" {
		t.Errorf("band_name = %q, want %q", got[FieldBandName], "Band Name")
	}
	if got[FieldPrice] != "Price" {
		t.Errorf("price = %q, want %q", got[FieldPrice], "Price")
	}
	if _, ok := got[FieldEmail]; ok {
		t.Errorf("email should be unmapped, got %q", got[FieldEmail])
	}

	missing := got.Missing(OrderFields)
	if len(missing) != 6 {
		t.Errorf("missing = %v, want 6 fields", missing)
	}
}

func TestMappingCheck(t *testing.T) {
	m := Mapping{FieldOrderNumber: "Order", FieldIssueTypeProduct: "  "}

	err := m.Check(IncidentFields)
	if err == nil {
		t.Fatal("expected error for blank mapping")
	}
	if !errors.Is(err, ErrMappingIncomplete) {
		t.Errorf("expected ErrMappingIncomplete, got %v", err)
	}

	var mErr *MappingError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *MappingError, got %T", err)
	}
	if len(mErr.Missing) != 1 || mErr.Missing[0] != FieldIssueTypeProduct {
		t.Errorf("missing = %v, want [%s]", mErr.Missing, FieldIssueTypeProduct)
	}

	if err := incidentMapping().Check(IncidentFields); err != nil {
		t.Errorf("complete mapping rejected: %v", err)
	}
}

func TestRowReader_ShortRowsAndUnknownHeaders(t *testing.T) {
	table := model.Table{Headers: []string{"A", "B", "C"}}
	r := newRowReader(table, Mapping{"a": "A", "c": "C", "z": "Missing"})

	row := []string{" x "}
	if got := r.trimmed(row, "a"); got != "x" {
		t.Errorf("a = %q, want %q", got, "x")
	}
	if got := r.cell(row, "c"); got != "" {
		t.Errorf("c beyond row end = %q, want empty", got)
	}
	if got := r.cell(row, "z"); got != "" {
		t.Errorf("unknown header = %q, want empty", got)
	}
}
