package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
)

func openTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	a, err := Open(context.Background(), Options{
		ConfigPath:  filepath.Join(dir, "missing.yaml"),
		StoragePath: filepath.Join(dir, "data", "incidents.db"),
		LogOutput:   io.Discard,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestOpen_Defaults(t *testing.T) {
	a := openTestApp(t)

	if a.Config.Log.Level != "info" {
		t.Errorf("log level = %q, want info", a.Config.Log.Level)
	}
	if got := a.Ledger.Snapshot(); len(got.Orders) != 0 || len(got.Incidents) != 0 {
		t.Errorf("fresh ledger state = %+v", got)
	}
}

func TestOpen_BadLogLevel(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(context.Background(), Options{
		ConfigPath:  filepath.Join(dir, "missing.yaml"),
		StoragePath: filepath.Join(dir, "incidents.db"),
		LogLevel:    "loud",
		LogOutput:   io.Discard,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}

func TestMapping(t *testing.T) {
	a := openTestApp(t)

	m, err := a.Mapping(model.ImportIncidents, []string{"Order", "Issue"}, nil)
	if err != nil {
		t.Fatalf("Mapping: %v", err)
	}
	if m[reconcile.FieldOrderNumber] != "Order" || m[reconcile.FieldIssueTypeProduct] != "Issue" {
		t.Errorf("mapping = %v", m)
	}

	m, err = a.Mapping(model.ImportIncidents, []string{"Ref", "What"}, map[string]string{
		reconcile.FieldOrderNumber:      "Ref",
		reconcile.FieldIssueTypeProduct: "What",
	})
	if err != nil {
		t.Fatalf("Mapping with overrides: %v", err)
	}
	if err := m.Check(reconcile.IncidentFields); err != nil {
		t.Errorf("overridden mapping incomplete: %v", err)
	}
}

func TestMapping_BadOverrides(t *testing.T) {
	a := openTestApp(t)
	headers := []string{"Order", "Issue"}

	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{"unknown field", map[string]string{"colour": "Issue"}},
		{"unknown header", map[string]string{reconcile.FieldOrderNumber: "Pedido"}},
		{"order field on incident import", map[string]string{reconcile.FieldPrice: "Issue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Mapping(model.ImportIncidents, headers, tt.overrides); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
