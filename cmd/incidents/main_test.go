package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
	"github.com/nhle/order-incidents/internal/sheet"
	"github.com/nhle/order-incidents/internal/summary"
)

const ordersCSV = `Order Number,Email,Order Date,Club,Product,Size,Price,Band Name,Band Number
P1,ana@example.com,01/03/2024,Lions,Jersey,M,25.50,Ana,7
P1,ana@example.com,01/03/2024,Lions,Shorts,S,15.00,,
P2,bo@example.com,02/03/2024,Tigers,Cap,,9.90,,
`

const incidentsCSV = `Order,Issue
P1,Jersey - Color
P1,Jersey - Sizing
P1,Jersey - Color
P9,Socks - Names
`

type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) file(name, content string) string {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		c.t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// run executes the root command with fresh flag values.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	flagMap, flagGenerate, flagJSON = nil, false, false
	flagArchived, flagAll = false, false
	flagType, flagDetail, flagLine, flagOrder = "", "", "", ""
	flagFrom, flagTo, flagClub, flagProduct, flagSize, flagWeek = "", "", "", "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{
		"--db", filepath.Join(c.dir, "incidents.db"),
		"--config", filepath.Join(c.dir, "config.yaml"),
	}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("%v: %v", args, err)
	}
	return out
}

func (c *cli) incidents(args ...string) []model.Incident {
	c.t.Helper()
	out := c.mustRun(append([]string{"list", "--json"}, args...)...)
	var incs []model.Incident
	if err := json.Unmarshal([]byte(out), &incs); err != nil {
		c.t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	return incs
}

func TestCLI_ImportGenerateList(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("import", "orders", c.file("orders.csv", ordersCSV))
	if !strings.Contains(out, "3 new rows imported, 0 duplicates skipped") {
		t.Errorf("orders import output = %q", out)
	}
	out = c.mustRun("import", "orders", c.file("orders.csv", ordersCSV))
	if !strings.Contains(out, "0 new rows imported, 3 duplicates skipped") {
		t.Errorf("re-import output = %q", out)
	}

	out = c.mustRun("import", "incidents", c.file("issues.csv", incidentsCSV), "--generate")
	if !strings.Contains(out, "3 new rows imported, 1 duplicates skipped") {
		t.Errorf("incidents import output = %q", out)
	}

	incs := c.incidents()
	if len(incs) != 2 {
		t.Fatalf("incidents = %d, want 2", len(incs))
	}
	p1 := incs[0]
	if p1.OrderNumber != "P1" || !p1.OrderFound || p1.Club != "Lions" || len(p1.ChecklistItems) != 2 {
		t.Errorf("P1 incident = %+v", p1)
	}
	if incs[1].OrderNumber != "P9" || incs[1].OrderFound {
		t.Errorf("P9 incident = %+v", incs[1])
	}

	batches := c.mustRun("batches", "--json")
	var got []model.ImportBatch
	if err := json.Unmarshal([]byte(batches), &got); err != nil {
		t.Fatalf("invalid batches JSON: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("batches = %d, want 3", len(got))
	}
	if got[0].Kind != model.ImportIncidents || got[0].Source != "issues.csv" || got[0].Duplicates != 1 {
		t.Errorf("latest batch = %+v", got[0])
	}
}

func TestCLI_Lifecycle(t *testing.T) {
	c := newCLI(t)
	c.mustRun("import", "incidents", c.file("issues.csv", incidentsCSV), "--generate")

	c.mustRun("toggle", "P1", "1")
	c.mustRun("move", "P1", "fixing")
	c.mustRun("notes", "P1", "call", "customer")

	out := c.mustRun("show", "P1", "--json")
	var inc model.Incident
	if err := json.Unmarshal([]byte(out), &inc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if inc.Status != model.StatusFixing || !inc.ChecklistItems[0].Done || inc.Notes != "call customer" {
		t.Errorf("incident = %+v", inc)
	}

	if _, err := c.run("move", "P1", "archived"); !errors.Is(err, reconcile.ErrIllegalTransition) {
		t.Errorf("move to archived err = %v, want ErrIllegalTransition", err)
	}

	c.mustRun("archive", "P1")
	if got := c.incidents(); len(got) != 1 || got[0].OrderNumber != "P9" {
		t.Errorf("active incidents = %+v", got)
	}
	if got := c.incidents("--archived"); len(got) != 1 || got[0].OrderNumber != "P1" {
		t.Errorf("archived incidents = %+v", got)
	}

	c.mustRun("restore", "P1")
	if got := c.incidents("--all"); len(got) != 2 || got[0].Status != model.StatusWaiting {
		t.Errorf("incidents after restore = %+v", got)
	}
}

func TestCLI_Report(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("report", "P5", "--type", "sizing", "--detail", "too small")
	if !strings.Contains(out, "Created incident") {
		t.Errorf("report output = %q", out)
	}
	out = c.mustRun("report", "P5", "--type", "Color", "--detail", "faded")
	if !strings.Contains(out, `Added "MANUAL - Full order - Color"`) {
		t.Errorf("second report output = %q", out)
	}

	if _, err := c.run("report", "P5", "--type", "glitter", "--detail", "x"); !errors.Is(err, reconcile.ErrUnknownIssueType) {
		t.Errorf("err = %v, want ErrUnknownIssueType", err)
	}
}

func TestCLI_ImportMappingRefused(t *testing.T) {
	c := newCLI(t)
	path := c.file("issues.csv", "Ref,What\nP1,Cap - Color\n")

	if _, err := c.run("import", "incidents", path); !errors.Is(err, reconcile.ErrMappingIncomplete) {
		t.Fatalf("err = %v, want ErrMappingIncomplete", err)
	}

	out := c.mustRun("import", "incidents", path, "--map", "order_number=Ref", "--map", "issue_type_product=What")
	if !strings.Contains(out, "1 new rows imported") {
		t.Errorf("output = %q", out)
	}
}

func TestCLI_ExportBands(t *testing.T) {
	c := newCLI(t)
	c.mustRun("import", "orders", c.file("orders.csv", ordersCSV))
	dir := filepath.Join(c.dir, "bands")

	out := c.mustRun("export", "bands", dir, "--club", "Lions")
	for _, name := range []string{"Lions_M.xlsx", "Lions_S.xlsx"} {
		if !strings.Contains(out, filepath.Join(dir, name)) {
			t.Errorf("output missing %s:\n%s", name, out)
		}
	}

	got, err := sheet.ReadFile(filepath.Join(dir, "Lions_M.xlsx"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0][0] != "Ana" || got.Rows[0][1] != "7" {
		t.Errorf("M bands = %v, want [[Ana 7]]", got.Rows)
	}

	out = c.mustRun("export", "bands", dir, "--size", summary.NoSize)
	if !strings.Contains(out, "All_clubs_NO_SIZE.xlsx") || strings.Contains(out, "Lions_M") {
		t.Errorf("size filter output:\n%s", out)
	}

	out = c.mustRun("export", "bands", dir, "--product", "Hoodie")
	if !strings.Contains(out, "No order lines match.") {
		t.Errorf("empty export output:\n%s", out)
	}
}

func TestCLI_Calendar(t *testing.T) {
	c := newCLI(t)
	c.mustRun("import", "incidents", c.file("issues.csv", incidentsCSV), "--generate")

	week := func(args ...string) []summary.CalendarDay {
		t.Helper()
		out := c.mustRun(append([]string{"calendar", "--json"}, args...)...)
		var days []summary.CalendarDay
		if err := json.Unmarshal([]byte(out), &days); err != nil {
			t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
		}
		if len(days) != 7 {
			t.Fatalf("days = %d, want 7", len(days))
		}
		return days
	}
	find := func(days []summary.CalendarDay, order string) (summary.CalendarEntry, bool) {
		for _, d := range days {
			for _, e := range d.Entries {
				if e.OrderNumber == order {
					return e, true
				}
			}
		}
		return summary.CalendarEntry{}, false
	}

	if e, ok := find(week(), "P1"); !ok || !e.Created || e.Due {
		t.Errorf("this week P1 = %+v, %v; want created", e, ok)
	}

	next := time.Now().Add(model.DueWindow).Format(dateLayout)
	if e, ok := find(week("--week", next), "P9"); !ok || !e.Due || e.Overdue {
		t.Errorf("due week P9 = %+v, %v; want due, not overdue", e, ok)
	}

	out := c.mustRun("calendar")
	if !strings.Contains(out, "P1") || !strings.Contains(out, "Created") {
		t.Errorf("calendar table:\n%s", out)
	}

	if _, err := c.run("calendar", "--week", "03/2024"); err == nil {
		t.Error("expected an error for a bad --week")
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{"order_number = Pedido", "club=Club name"})
	if err != nil {
		t.Fatalf("parseOverrides: %v", err)
	}
	if got["order_number"] != "Pedido" || got["club"] != "Club name" {
		t.Errorf("overrides = %v", got)
	}

	for _, bad := range []string{"order_number", "=Pedido", "order_number="} {
		if _, err := parseOverrides([]string{bad}); err == nil {
			t.Errorf("parseOverrides(%q) should fail", bad)
		}
	}
}

func TestFindItem(t *testing.T) {
	inc := model.Incident{
		OrderNumber: "P1",
		ChecklistItems: []model.ChecklistItem{
			{ID: "a1", Label: "Jersey - Color"},
			{ID: "b2", Label: "Jersey - Sizing"},
		},
	}

	tests := []struct {
		ref  string
		want string
	}{
		{"2", "b2"},
		{"a1", "a1"},
		{"Jersey - Sizing", "b2"},
	}
	for _, tt := range tests {
		item, err := findItem(inc, tt.ref)
		if err != nil || item.ID != tt.want {
			t.Errorf("findItem(%q) = %v, %v; want %s", tt.ref, item.ID, err, tt.want)
		}
	}

	if _, err := findItem(inc, "3"); !errors.Is(err, reconcile.ErrChecklistItemNotFound) {
		t.Errorf("err = %v, want ErrChecklistItemNotFound", err)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("2024-03-01", "2024-03-31", "Lions")
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	if f.From.Day() != 1 || f.To.Day() != 31 || f.Club != "Lions" {
		t.Errorf("filter = %+v", f)
	}

	if _, err := parseFilter("01/03/2024", "", ""); err == nil {
		t.Error("expected an error for a non-ISO date")
	}
}
