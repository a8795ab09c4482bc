package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/order-incidents/internal/model"
)

const dateLayout = "2006-01-02"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func dateText(ts model.Timestamp) string {
	if !ts.Valid() {
		return "-"
	}
	return ts.Format(dateLayout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func checklistLines(items []model.ChecklistItem) string {
	var b strings.Builder
	for i, item := range items {
		box := "[ ]"
		if item.Done {
			box = "[x]"
		}
		fmt.Fprintf(&b, "  %d. %s %s\n", i+1, box, item.Label)
	}
	return b.String()
}
