package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/order-incidents/internal/app"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
	"github.com/nhle/order-incidents/internal/sheet"
)

var (
	flagMap      []string
	flagGenerate bool
	flagLimit    int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an orders or incidents spreadsheet",
}

var importOrdersCmd = &cobra.Command{
	Use:   "orders <file>",
	Short: "Import order lines from an .xlsx or .csv file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return runImport(cmd, a, model.ImportOrders, args[0])
	}),
}

var importIncidentsCmd = &cobra.Command{
	Use:   "incidents <file>",
	Short: "Import reported issue rows from an .xlsx or .csv file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		if err := runImport(cmd, a, model.ImportIncidents, args[0]); err != nil {
			return err
		}
		if !flagGenerate {
			return nil
		}
		return runGenerate(cmd, a)
	}),
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Merge imported issue rows into incidents",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return runGenerate(cmd, a)
	}),
}

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Show the import history",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		batches, err := a.Ledger.Batches(cmdContext(cmd), flagLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, batches)
		}
		if len(batches) == 0 {
			fmt.Fprintln(out, "No imports yet.")
			return nil
		}
		rows := make([][]string, len(batches))
		for i, b := range batches {
			rows[i] = []string{
				b.CreatedAt.Local().Format("2006-01-02 15:04"),
				string(b.Kind),
				b.Source,
				fmt.Sprint(b.Imported),
				fmt.Sprint(b.Duplicates),
				fmt.Sprint(b.Skipped),
			}
		}
		printTable(out, []string{"When", "Kind", "Source", "New", "Duplicates", "Skipped"}, rows)
		return nil
	}),
}

// parseOverrides turns field=header pairs into a map.
func parseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		field, header, ok := strings.Cut(p, "=")
		field, header = strings.TrimSpace(field), strings.TrimSpace(header)
		if !ok || field == "" || header == "" {
			return nil, fmt.Errorf("invalid --map %q (want field=header)", p)
		}
		out[field] = header
	}
	return out, nil
}

func runImport(cmd *cobra.Command, a *app.App, kind model.ImportKind, path string) error {
	table, err := sheet.ReadFile(path)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(flagMap)
	if err != nil {
		return err
	}
	mapping, err := a.Mapping(kind, table.Headers, overrides)
	if err != nil {
		return err
	}

	source := filepath.Base(path)
	var counts reconcile.ImportCounts
	if kind == model.ImportOrders {
		counts, err = a.Ledger.ImportOrders(cmdContext(cmd), table, mapping, source)
	} else {
		counts, err = a.Ledger.ImportRawIncidents(cmdContext(cmd), table, mapping, source)
	}
	if err != nil {
		return fmt.Errorf("%w\nsheet columns: %s", err, strings.Join(table.Headers, ", "))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, counts.String())
	if counts.Skipped > 0 {
		fmt.Fprintf(out, "%d rows skipped (missing required values)\n", counts.Skipped)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, a *app.App) error {
	counts, err := a.Ledger.GenerateIncidents(cmdContext(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), counts.String())
	return nil
}

func init() {
	importCmd.PersistentFlags().StringArrayVar(&flagMap, "map", nil, "map a field to a sheet column, e.g. --map order_number=Pedido (repeatable)")
	importIncidentsCmd.Flags().BoolVar(&flagGenerate, "generate", false, "generate incidents after importing")
	batchesCmd.Flags().IntVar(&flagLimit, "limit", 20, "number of imports to show (0 for all)")

	importCmd.AddCommand(importOrdersCmd)
	importCmd.AddCommand(importIncidentsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchesCmd)
}
