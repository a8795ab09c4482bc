package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/order-incidents/internal/app"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/sheet"
	"github.com/nhle/order-incidents/internal/summary"
)

var (
	flagOrder   string
	flagFrom    string
	flagTo      string
	flagClub    string
	flagProduct string
	flagSize    string
	flagTop     int
	flagWeek    string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show the delivery note grouped by order",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		groups := summary.GroupOrders(a.Ledger.Snapshot().Orders)
		if flagOrder != "" {
			groups = filterGroups(groups, flagOrder)
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			if groups == nil {
				groups = []summary.OrderGroup{}
			}
			return printJSON(out, groups)
		}
		if len(groups) == 0 {
			fmt.Fprintln(out, "No orders.")
			return nil
		}

		var rows [][]string
		for _, g := range groups {
			for _, l := range g.Lines {
				rows = append(rows, []string{
					l.LineID,
					g.OrderNumber,
					g.Club,
					l.Product,
					l.Size,
					l.BandName,
					l.BandNumber,
					l.Price.StringFixed(2),
					yesNo(l.Checked),
				})
			}
		}
		printTable(out, []string{"Line", "Order", "Club", "Product", "Size", "Band", "No.", "Price", "Checked"}, rows)

		complete := 0
		for _, g := range groups {
			if g.Complete() {
				complete++
			}
		}
		fmt.Fprintf(out, "%d orders, %d fully checked\n", len(groups), complete)
		return nil
	}),
}

var checkCmd = &cobra.Command{
	Use:   "check <line>",
	Short: "Tick or untick an order line on the delivery note",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		if err := a.Ledger.ToggleOrderChecked(cmdContext(cmd), args[0]); err != nil {
			return err
		}
		for _, l := range a.Ledger.Snapshot().Orders {
			if l.LineID == args[0] {
				state := "unchecked"
				if l.Checked {
					state = "checked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", l.LineID, state)
			}
		}
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the delivery note, incidents or bands to .xlsx",
}

var exportOrdersCmd = &cobra.Command{
	Use:   "orders <file.xlsx>",
	Short: "Export the delivery note",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		lines := a.Ledger.Snapshot().Orders
		if err := sheet.SaveDeliveryNote(args[0], lines); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d lines to %s\n", len(lines), args[0])
		return nil
	}),
}

var exportIncidentsCmd = &cobra.Command{
	Use:   "incidents <file.xlsx>",
	Short: "Export incidents",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		incs := filterIncidents(a.Ledger.Snapshot().Incidents, flagArchived, flagAll)
		if err := sheet.SaveIncidents(args[0], incs, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d incidents to %s\n", len(incs), args[0])
		return nil
	}),
}

var exportBandsCmd = &cobra.Command{
	Use:   "bands <dir>",
	Short: "Export band names and numbers, one .xlsx per size",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		f, err := parseFilter(flagFrom, flagTo, flagClub)
		if err != nil {
			return err
		}
		f.Product, f.Size = flagProduct, flagSize

		groups := summary.BandsBySize(f.Orders(a.Ledger.Snapshot().Orders))
		out := cmd.OutOrStdout()
		if len(groups) == 0 {
			fmt.Fprintln(out, "No order lines match.")
			return nil
		}
		if err := os.MkdirAll(args[0], 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", args[0], err)
		}
		for _, g := range groups {
			path := filepath.Join(args[0], summary.BandFileName(flagClub, g.Size))
			if err := sheet.SaveBands(path, g.Bands); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %d bands to %s\n", len(g.Bands), path)
		}
		return nil
	}),
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the incidents created and due in one week",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		now := time.Now()
		day := now
		if flagWeek != "" {
			t, err := time.ParseInLocation(dateLayout, flagWeek, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --week %q: %w", flagWeek, err)
			}
			day = t
		}

		incs := filterIncidents(a.Ledger.Snapshot().Incidents, false, flagAll)
		incs = summary.Filter{Club: flagClub}.Incidents(incs)
		week := summary.Week(incs, day, now)

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, week)
		}
		fmt.Fprintf(out, "Week %s to %s\n", week[0].Date.Format(dateLayout), week[6].Date.Format(dateLayout))
		rows := make([][]string, len(week))
		for i, d := range week {
			var created, due []string
			for _, e := range d.Entries {
				if e.Created {
					created = append(created, e.OrderNumber)
				}
				if e.Due {
					label := e.OrderNumber
					if e.Overdue {
						label += " OVERDUE"
					}
					due = append(due, label)
				}
			}
			rows[i] = []string{d.Date.Format("Mon 02 Jan"), strings.Join(created, ", "), strings.Join(due, ", ")}
		}
		printTable(out, []string{"Day", "Created", "Due"}, rows)
		return nil
	}),
}

// figures bundles everything the summary command prints.
type figures struct {
	Orders     summary.OrderKPIs     `json:"orders"`
	Incidents  summary.IncidentKPIs  `json:"incidents"`
	IssueTypes []summary.Count       `json:"issue_types"`
	Products   []summary.Count       `json:"products"`
	Clubs      []summary.ClubRevenue `json:"clubs"`
	ByClub     []summary.ClubStats   `json:"by_club"`
	Recent     []model.Incident      `json:"recent"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show order and incident figures",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		f, err := parseFilter(flagFrom, flagTo, flagClub)
		if err != nil {
			return err
		}
		s := a.Ledger.Snapshot()
		orders := f.Orders(s.Orders)
		incs := f.Incidents(s.Incidents)
		now := time.Now()

		r := figures{
			Orders:     summary.OrderStats(orders),
			Incidents:  summary.IncidentStats(incs, now),
			IssueTypes: summary.TopIssueTypes(incs, flagTop),
			Products:   summary.TopProducts(orders, flagTop),
			Clubs:      summary.TopClubsByRevenue(orders, flagTop),
			ByClub:     summary.ByClub(incs, now),
			Recent:     summary.Recent(incs, flagTop),
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), r)
		}
		printFigures(cmd.OutOrStdout(), r)
		return nil
	}),
}

func printFigures(out io.Writer, r figures) {
	fmt.Fprintf(out, "Orders: %d (%d lines)  Revenue: %s  Average ticket: %s\n",
		r.Orders.Orders, r.Orders.Lines, r.Orders.Revenue.StringFixed(2), r.Orders.AverageTicket.StringFixed(2))
	fmt.Fprintf(out, "Incidents: %d  Open: %d  Overdue: %d  Done: %d  Resolution: %.1f%%\n\n",
		r.Incidents.Total, r.Incidents.Open, r.Incidents.Overdue, r.Incidents.Done, r.Incidents.ResolutionRate)

	if len(r.IssueTypes) > 0 {
		printTable(out, []string{"Issue type", "Count"}, countRows(r.IssueTypes))
	}
	if len(r.Products) > 0 {
		printTable(out, []string{"Product", "Lines"}, countRows(r.Products))
	}
	if len(r.Clubs) > 0 {
		rows := make([][]string, len(r.Clubs))
		for i, c := range r.Clubs {
			rows[i] = []string{c.Club, c.Revenue.StringFixed(2)}
		}
		printTable(out, []string{"Club", "Revenue"}, rows)
	}
	if len(r.ByClub) > 0 {
		rows := make([][]string, len(r.ByClub))
		for i, c := range r.ByClub {
			rows[i] = []string{c.Club, fmt.Sprint(c.Total), fmt.Sprint(c.Open), fmt.Sprint(c.Overdue), fmt.Sprint(c.Done)}
		}
		printTable(out, []string{"Club", "Incidents", "Open", "Overdue", "Done"}, rows)
	}
	if len(r.Recent) > 0 {
		rows := make([][]string, len(r.Recent))
		for i, inc := range r.Recent {
			rows[i] = []string{dateText(inc.CreatedAt), inc.OrderNumber, inc.Status.Label()}
		}
		printTable(out, []string{"Created", "Order", "Status"}, rows)
	}
}

func countRows(counts []summary.Count) [][]string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Key, fmt.Sprint(c.Count)}
	}
	return rows
}

// parseFilter reads YYYY-MM-DD bounds in local time. Empty values leave the
// bound open.
func parseFilter(from, to, club string) (summary.Filter, error) {
	f := summary.Filter{Club: club}
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		f.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		f.To = t
	}
	return f, nil
}

func filterGroups(groups []summary.OrderGroup, orderNumber string) []summary.OrderGroup {
	var out []summary.OrderGroup
	for _, g := range groups {
		if g.OrderNumber == orderNumber {
			out = append(out, g)
		}
	}
	return out
}

func init() {
	ordersCmd.Flags().StringVar(&flagOrder, "order", "", "show one order only")
	exportIncidentsCmd.Flags().BoolVar(&flagArchived, "archived", false, "export archived incidents")
	exportIncidentsCmd.Flags().BoolVar(&flagAll, "all", false, "export every incident")
	summaryCmd.Flags().StringVar(&flagFrom, "from", "", "first day (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&flagTo, "to", "", "last day, inclusive (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&flagClub, "club", "", "restrict to one club")
	summaryCmd.Flags().IntVar(&flagTop, "top", 5, "entries per ranking")
	exportBandsCmd.Flags().StringVar(&flagFrom, "from", "", "first order day (YYYY-MM-DD)")
	exportBandsCmd.Flags().StringVar(&flagTo, "to", "", "last order day, inclusive (YYYY-MM-DD)")
	exportBandsCmd.Flags().StringVar(&flagClub, "club", "", "restrict to one club")
	exportBandsCmd.Flags().StringVar(&flagProduct, "product", "", "restrict to one product")
	exportBandsCmd.Flags().StringVar(&flagSize, "size", "", "restrict to one size ("+summary.NoSize+" for lines without one)")
	calendarCmd.Flags().StringVar(&flagWeek, "week", "", "any day of the week to show (YYYY-MM-DD, default this week)")
	calendarCmd.Flags().StringVar(&flagClub, "club", "", "restrict to one club")
	calendarCmd.Flags().BoolVar(&flagAll, "all", false, "include archived incidents")

	exportCmd.AddCommand(exportOrdersCmd)
	exportCmd.AddCommand(exportIncidentsCmd)
	exportCmd.AddCommand(exportBandsCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(calendarCmd)
}
