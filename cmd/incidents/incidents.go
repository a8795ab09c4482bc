package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/order-incidents/internal/app"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
	"github.com/nhle/order-incidents/internal/ui/report"
)

var (
	flagType     string
	flagDetail   string
	flagLine     string
	flagArchived bool
	flagAll      bool
)

var reportCmd = &cobra.Command{
	Use:   "report <order>",
	Short: "Report an issue on an order by hand",
	Long: `Report an issue on an order. Without --type and --detail an interactive
form asks for the missing values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		r := reconcile.ManualReport{LineID: flagLine, Detail: flagDetail}
		if len(args) == 1 {
			r.OrderNumber = args[0]
		}
		if flagType != "" {
			t, err := parseIssueType(flagType)
			if err != nil {
				return err
			}
			r.Type = t
		}

		if r.OrderNumber == "" || r.Type == "" || strings.TrimSpace(r.Detail) == "" {
			var err error
			r, err = report.Prompt(a.Ledger.Snapshot().Orders, r)
			if err != nil {
				return err
			}
		}

		res, err := a.Ledger.ReportManual(cmdContext(cmd), r)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case res.Created:
			fmt.Fprintf(out, "Created incident %s for order %s\n", shortID(res.IncidentID), r.OrderNumber)
		case res.LabelAdded:
			fmt.Fprintf(out, "Added %q to incident %s\n", res.Label, shortID(res.IncidentID))
		default:
			fmt.Fprintf(out, "Noted on incident %s\n", shortID(res.IncidentID))
		}
		return nil
	}),
}

var moveCmd = &cobra.Command{
	Use:   "move <incident> <waiting|fixing|done>",
	Short: "Move an incident to another column",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		to, err := parseStatus(args[1])
		if err != nil {
			return err
		}
		inc, err := a.Ledger.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := a.Ledger.Move(cmdContext(cmd), inc.IncidentID, to); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", inc.OrderNumber, to.Label())
		return nil
	}),
}

var archiveCmd = &cobra.Command{
	Use:   "archive <incident>",
	Short: "Archive an incident",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		inc, err := a.Ledger.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := a.Ledger.Archive(cmdContext(cmd), inc.IncidentID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s archived\n", inc.OrderNumber)
		return nil
	}),
}

var restoreCmd = &cobra.Command{
	Use:   "restore <incident>",
	Short: "Restore an archived incident to waiting",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		inc, err := a.Ledger.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := a.Ledger.Restore(cmdContext(cmd), inc.IncidentID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s restored\n", inc.OrderNumber)
		return nil
	}),
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <incident> <item>",
	Short: "Tick or untick a checklist item (by number, id or label)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		inc, err := a.Ledger.Resolve(args[0])
		if err != nil {
			return err
		}
		item, err := findItem(inc, args[1])
		if err != nil {
			return err
		}
		if err := a.Ledger.ToggleChecklist(cmdContext(cmd), inc.IncidentID, item.ID); err != nil {
			return err
		}
		state := "done"
		if item.Done {
			state = "open"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", item.Label, state)
		return nil
	}),
}

var notesCmd = &cobra.Command{
	Use:   "notes <incident> <text>",
	Short: "Replace the notes of an incident",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		inc, err := a.Ledger.Resolve(args[0])
		if err != nil {
			return err
		}
		notes := strings.Join(args[1:], " ")
		if err := a.Ledger.SetNotes(cmdContext(cmd), inc.IncidentID, notes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Notes saved for %s\n", inc.OrderNumber)
		return nil
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		incs := filterIncidents(a.Ledger.Snapshot().Incidents, flagArchived, flagAll)
		out := cmd.OutOrStdout()
		if flagJSON {
			if incs == nil {
				incs = []model.Incident{}
			}
			return printJSON(out, incs)
		}
		if len(incs) == 0 {
			fmt.Fprintln(out, "No incidents.")
			return nil
		}

		now := time.Now()
		rows := make([][]string, len(incs))
		for i, inc := range incs {
			due := dateText(inc.DueDate)
			if inc.IsOverdue(now) {
				due += " !"
			}
			rows[i] = []string{
				shortID(inc.IncidentID),
				inc.OrderNumber,
				inc.Status.Label(),
				fmt.Sprintf("%d/%d", inc.DoneCount(), len(inc.ChecklistItems)),
				due,
				inc.Club,
				yesNo(inc.ManualOrigin),
			}
		}
		printTable(out, []string{"ID", "Order", "Status", "Done", "Due", "Club", "Manual"}, rows)
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show <incident>",
	Short: "Show one incident",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		inc, err := a.Ledger.Resolve(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, inc)
		}

		fmt.Fprintf(out, "Incident %s\n", inc.IncidentID)
		fmt.Fprintf(out, "Order:    %s\n", inc.OrderNumber)
		fmt.Fprintf(out, "Status:   %s\n", inc.Status.Label())
		fmt.Fprintf(out, "Created:  %s\n", dateText(inc.CreatedAt))
		due := dateText(inc.DueDate)
		if inc.IsOverdue(time.Now()) {
			due += " (overdue)"
		}
		fmt.Fprintf(out, "Due:      %s\n", due)
		if inc.OrderFound {
			fmt.Fprintf(out, "Email:    %s\n", inc.Email)
			fmt.Fprintf(out, "Club:     %s\n", inc.Club)
			fmt.Fprintf(out, "Products: %s\n", inc.ProductsSummary)
			fmt.Fprintf(out, "Sizes:    %s\n", inc.SizesSummary)
			fmt.Fprintf(out, "Total:    %s\n", inc.OrderTotal.StringFixed(2))
		} else {
			fmt.Fprintln(out, "Order not found in imported orders")
		}
		fmt.Fprintf(out, "\nChecklist:\n%s", checklistLines(inc.ChecklistItems))
		if strings.TrimSpace(inc.Notes) != "" {
			fmt.Fprintf(out, "\nNotes:\n%s\n", strings.TrimRight(inc.Notes, "\n"))
		}
		return nil
	}),
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive incident board",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return a.RunBoard()
	}),
}

func parseStatus(s string) (model.IncidentStatus, error) {
	st := model.IncidentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown status %q (want waiting, fixing or done)", s)
	}
	return st, nil
}

func parseIssueType(s string) (model.ManualIssueType, error) {
	for _, t := range model.ManualIssueTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	names := make([]string, len(model.ManualIssueTypes))
	for i, t := range model.ManualIssueTypes {
		names[i] = string(t)
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", reconcile.ErrUnknownIssueType, s, strings.Join(names, ", "))
}

// findItem picks a checklist item by 1-based number, id or exact label.
func findItem(inc model.Incident, ref string) (model.ChecklistItem, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(inc.ChecklistItems) {
		return inc.ChecklistItems[n-1], nil
	}
	for _, item := range inc.ChecklistItems {
		if item.ID == ref || item.Label == ref {
			return item, nil
		}
	}
	return model.ChecklistItem{}, fmt.Errorf("%w: %q on %s", reconcile.ErrChecklistItemNotFound, ref, inc.OrderNumber)
}

// filterIncidents keeps active incidents, archived ones, or all.
func filterIncidents(incs []model.Incident, archived, all bool) []model.Incident {
	var out []model.Incident
	for _, inc := range incs {
		if all || (inc.Status == model.StatusArchived) == archived {
			out = append(out, inc)
		}
	}
	return out
}

func init() {
	reportCmd.Flags().StringVar(&flagType, "type", "", "issue type: Color, Names, Sizing, Sublimation or Other")
	reportCmd.Flags().StringVar(&flagDetail, "detail", "", "what is wrong")
	reportCmd.Flags().StringVar(&flagLine, "line", "", "order line id (default: the whole order)")
	listCmd.Flags().BoolVar(&flagArchived, "archived", false, "list archived incidents")
	listCmd.Flags().BoolVar(&flagAll, "all", false, "list every incident")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(boardCmd)
}
