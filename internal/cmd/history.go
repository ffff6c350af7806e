package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/stoich/internal/history"
	"github.com/steveyegge/stoich/internal/style"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	GroupID: GroupData,
	Short:   "Browse saved calculation runs",
	Long: `Browse runs saved with "stoich plan --save".

  stoich history            # list saved runs
  stoich history show a1b2  # full report (abbreviated IDs ok)
  stoich history clear`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved runs",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyShowCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	dir, err := history.DefaultDir()
	if err != nil {
		return err
	}
	recs, err := history.List(dir)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println(style.Dim.Render("No saved runs. Use `stoich plan --save`."))
		return nil
	}

	tbl := style.NewTable(
		style.Column{Name: "ID", Width: 8},
		style.Column{Name: "When", Width: 16},
		style.Column{Name: "Target", Width: 20},
		style.NumCol("Amount", 12),
	)
	for _, rec := range recs {
		tbl.AddRow(
			abbrevID(rec.ID),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Target,
			rec.Amount+" "+rec.Unit,
		)
	}
	fmt.Print(tbl.Render())
	return nil
}

// abbrevID shortens a run ID for the list view.
func abbrevID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	dir, err := history.DefaultDir()
	if err != nil {
		return err
	}
	rec, err := history.Load(dir, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("  %s %s\n", style.Bold.Render("Run:"), rec.ID)
	fmt.Printf("  %s %s\n", style.Bold.Render("When:"), rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  %s %s  %s g/mol\n", style.Bold.Render("Target:"), rec.Target, style.Dim.Render(rec.TargetMolarMass))
	fmt.Printf("  %s %s %s %s %s mol\n", style.Bold.Render("Amount:"), rec.Amount, rec.Unit, style.ArrowPrefix, rec.TargetMoles)
	if rec.Degraded {
		style.PrintWarning("run was solved on a non-square system")
	}
	fmt.Println()

	tbl := style.NewTable(
		style.Column{Name: "Reagent", Width: 12},
		style.NumCol("M (g/mol)", 12),
		style.NumCol("Moles (mol)", 24),
		style.NumCol("Mass (g)", 24),
	)
	for _, r := range rec.Reagents {
		tbl.AddRow(r.Formula, r.MolarMass, r.Moles, r.Mass)
	}
	fmt.Print(tbl.Render())
	fmt.Printf("\n  %s %s g\n", style.Bold.Render("Total mass:"), rec.TotalMass)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	dir, err := history.DefaultDir()
	if err != nil {
		return err
	}
	n, err := history.Clear(dir)
	if err != nil {
		return err
	}
	fmt.Printf("%s Removed %d run(s)\n", style.SuccessPrefix, n)
	return nil
}
