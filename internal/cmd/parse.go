package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/stoich/internal/formula"
	"github.com/steveyegge/stoich/internal/style"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:     "parse <formula>...",
	GroupID: GroupCalc,
	Short:   "Show the element composition of a formula",
	Long: `Parse formulas and print their canonical compositions: each element
once, repeated occurrences summed, in first-appearance order.

  stoich parse Li5.5PS4.5Cl1.5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	jsonOut := make([]map[string]string, 0, len(args))
	for _, input := range args {
		comp, err := formula.Parse(input)
		if err != nil {
			return err
		}

		if parseJSON {
			terms := make(map[string]string, comp.Len())
			for _, term := range comp.Terms() {
				terms[term.Symbol] = term.Quantity.String()
			}
			jsonOut = append(jsonOut, terms)
			continue
		}

		fmt.Printf("  %s %s\n\n", style.Bold.Render(input), style.Dim.Render("("+comp.String()+")"))
		tbl := style.NewTable(
			style.Column{Name: "Element", Width: 8},
			style.NumCol("Count", 12),
		).SetHeaderSeparator(false)
		for _, term := range comp.Terms() {
			tbl.AddRow(term.Symbol, term.Quantity.String())
		}
		fmt.Print(tbl.Render())
	}

	if parseJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonOut)
	}
	return nil
}
