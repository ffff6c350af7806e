package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/steveyegge/stoich/internal/formula"
	"github.com/steveyegge/stoich/internal/report"
)

var (
	massVerbose bool
	massJSON    bool
)

var massCmd = &cobra.Command{
	Use:     "mass <formula>...",
	GroupID: GroupCalc,
	Short:   "Compute the molar mass of a formula",
	Long: `Compute the molar mass of one or more chemical formulas.

Fractional subscripts are fine:

  stoich mass Li5.5PS4.5Cl1.5
  stoich mass --verbose P2S5 Li2S`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMass,
}

func init() {
	massCmd.Flags().BoolVarP(&massVerbose, "verbose", "v", false, "Show per-element breakdown")
	massCmd.Flags().BoolVar(&massJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(massCmd)
}

type massJSONEntry struct {
	Formula   string `json:"formula"`
	MolarMass string `json:"molar_mass"`
}

func runMass(cmd *cobra.Command, args []string) error {
	table, err := massTable()
	if err != nil {
		return err
	}

	var jsonOut []massJSONEntry
	for _, input := range args {
		comp, err := formula.Parse(input)
		if err != nil {
			return err
		}
		terms := comp.Terms()
		masses := make([]decimal.Decimal, len(terms))
		for i, term := range terms {
			if masses[i], err = table.Lookup(term.Symbol); err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
		}
		total, err := table.MolarMass(comp)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}

		if massJSON {
			jsonOut = append(jsonOut, massJSONEntry{Formula: input, MolarMass: total.String()})
			continue
		}
		fmt.Print(report.RenderMass(input, comp, masses, total, massVerbose))
	}

	if massJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonOut)
	}
	return nil
}
