package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/steveyegge/stoich/internal/ptable"
	"github.com/steveyegge/stoich/internal/style"
)

var elementsCmd = &cobra.Command{
	Use:     "elements",
	GroupID: GroupData,
	Short:   "Inspect and override atomic masses",
	Long: `Inspect the atomic mass table and manage per-user overrides.

Overrides live in a plain "symbol mass" text file and shadow the
built-in reference values. Use them to pin a different standard weight
or an isotopically enriched mass:

  stoich elements list
  stoich elements set Li 6.015
  stoich elements unset Li`,
}

var elementsListCmd = &cobra.Command{
	Use:   "list [symbol]...",
	Short: "List atomic masses",
	RunE:  runElementsList,
}

var elementsSetCmd = &cobra.Command{
	Use:   "set <symbol> <mass>",
	Short: "Override the atomic mass of an element",
	Args:  cobra.ExactArgs(2),
	RunE:  runElementsSet,
}

var elementsUnsetCmd = &cobra.Command{
	Use:   "unset <symbol>",
	Short: "Remove an atomic mass override",
	Args:  cobra.ExactArgs(1),
	RunE:  runElementsUnset,
}

func init() {
	elementsCmd.AddCommand(elementsListCmd, elementsSetCmd, elementsUnsetCmd)
	rootCmd.AddCommand(elementsCmd)
}

// normalizeSymbol maps case-sloppy input like "li" or "CL" to the
// canonical element symbol form (initial capital, rest lower).
func normalizeSymbol(s string) string {
	return cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(s)))
}

// overridesPath is the overrides file in effect for this run: the
// configured path, or the per-user default.
func overridesPath() (string, error) {
	if cfg.Masses != "" {
		return cfg.Masses, nil
	}
	return ptable.DefaultOverridesPath()
}

func runElementsList(cmd *cobra.Command, args []string) error {
	path, err := overridesPath()
	if err != nil {
		return err
	}
	overrides, err := ptable.LoadOverrides(path)
	if err != nil {
		return err
	}
	table := ptable.Default().WithOverrides(overrides)

	symbols := table.Symbols()
	if len(args) > 0 {
		symbols = symbols[:0]
		for _, arg := range args {
			symbols = append(symbols, normalizeSymbol(arg))
		}
	}

	tbl := style.NewTable(
		style.Column{Name: "Element", Width: 8},
		style.NumCol("Mass (g/mol)", 14),
		style.Column{Name: "", Width: 10},
	).SetHeaderSeparator(false)
	for _, sym := range symbols {
		mass, err := table.Lookup(sym)
		if err != nil {
			return err
		}
		note := ""
		if overrides != nil && overrides.Has(sym) {
			note = style.Warning.Render("override")
		}
		tbl.AddRow(sym, mass.String(), note)
	}
	fmt.Print(tbl.Render())
	return nil
}

func runElementsSet(cmd *cobra.Command, args []string) error {
	symbol := normalizeSymbol(args[0])
	mass, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid mass %q", args[1])
	}

	path, err := overridesPath()
	if err != nil {
		return err
	}
	if err := ptable.SetOverride(path, symbol, mass); err != nil {
		return err
	}
	fmt.Printf("%s %s = %s g/mol\n", style.SuccessPrefix, symbol, mass)
	return nil
}

func runElementsUnset(cmd *cobra.Command, args []string) error {
	symbol := normalizeSymbol(args[0])

	path, err := overridesPath()
	if err != nil {
		return err
	}
	removed, err := ptable.RemoveOverride(path, symbol)
	if err != nil {
		return err
	}
	if !removed {
		style.PrintWarning("no override for %s", symbol)
		return nil
	}
	ref, err := ptable.Default().Lookup(symbol)
	if err != nil {
		fmt.Printf("%s %s override removed\n", style.SuccessPrefix, symbol)
		return nil
	}
	fmt.Printf("%s %s restored to %s g/mol\n", style.SuccessPrefix, symbol, ref)
	return nil
}
