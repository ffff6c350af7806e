// Package cmd implements the stoich command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/steveyegge/stoich/internal/config"
	"github.com/steveyegge/stoich/internal/style"
	"github.com/steveyegge/stoich/internal/ui"
)

// Command group IDs.
const (
	GroupCalc = "calc"
	GroupData = "data"
)

var (
	// configPath overrides the default config file location.
	configPath string
	// cfg is the loaded configuration, available to every command after
	// PersistentPreRunE.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stoich",
	Short: "High-precision synthesis planning for solid-state chemistry",
	Long: `stoich computes the exact reagent masses needed to synthesize a
target compound with non-integer stoichiometry.

Give it a target formula (fractional subscripts welcome), the reagents
on your shelf, and a total amount; it solves the element-balance system
in arbitrary-precision decimal arithmetic and reports moles and grams
per reagent, with a per-element verification of the result.

Examples:
  stoich plan --target Li5.5PS4.5Cl1.5 --reagent LiCl --reagent P2S5 --reagent Li2S --grams 1
  stoich plan                 # interactive form
  stoich mass P2S5            # molar mass of a formula
  stoich elements list        # known atomic masses`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRun()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default <user config dir>/stoich/config.toml)")
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCalc, Title: "Calculation Commands:"},
		&cobra.Group{ID: GroupData, Title: "Data Commands:"},
	)
}

// initRun loads settings and pins the process-wide numeric environment.
// The division precision must be set exactly once, before any decimal
// math, and held for the whole run; per-command fiddling would make
// results irreproducible.
func initRun() error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return err
		}
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return err
	}
	if configPath != "" && errors.Is(err, config.ErrNotFound) {
		// An explicitly named config file must exist.
		return err
	}

	decimal.DivisionPrecision = cfg.Precision
	ui.InitTheme(cfg.Theme)
	ui.ApplyThemeMode()
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := IsSilentExit(err); ok {
			return code
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}
