package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/steveyegge/stoich/internal/formula"
	"github.com/steveyegge/stoich/internal/history"
	"github.com/steveyegge/stoich/internal/ptable"
	"github.com/steveyegge/stoich/internal/report"
	"github.com/steveyegge/stoich/internal/solve"
	"github.com/steveyegge/stoich/internal/style"
	"github.com/steveyegge/stoich/internal/tui/planner"
	"github.com/steveyegge/stoich/internal/ui"
)

var (
	planTarget   string
	planReagents []string
	planGrams    string
	planMoles    string
	planSave     bool
	planJSON     bool
)

var planCmd = &cobra.Command{
	Use:     "plan",
	GroupID: GroupCalc,
	Short:   "Solve reagent amounts for a target compound",
	Long: `Solve the element-balance system for a synthesis: how much of each
reagent combines into the requested amount of the target compound.

With no flags (and a terminal), an interactive form collects the
inputs. Flags skip the form entirely:

  stoich plan --target Li5.5PS4.5Cl1.5 \
      --reagent LiCl --reagent P2S5 --reagent Li2S --grams 1

Exit codes: 0 solved, 1 bad input, 2 infeasible system.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planTarget, "target", "", "Target compound formula")
	planCmd.Flags().StringArrayVar(&planReagents, "reagent", nil, "Reagent formula (repeatable)")
	planCmd.Flags().StringVar(&planGrams, "grams", "", "Total amount as mass in grams")
	planCmd.Flags().StringVar(&planMoles, "moles", "", "Total amount in moles")
	planCmd.Flags().BoolVar(&planSave, "save", false, "Record the run in history")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	inputs, err := planInputs()
	if err != nil {
		return err
	}
	if inputs == nil {
		// Interactive form cancelled; not an error, nothing to do.
		return nil
	}

	table, err := massTable()
	if err != nil {
		return err
	}

	plan, err := buildPlan(*inputs, table)
	if err != nil {
		return err
	}

	res, err := solve.Solve(solve.Request{
		Target:          plan.TargetComp,
		TargetMolarMass: plan.TargetMolarMass,
		Amount:          plan.Amount,
		Unit:            plan.Unit,
		Reagents:        plan.Reagents,
		Precision:       int32(cfg.Precision),
		Tolerance:       cfg.ToleranceDecimal(),
	})
	if err != nil {
		var ierr *solve.InfeasibleError
		if errors.As(err, &ierr) || errors.Is(err, solve.ErrNoExactSolution) {
			style.PrintError("%v", err)
			return NewSilentExit(2)
		}
		return err
	}
	plan.Result = res

	if planJSON {
		return printPlanJSON(plan)
	}

	if res.Degraded {
		style.PrintWarning("system is not square (%d elements, %d reagents); result may be under- or over-determined",
			len(res.Verification), len(res.Reagents))
	}
	if len(res.Extra) > 0 {
		style.PrintWarning("reagents contribute element(s) not in the target: %v", res.Extra)
	}
	if res.ToleranceExceeded {
		style.PrintWarning("verification residual exceeds tolerance %s", cfg.Tolerance)
	}

	fmt.Println()
	fmt.Print(report.Render(plan))

	if planSave {
		id, err := saveRun(plan)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Printf("\n%s Saved as run %s\n", style.SuccessPrefix, style.Dim.Render(id))
	}
	return nil
}

// planInputs resolves the run inputs from flags, or from the
// interactive form when no target was given. A nil result with nil
// error means the user cancelled the form.
func planInputs() (*planner.Inputs, error) {
	if planTarget != "" {
		if len(planReagents) == 0 {
			return nil, fmt.Errorf("at least one --reagent is required")
		}
		if (planGrams == "") == (planMoles == "") {
			return nil, fmt.Errorf("exactly one of --grams or --moles is required")
		}
		raw, unit := planGrams, solve.Grams
		if planMoles != "" {
			raw, unit = planMoles, solve.Moles
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", raw)
		}
		if amount.Sign() <= 0 {
			return nil, fmt.Errorf("amount must be positive, got %s", amount)
		}
		return &planner.Inputs{
			Target:   planTarget,
			Reagents: planReagents,
			Amount:   amount,
			Unit:     unit,
		}, nil
	}

	if !ui.IsTerminal() {
		return nil, fmt.Errorf("no --target given and stdin is not a terminal")
	}
	final, err := tea.NewProgram(planner.New()).Run()
	if err != nil {
		return nil, fmt.Errorf("running planner form: %w", err)
	}
	m := final.(planner.Model)
	if m.Aborted() || !m.Done() {
		return nil, nil
	}
	inputs := m.Result()
	return &inputs, nil
}

// buildPlan parses the formulas and computes molar masses, echoing them
// the way the interactive flow expects before the solve output.
func buildPlan(inputs planner.Inputs, table *ptable.Table) (report.Plan, error) {
	target, err := formula.Parse(inputs.Target)
	if err != nil {
		return report.Plan{}, err
	}
	mm, err := table.MolarMass(target)
	if err != nil {
		return report.Plan{}, fmt.Errorf("target %s: %w", inputs.Target, err)
	}

	reagents := make([]solve.Reagent, 0, len(inputs.Reagents))
	for _, label := range inputs.Reagents {
		comp, err := formula.Parse(label)
		if err != nil {
			return report.Plan{}, err
		}
		rmm, err := table.MolarMass(comp)
		if err != nil {
			return report.Plan{}, fmt.Errorf("reagent %s: %w", label, err)
		}
		reagents = append(reagents, solve.Reagent{
			Label:       label,
			Composition: comp,
			MolarMass:   rmm,
		})
	}

	return report.Plan{
		Target:          inputs.Target,
		TargetComp:      target,
		TargetMolarMass: mm,
		Amount:          inputs.Amount,
		Unit:            inputs.Unit,
		Reagents:        reagents,
	}, nil
}

// massTable returns the reference table with user overrides applied.
func massTable() (*ptable.Table, error) {
	path := cfg.Masses
	if path == "" {
		var err error
		path, err = ptable.DefaultOverridesPath()
		if err != nil {
			return nil, err
		}
	}
	overrides, err := ptable.LoadOverrides(path)
	if err != nil {
		return nil, err
	}
	return ptable.Default().WithOverrides(overrides), nil
}

// saveRun persists the solved plan and returns its run ID.
func saveRun(plan report.Plan) (string, error) {
	dir, err := history.DefaultDir()
	if err != nil {
		return "", err
	}
	rec := history.Record{
		Target:          plan.Target,
		TargetMolarMass: plan.TargetMolarMass.String(),
		TargetMoles:     plan.Result.TargetMoles.String(),
		Amount:          plan.Amount.String(),
		Unit:            plan.Unit.String(),
		TotalMass:       plan.Result.TotalMass.String(),
		Degraded:        plan.Result.Degraded,
	}
	for i, ra := range plan.Result.Reagents {
		rec.Reagents = append(rec.Reagents, history.ReagentRecord{
			Formula:   ra.Label,
			MolarMass: plan.Reagents[i].MolarMass.String(),
			Moles:     ra.Moles.String(),
			Mass:      ra.Mass.String(),
		})
	}
	return history.Save(dir, rec)
}

// planResultJSON is the machine-readable plan output.
type planResultJSON struct {
	Target          string             `json:"target"`
	TargetMolarMass string             `json:"target_molar_mass"`
	TargetMoles     string             `json:"target_moles"`
	Amount          string             `json:"amount"`
	Unit            string             `json:"unit"`
	TotalMass       string             `json:"total_mass"`
	Degraded        bool               `json:"degraded"`
	Reagents        []reagentJSON      `json:"reagents"`
	Verification    []verificationJSON `json:"verification"`
}

type reagentJSON struct {
	Formula   string `json:"formula"`
	MolarMass string `json:"molar_mass"`
	Moles     string `json:"moles"`
	Mass      string `json:"mass"`
}

type verificationJSON struct {
	Element string `json:"element"`
	Target  string `json:"target"`
	Actual  string `json:"actual"`
	Diff    string `json:"diff"`
}

func printPlanJSON(plan report.Plan) error {
	out := planResultJSON{
		Target:          plan.Target,
		TargetMolarMass: plan.TargetMolarMass.String(),
		TargetMoles:     plan.Result.TargetMoles.String(),
		Amount:          plan.Amount.String(),
		Unit:            plan.Unit.String(),
		TotalMass:       plan.Result.TotalMass.String(),
		Degraded:        plan.Result.Degraded,
	}
	for i, ra := range plan.Result.Reagents {
		out.Reagents = append(out.Reagents, reagentJSON{
			Formula:   ra.Label,
			MolarMass: plan.Reagents[i].MolarMass.String(),
			Moles:     ra.Moles.String(),
			Mass:      ra.Mass.String(),
		})
	}
	for _, v := range plan.Result.Verification {
		out.Verification = append(out.Verification, verificationJSON{
			Element: v.Element,
			Target:  v.Target.String(),
			Actual:  v.Actual.String(),
			Diff:    v.Diff.String(),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
