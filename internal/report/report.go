// Package report renders solve results for the terminal.
// The solver returns structured data only; everything about columns,
// precision of display and styling lives here.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/steveyegge/stoich/internal/formula"
	"github.com/steveyegge/stoich/internal/solve"
	"github.com/steveyegge/stoich/internal/style"
)

// displayPlaces is the fixed number of decimal places for moles, masses
// and residuals in reports. Internals carry far more digits; ten places
// is what fits a lab notebook.
const displayPlaces = 10

// Plan bundles everything the report needs about one calculation run.
type Plan struct {
	Target          string
	TargetComp      formula.Composition
	TargetMolarMass decimal.Decimal
	Amount          decimal.Decimal
	Unit            solve.AmountUnit
	Reagents        []solve.Reagent
	Result          *solve.Result
}

// Render formats the full synthesis report.
func Render(p Plan) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s %s  %s\n",
		style.Bold.Render("Target:"),
		p.Target,
		style.Dim.Render("("+p.TargetComp.String()+")")))
	sb.WriteString(fmt.Sprintf("  %s %s g/mol\n",
		style.Bold.Render("Molar mass:"),
		p.TargetMolarMass.String()))
	sb.WriteString(fmt.Sprintf("  %s %s %s %s %s mol\n\n",
		style.Bold.Render("Amount:"),
		p.Amount.String(), p.Unit.String(),
		style.ArrowPrefix,
		style.FixedDecimal(p.Result.TargetMoles, displayPlaces)))

	reagents := style.NewTable(
		style.Column{Name: "Reagent", Width: reagentColWidth(p.Reagents)},
		style.NumCol("M (g/mol)", 12),
		style.NumCol("Moles (mol)", 16),
		style.NumCol("Mass (g)", 16),
	)
	for i, ra := range p.Result.Reagents {
		reagents.AddRow(
			ra.Label,
			p.Reagents[i].MolarMass.String(),
			style.FixedDecimal(ra.Moles, displayPlaces),
			style.FixedDecimal(ra.Mass, displayPlaces),
		)
	}
	sb.WriteString(reagents.Render())
	sb.WriteString(fmt.Sprintf("\n  %s %s g\n",
		style.Bold.Render("Total mass:"),
		style.FixedDecimal(p.Result.TotalMass, displayPlaces)))

	sb.WriteString("\n  " + style.Bold.Render("Verification") + "\n")
	verification := style.NewTable(
		style.Column{Name: "Element", Width: 8},
		style.NumCol("Target (mol)", 16),
		style.NumCol("Actual (mol)", 16),
		style.NumCol("Diff", 14),
	)
	for _, v := range p.Result.Verification {
		verification.AddRow(
			v.Element,
			style.FixedDecimal(v.Target, displayPlaces),
			style.FixedDecimal(v.Actual, displayPlaces),
			formatDiff(v.Diff),
		)
	}
	sb.WriteString(verification.Render())

	return sb.String()
}

// RenderMass formats a single molar mass line with an optional
// per-element breakdown.
func RenderMass(input string, comp formula.Composition, masses []decimal.Decimal, total decimal.Decimal, verbose bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s %s g/mol\n", style.Bold.Render(input+":"), total.String()))
	if verbose {
		terms := comp.Terms()
		breakdown := style.NewTable(
			style.Column{Name: "Element", Width: 8},
			style.NumCol("Count", 10),
			style.NumCol("Mass (g/mol)", 14),
			style.NumCol("Subtotal", 14),
		).SetHeaderSeparator(false)
		for i, term := range terms {
			breakdown.AddRow(
				term.Symbol,
				term.Quantity.String(),
				masses[i].String(),
				term.Quantity.Mul(masses[i]).String(),
			)
		}
		sb.WriteString(breakdown.Render())
	}
	return sb.String()
}

// formatDiff renders a residual: exact zeros stay "0", dust keeps its
// exponent notation so it is recognizable as dust.
func formatDiff(d decimal.Decimal) string {
	if d.Sign() == 0 {
		return "0"
	}
	if d.Abs().Cmp(decimal.New(1, -displayPlaces)) < 0 {
		return "~1e" + fmt.Sprint(magnitude(d))
	}
	return style.FixedDecimal(d, displayPlaces)
}

// magnitude returns the decimal order of magnitude of d.
func magnitude(d decimal.Decimal) int {
	s := d.Abs().String()
	// Exponent of the leading digit: count places to the decimal point.
	if strings.HasPrefix(s, "0.") {
		frac := s[2:]
		n := 0
		for n < len(frac) && frac[n] == '0' {
			n++
		}
		return -(n + 1)
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return i - 1
	}
	return len(s) - 1
}

func reagentColWidth(reagents []solve.Reagent) int {
	width := 10
	for _, r := range reagents {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}
	return width
}
