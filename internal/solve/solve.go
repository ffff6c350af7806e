// Package solve computes reagent quantities for a target stoichiometry.
//
// Given a target composition and a reagent set, Solve finds the
// non-negative reagent amounts whose combined element contributions
// reproduce the target's stoichiometry, scaled to a requested total
// amount. The linear system is solved with Gaussian elimination over
// arbitrary-precision decimals; float64 never enters the computation.
//
// Solve is a pure function: no state survives a call, and identical
// requests produce identical results.
package solve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/steveyegge/stoich/internal/formula"
)

// DefaultPrecision is the number of digits carried by decimal division
// when Request.Precision is unset. It mirrors the working precision of
// the whole pipeline and is deliberately far beyond display precision
// so rounding never reaches reportable digits.
const DefaultPrecision int32 = 100

// DefaultToleranceStr is the verification tolerance when
// Request.Tolerance is unset.
const DefaultToleranceStr = "1e-10"

// AmountUnit says how Request.Amount is expressed.
type AmountUnit int

const (
	// Grams means Amount is a mass, converted to moles via the target
	// molar mass.
	Grams AmountUnit = iota
	// Moles means Amount is used as target moles directly.
	Moles
)

func (u AmountUnit) String() string {
	if u == Moles {
		return "mol"
	}
	return "g"
}

// Reagent is one input compound of the synthesis.
type Reagent struct {
	Label       string
	Composition formula.Composition
	MolarMass   decimal.Decimal
}

// Request carries everything Solve needs.
type Request struct {
	Target          formula.Composition
	TargetMolarMass decimal.Decimal
	Amount          decimal.Decimal
	Unit            AmountUnit
	Reagents        []Reagent

	// Precision is the division digit count; 0 means DefaultPrecision.
	// It must be established once per process and held constant so
	// repeated runs are comparable.
	Precision int32
	// Tolerance bounds acceptable verification residuals; zero value
	// means DefaultToleranceStr.
	Tolerance decimal.Decimal
}

// ReagentAmount is the computed requirement for one reagent.
type ReagentAmount struct {
	Label string
	Moles decimal.Decimal
	Mass  decimal.Decimal
}

// Residual is one element's verification row: the element amount the
// target requires, the amount the solved reagent mix actually delivers,
// and their difference.
type Residual struct {
	Element string
	Target  decimal.Decimal
	Actual  decimal.Decimal
	Diff    decimal.Decimal
}

// Result is the structured outcome of a solve.
type Result struct {
	TargetMoles  decimal.Decimal
	Reagents     []ReagentAmount
	TotalMass    decimal.Decimal
	Verification []Residual

	// Degraded is set when the element-row count differs from the
	// reagent count. The numbers are still produced, but the system was
	// not square and the caller should present them with a warning.
	Degraded bool
	// Extra lists elements contributed by reagents that the target does
	// not contain. Their target amount is zero; the solve only succeeds
	// if their contributions cancel.
	Extra []string
	// ToleranceExceeded is set when any verification residual exceeds
	// the tolerance. Reported, not an error.
	ToleranceExceeded bool
}

// ErrNoExactSolution is returned when the reagent set cannot reproduce
// the target composition in any proportion.
var ErrNoExactSolution = errors.New("reagent set cannot reproduce the target composition exactly")

// ErrNoReagents is returned for a request with an empty reagent set.
var ErrNoReagents = errors.New("no reagents given")

// InfeasibleError reports a solve whose answer has no physical meaning:
// either target elements no reagent can supply, or a solution that
// requires negative reagent amounts.
type InfeasibleError struct {
	MissingElements  []string
	NegativeReagents []string
}

func (e *InfeasibleError) Error() string {
	switch {
	case len(e.MissingElements) > 0:
		return fmt.Sprintf("target element(s) %s are not provided by any reagent",
			strings.Join(e.MissingElements, ", "))
	case len(e.NegativeReagents) > 0:
		return fmt.Sprintf("solution requires negative amount(s) of reagent(s) %s",
			strings.Join(e.NegativeReagents, ", "))
	}
	return "infeasible reagent system"
}

// Solve computes the reagent amounts for the request.
//
// The linear system is built for one mole of target and the basis
// solution is scaled by the requested target moles afterwards, so the
// matrix entries stay exact composition decimals.
func Solve(req Request) (*Result, error) {
	if len(req.Reagents) == 0 {
		return nil, ErrNoReagents
	}
	if req.Target.Len() == 0 {
		return nil, errors.New("target composition is empty")
	}
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("total amount must be positive, got %s", req.Amount)
	}

	prec := req.Precision
	if prec == 0 {
		prec = DefaultPrecision
	}
	tol := req.Tolerance
	if tol.Sign() == 0 {
		tol = decimal.RequireFromString(DefaultToleranceStr)
	}

	// Step 1: normalize the requested amount to moles of target.
	targetMoles := req.Amount
	if req.Unit == Grams {
		if req.TargetMolarMass.Sign() <= 0 {
			return nil, fmt.Errorf("target molar mass must be positive, got %s", req.TargetMolarMass)
		}
		targetMoles = req.Amount.DivRound(req.TargetMolarMass, prec)
	}

	// Steps 2-3: element rows are the union of target and reagent
	// elements, target's first-occurrence order first. The right-hand
	// side is the 1-mol target composition; elements the target lacks
	// get zero and must cancel across reagents.
	rows := elementRows(req)
	if missing := uncoveredElements(req); len(missing) > 0 {
		return nil, &InfeasibleError{MissingElements: missing}
	}

	a := make([][]decimal.Decimal, len(rows))
	b := make([]decimal.Decimal, len(rows))
	for i, elem := range rows {
		a[i] = make([]decimal.Decimal, len(req.Reagents))
		for j, reagent := range req.Reagents {
			qty, _ := reagent.Composition.Get(elem)
			a[i][j] = qty
		}
		qty, _ := req.Target.Get(elem)
		b[i] = qty
	}

	// Step 4: solve the 1-mol basis.
	basis, err := gaussianSolve(a, b, prec, tol)
	if err != nil {
		return nil, err
	}

	// Step 5: reject negative components. Division rounding can leave
	// dust below zero; anything within tolerance clamps to zero.
	var negative []string
	for i := range basis {
		if basis[i].Sign() < 0 {
			if basis[i].Abs().Cmp(tol) > 0 {
				negative = append(negative, req.Reagents[i].Label)
			} else {
				basis[i] = decimal.Zero
			}
		}
	}
	if len(negative) > 0 {
		return nil, &InfeasibleError{NegativeReagents: negative}
	}

	// Step 6: scale to the requested amount and convert to mass.
	res := &Result{
		TargetMoles: targetMoles,
		Degraded:    len(rows) != len(req.Reagents),
		Extra:       extraElements(req, rows),
	}
	moles := make([]decimal.Decimal, len(basis))
	total := decimal.Zero
	for i, reagent := range req.Reagents {
		moles[i] = basis[i].Mul(targetMoles)
		mass := moles[i].Mul(reagent.MolarMass)
		total = total.Add(mass)
		res.Reagents = append(res.Reagents, ReagentAmount{
			Label: reagent.Label,
			Moles: moles[i],
			Mass:  mass,
		})
	}
	res.TotalMass = total

	// Step 7: verify per-element balance at the requested scale. The
	// right-hand side vector was consumed by the elimination, so the
	// 1-mol target quantities are re-read from the composition.
	for _, elem := range rows {
		actual := decimal.Zero
		for j, reagent := range req.Reagents {
			qty, _ := reagent.Composition.Get(elem)
			actual = actual.Add(moles[j].Mul(qty))
		}
		qty, _ := req.Target.Get(elem)
		target := qty.Mul(targetMoles)
		diff := target.Sub(actual)
		res.Verification = append(res.Verification, Residual{
			Element: elem,
			Target:  target,
			Actual:  actual,
			Diff:    diff,
		})
		if diff.Abs().Cmp(residualBound(tol, target)) > 0 {
			res.ToleranceExceeded = true
		}
	}

	return res, nil
}

// residualBound is the acceptance threshold for one element: relative
// to the target amount, with an absolute floor of the tolerance itself
// for near-zero targets.
func residualBound(tol, target decimal.Decimal) decimal.Decimal {
	scale := target.Abs()
	if scale.Cmp(decimal.New(1, 0)) < 0 {
		return tol
	}
	return tol.Mul(scale)
}

// elementRows returns the union of target and reagent elements: target
// order first, then new reagent elements in appearance order.
func elementRows(req Request) []string {
	seen := make(map[string]bool)
	var rows []string
	for _, sym := range req.Target.Symbols() {
		seen[sym] = true
		rows = append(rows, sym)
	}
	for _, reagent := range req.Reagents {
		for _, sym := range reagent.Composition.Symbols() {
			if !seen[sym] {
				seen[sym] = true
				rows = append(rows, sym)
			}
		}
	}
	return rows
}

// uncoveredElements returns target elements that no reagent provides.
func uncoveredElements(req Request) []string {
	var missing []string
	for _, sym := range req.Target.Symbols() {
		covered := false
		for _, reagent := range req.Reagents {
			if _, ok := reagent.Composition.Get(sym); ok {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, sym)
		}
	}
	return missing
}

// extraElements returns row elements absent from the target.
func extraElements(req Request, rows []string) []string {
	var extra []string
	for _, sym := range rows {
		if _, ok := req.Target.Get(sym); !ok {
			extra = append(extra, sym)
		}
	}
	return extra
}
