package solve

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/steveyegge/stoich/internal/formula"
	"github.com/steveyegge/stoich/internal/ptable"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// reagent builds a Reagent from a formula using the embedded mass table.
func reagent(t *testing.T, f string) Reagent {
	t.Helper()
	comp := formula.MustParse(f)
	mm, err := ptable.Default().MolarMass(comp)
	if err != nil {
		t.Fatalf("MolarMass(%s) failed: %v", f, err)
	}
	return Reagent{Label: f, Composition: comp, MolarMass: mm}
}

// argyroditeRequest is the reference scenario: 1 g of Li5.5PS4.5Cl1.5
// from LiCl, P2S5 and Li2S.
func argyroditeRequest(t *testing.T) Request {
	t.Helper()
	target := formula.MustParse("Li5.5PS4.5Cl1.5")
	mm, err := ptable.Default().MolarMass(target)
	if err != nil {
		t.Fatal(err)
	}
	return Request{
		Target:          target,
		TargetMolarMass: mm,
		Amount:          dec("1"),
		Unit:            Grams,
		Reagents: []Reagent{
			reagent(t, "LiCl"),
			reagent(t, "P2S5"),
			reagent(t, "Li2S"),
		},
	}
}

// within asserts |got−want| ≤ bound.
func within(t *testing.T, name string, got decimal.Decimal, want, bound string) {
	t.Helper()
	diff := got.Sub(dec(want)).Abs()
	if diff.Cmp(dec(bound)) > 0 {
		t.Errorf("%s = %s, want %s within %s (off by %s)", name, got, want, bound, diff)
	}
}

func TestSolve_Argyrodite(t *testing.T) {
	req := argyroditeRequest(t)
	if !req.TargetMolarMass.Equal(dec("266.599")) {
		t.Fatalf("target molar mass = %s, want 266.599", req.TargetMolarMass)
	}

	res, err := Solve(req)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	within(t, "TargetMoles", res.TargetMoles, "0.00375095180402027", "1e-17")

	wantMoles := []string{"0.0056264277", "0.0018754759", "0.0075019036"}
	wantMass := []string{"0.2385267762", "0.4168207683", "0.3446524556"}
	if len(res.Reagents) != 3 {
		t.Fatalf("len(Reagents) = %d, want 3", len(res.Reagents))
	}
	for i, ra := range res.Reagents {
		within(t, ra.Label+" moles", ra.Moles, wantMoles[i], "1e-10")
		within(t, ra.Label+" mass", ra.Mass, wantMass[i], "1e-9")
	}

	within(t, "TotalMass", res.TotalMass, "1", "1e-9")

	// Four element rows for three reagents: consistent but non-square.
	if !res.Degraded {
		t.Error("Degraded = false, want true for 4 elements x 3 reagents")
	}
	if len(res.Extra) != 0 {
		t.Errorf("Extra = %v, want none", res.Extra)
	}
	if res.ToleranceExceeded {
		t.Error("ToleranceExceeded = true, want false")
	}

	if len(res.Verification) != 4 {
		t.Fatalf("len(Verification) = %d, want 4", len(res.Verification))
	}
	for _, v := range res.Verification {
		if v.Diff.Abs().Cmp(dec("1e-10")) > 0 {
			t.Errorf("residual for %s = %s, want |diff| < 1e-10", v.Element, v.Diff)
		}
	}
}

func TestSolve_VerificationTargets(t *testing.T) {
	// The verification table's Target column must be the composition
	// quantity scaled by target moles for every element row, independent
	// of what the elimination did to its working vectors.
	req := argyroditeRequest(t)
	res, err := Solve(req)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if len(res.Verification) != 4 {
		t.Fatalf("len(Verification) = %d, want 4", len(res.Verification))
	}
	for _, v := range res.Verification {
		qty, ok := req.Target.Get(v.Element)
		if !ok {
			t.Fatalf("verification row for %s, not a target element", v.Element)
		}
		want := qty.Mul(res.TargetMoles)
		if !v.Target.Equal(want) {
			t.Errorf("Target[%s] = %s, want %s", v.Element, v.Target, want)
		}
		if !v.Diff.Equal(v.Target.Sub(v.Actual)) {
			t.Errorf("Diff[%s] = %s, want Target−Actual = %s",
				v.Element, v.Diff, v.Target.Sub(v.Actual))
		}
	}
	if res.ToleranceExceeded {
		t.Error("ToleranceExceeded = true on an exactly solvable system")
	}
}

func TestSolve_Idempotent(t *testing.T) {
	req := argyroditeRequest(t)
	first, err := Solve(req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Solve(req)
	if err != nil {
		t.Fatal(err)
	}

	if !first.TargetMoles.Equal(second.TargetMoles) {
		t.Errorf("TargetMoles differ: %s vs %s", first.TargetMoles, second.TargetMoles)
	}
	for i := range first.Reagents {
		if !first.Reagents[i].Moles.Equal(second.Reagents[i].Moles) {
			t.Errorf("Reagents[%d].Moles differ: %s vs %s",
				i, first.Reagents[i].Moles, second.Reagents[i].Moles)
		}
		if !first.Reagents[i].Mass.Equal(second.Reagents[i].Mass) {
			t.Errorf("Reagents[%d].Mass differ: %s vs %s",
				i, first.Reagents[i].Mass, second.Reagents[i].Mass)
		}
	}
	for i := range first.Verification {
		if !first.Verification[i].Diff.Equal(second.Verification[i].Diff) {
			t.Errorf("Verification[%d].Diff differ: %s vs %s",
				i, first.Verification[i].Diff, second.Verification[i].Diff)
		}
	}
}

func TestSolve_MolesUnit(t *testing.T) {
	req := argyroditeRequest(t)
	req.Amount = dec("2")
	req.Unit = Moles

	res, err := Solve(req)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !res.TargetMoles.Equal(dec("2")) {
		t.Errorf("TargetMoles = %s, want 2", res.TargetMoles)
	}
	// Basis is {1.5, 0.5, 2} per mole of target; exact at 2 moles.
	wantMoles := []string{"3", "1", "4"}
	for i, ra := range res.Reagents {
		if !ra.Moles.Equal(dec(wantMoles[i])) {
			t.Errorf("%s moles = %s, want %s", ra.Label, ra.Moles, wantMoles[i])
		}
	}
}

func TestSolve_SquareSystem(t *testing.T) {
	// NaCl from Na and Cl2: 2 elements, 2 reagents, fully determined.
	req := Request{
		Target:          formula.MustParse("NaCl"),
		TargetMolarMass: dec("58.443"),
		Amount:          dec("1"),
		Unit:            Moles,
		Reagents: []Reagent{
			reagent(t, "Na"),
			reagent(t, "Cl2"),
		},
	}
	res, err := Solve(req)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if res.Degraded {
		t.Error("Degraded = true for a square system")
	}
	if !res.Reagents[0].Moles.Equal(dec("1")) {
		t.Errorf("Na moles = %s, want 1", res.Reagents[0].Moles)
	}
	if !res.Reagents[1].Moles.Equal(dec("0.5")) {
		t.Errorf("Cl2 moles = %s, want 0.5", res.Reagents[1].Moles)
	}
}

func TestSolve_MissingElement(t *testing.T) {
	// No reagent provides Cl.
	req := argyroditeRequest(t)
	req.Reagents = []Reagent{
		reagent(t, "P2S5"),
		reagent(t, "Li2S"),
	}

	_, err := Solve(req)
	var ierr *InfeasibleError
	if !errors.As(err, &ierr) {
		t.Fatalf("error type = %T, want *InfeasibleError", err)
	}
	if len(ierr.MissingElements) != 1 || ierr.MissingElements[0] != "Cl" {
		t.Errorf("MissingElements = %v, want [Cl]", ierr.MissingElements)
	}
}

func TestSolve_NegativeComponent(t *testing.T) {
	// Target LiCl0.5 from LiCl and Cl2: balancing Li fixes LiCl at 1,
	// which already delivers Cl 1 where only 0.5 is wanted, so Cl2 must
	// go negative. Physically meaningless, must be rejected.
	req := Request{
		Target:          formula.MustParse("LiCl0.5"),
		TargetMolarMass: dec("24.6675"),
		Amount:          dec("1"),
		Unit:            Moles,
		Reagents: []Reagent{
			reagent(t, "LiCl"),
			reagent(t, "Cl2"),
		},
	}
	_, err := Solve(req)
	var ierr *InfeasibleError
	if !errors.As(err, &ierr) {
		t.Fatalf("error = %v (%T), want *InfeasibleError", err, err)
	}
	if len(ierr.NegativeReagents) != 1 || ierr.NegativeReagents[0] != "Cl2" {
		t.Errorf("NegativeReagents = %v, want [Cl2]", ierr.NegativeReagents)
	}
}

func TestSolve_NoExactSolution(t *testing.T) {
	// A single reagent with the wrong element ratio over-constrains the
	// system: P2S5 alone fixes P at 0.5 mol, which delivers S 2.5 where
	// the target wants 2.
	req := Request{
		Target:          formula.MustParse("PS2"),
		TargetMolarMass: dec("95.094"),
		Amount:          dec("1"),
		Unit:            Moles,
		Reagents: []Reagent{
			reagent(t, "P2S5"), // fixes P at 0.5, delivering S 2.5 ≠ 2
		},
	}
	_, err := Solve(req)
	if !errors.Is(err, ErrNoExactSolution) {
		t.Fatalf("error = %v, want ErrNoExactSolution", err)
	}
}

func TestSolve_ExtraElementCancellation(t *testing.T) {
	// Reagents bring in an element the target lacks. With one reagent
	// holding O, the only consistent amount of it is zero.
	req := Request{
		Target:          formula.MustParse("Li2S"),
		TargetMolarMass: dec("45.942"),
		Amount:          dec("1"),
		Unit:            Moles,
		Reagents: []Reagent{
			reagent(t, "Li2S"),
			reagent(t, "O2"),
		},
	}
	res, err := Solve(req)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(res.Extra) != 1 || res.Extra[0] != "O" {
		t.Errorf("Extra = %v, want [O]", res.Extra)
	}
	if !res.Reagents[1].Moles.Equal(decimal.Zero) {
		t.Errorf("O2 moles = %s, want 0", res.Reagents[1].Moles)
	}
}

func TestSolve_InputValidation(t *testing.T) {
	base := argyroditeRequest(t)

	req := base
	req.Reagents = nil
	if _, err := Solve(req); !errors.Is(err, ErrNoReagents) {
		t.Errorf("no reagents: error = %v, want ErrNoReagents", err)
	}

	req = base
	req.Amount = dec("0")
	if _, err := Solve(req); err == nil {
		t.Error("zero amount: Solve succeeded, want error")
	}

	req = base
	req.Amount = dec("-1")
	if _, err := Solve(req); err == nil {
		t.Error("negative amount: Solve succeeded, want error")
	}

	req = base
	req.TargetMolarMass = dec("0")
	if _, err := Solve(req); err == nil {
		t.Error("zero molar mass with gram amount: Solve succeeded, want error")
	}

	req = base
	req.Target = formula.Composition{}
	if _, err := Solve(req); err == nil {
		t.Error("empty target: Solve succeeded, want error")
	}
}

func TestAmountUnit_String(t *testing.T) {
	if Grams.String() != "g" {
		t.Errorf("Grams.String() = %q, want g", Grams.String())
	}
	if Moles.String() != "mol" {
		t.Errorf("Moles.String() = %q, want mol", Moles.String())
	}
}
