package formula

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParse_Argyrodite(t *testing.T) {
	comp, err := Parse("Li5.5PS4.5Cl1.5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []struct {
		symbol string
		qty    string
	}{
		{"Li", "5.5"},
		{"P", "1"},
		{"S", "4.5"},
		{"Cl", "1.5"},
	}
	terms := comp.Terms()
	if len(terms) != len(want) {
		t.Fatalf("len(Terms) = %d, want %d", len(terms), len(want))
	}
	for i, w := range want {
		if terms[i].Symbol != w.symbol {
			t.Errorf("terms[%d].Symbol = %q, want %q", i, terms[i].Symbol, w.symbol)
		}
		if !terms[i].Quantity.Equal(dec(w.qty)) {
			t.Errorf("terms[%d].Quantity = %s, want %s", i, terms[i].Quantity, w.qty)
		}
	}
}

func TestParse_TwoLetterGreedy(t *testing.T) {
	// "Co" must parse as cobalt, not carbon + invalid "o".
	comp, err := Parse("Co2O3")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := comp.Format(); got != "Co2O3" {
		t.Errorf("Format = %q, want %q", got, "Co2O3")
	}
	qty, ok := comp.Get("Co")
	if !ok || !qty.Equal(dec("2")) {
		t.Errorf("Get(Co) = %s, %v; want 2, true", qty, ok)
	}
}

func TestParse_OneLetterFallback(t *testing.T) {
	// "CO" is carbon + oxygen: no two-letter symbol "CO" exists.
	comp, err := Parse("CO2")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	syms := comp.Symbols()
	if len(syms) != 2 || syms[0] != "C" || syms[1] != "O" {
		t.Errorf("Symbols = %v, want [C O]", syms)
	}
}

func TestParse_MergesRepeatedElements(t *testing.T) {
	comp, err := Parse("FeO1.5Fe0.5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	qty, _ := comp.Get("Fe")
	if !qty.Equal(dec("1.5")) {
		t.Errorf("Get(Fe) = %s, want 1.5", qty)
	}
	if comp.Len() != 2 {
		t.Errorf("Len = %d, want 2", comp.Len())
	}
	// First-occurrence order is preserved for the merged element.
	if syms := comp.Symbols(); syms[0] != "Fe" {
		t.Errorf("Symbols[0] = %q, want Fe", syms[0])
	}
}

func TestParse_ZeroQuantityDropped(t *testing.T) {
	comp, err := Parse("Fe0O1.5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := comp.Get("Fe"); ok {
		t.Error("Get(Fe) present, want dropped for zero quantity")
	}
	if comp.Len() != 1 {
		t.Errorf("Len = %d, want 1", comp.Len())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		offset  int
		reason  string
	}{
		{"empty", "", 0, "empty formula"},
		{"lowercase start", "liCl", 0, "unknown element symbol"},
		{"invalid symbol", "Xx2", 0, "unknown element symbol"},
		{"stray letter", "CoQ10", 2, "unknown element symbol"},
		{"double dot", "Li5..5", 2, "malformed number"},
		{"two dots", "Li1.2.3", 2, "malformed number"},
		{"bare dot", "Li.", 2, "malformed number"},
		{"trailing dot", "Li5.", 2, "malformed number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.formula)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.formula)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if perr.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", perr.Reason, tt.reason)
			}
			if tt.reason != "empty formula" && perr.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", perr.Offset, tt.offset)
			}
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	formulas := []string{
		"Li5.5PS4.5Cl1.5",
		"LiCl",
		"P2S5",
		"Li2S",
		"H2O",
		"La0.67Sr0.33MnO3",
		"UF6",
	}
	for _, f := range formulas {
		comp, err := Parse(f)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", f, err)
		}
		again, err := Parse(comp.Format())
		if err != nil {
			t.Fatalf("re-Parse(%q) failed: %v", comp.Format(), err)
		}
		if comp.Len() != again.Len() {
			t.Fatalf("%q: Len = %d after round trip, want %d", f, again.Len(), comp.Len())
		}
		for _, term := range comp.Terms() {
			qty, ok := again.Get(term.Symbol)
			if !ok {
				t.Errorf("%q: %s missing after round trip", f, term.Symbol)
				continue
			}
			if !qty.Equal(term.Quantity) {
				t.Errorf("%q: %s = %s after round trip, want %s", f, term.Symbol, qty, term.Quantity)
			}
		}
	}
}

func TestParse_FractionalPrecisionPreserved(t *testing.T) {
	comp, err := Parse("Li6.999999999999999999999999P")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	qty, _ := comp.Get("Li")
	if !qty.Equal(dec("6.999999999999999999999999")) {
		t.Errorf("Get(Li) = %s, lost precision", qty)
	}
}

func TestIsKnownSymbol(t *testing.T) {
	for _, s := range []string{"H", "Og", "Uuo", "li", "", "X"} {
		want := s == "H" || s == "Og"
		if got := IsKnownSymbol(s); got != want {
			t.Errorf("IsKnownSymbol(%q) = %v, want %v", s, got, want)
		}
	}
}
