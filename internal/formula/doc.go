// Package formula parses chemical formula strings into element compositions.
//
// # Overview
//
// A formula is a run of element symbols, each optionally followed by a
// decimal subscript, with no separators:
//
//	Li5.5PS4.5Cl1.5
//	(Li 5.5, P 1, S 4.5, Cl 1.5)
//
// Subscripts may be fractional, which is the whole point: the package
// exists to describe non-stoichiometric compounds (doped phases, solid
// solutions) whose unit-cell occupancies are not integers. Quantities
// are parsed directly into arbitrary-precision decimals so the literal
// "4.5" survives exactly; no float64 is ever involved.
//
// # Quick start
//
//	comp, err := formula.Parse("Li5.5PS4.5Cl1.5")
//	if err != nil {
//	    var perr *formula.ParseError
//	    if errors.As(err, &perr) {
//	        // perr.Offset and perr.Token locate the problem
//	    }
//	}
//	for _, term := range comp.Terms() {
//	    fmt.Println(term.Symbol, term.Quantity)
//	}
//
// # Symbol matching
//
// The scanner matches greedily against the full periodic table: a
// two-letter symbol is tried first, then a one-letter symbol. "Co" is
// cobalt, never carbon + a stray 'o' (which is not an element and would
// be an error anyway). Repeated symbols within one formula are summed,
// so "FeOFe" is Fe2 O1.
package formula
