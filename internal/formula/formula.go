package formula

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Term is one (symbol, quantity) pair of a composition.
type Term struct {
	Symbol   string
	Quantity decimal.Decimal
}

// Composition is an ordered element→quantity mapping. Order is the
// first-occurrence order in the source formula; it matters only for
// display. All stored quantities are > 0.
type Composition struct {
	terms []Term
	index map[string]int
}

// ParseError reports a formula that could not be scanned.
type ParseError struct {
	Input  string // the full formula string
	Offset int    // byte offset of the offending token
	Token  string // the text that could not be matched
	Reason string // "unknown element symbol" or "malformed number"
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing formula %q: %s %q at offset %d",
		e.Input, e.Reason, e.Token, e.Offset)
}

var one = decimal.NewFromInt(1)

// Parse scans a formula string into a Composition.
//
// Symbols are matched greedily (two letters before one) against the full
// periodic vocabulary. A symbol may be followed by a decimal subscript;
// a missing subscript means 1. Repeated symbols are summed. Terms with a
// zero subscript are dropped.
func Parse(s string) (Composition, error) {
	comp := Composition{index: make(map[string]int)}
	if s == "" {
		return comp, &ParseError{Input: s, Reason: "empty formula", Token: ""}
	}

	i := 0
	for i < len(s) {
		sym, n := matchSymbol(s[i:])
		if n == 0 {
			return Composition{}, &ParseError{
				Input:  s,
				Offset: i,
				Token:  tokenAt(s, i),
				Reason: "unknown element symbol",
			}
		}
		i += n

		lit, n := matchNumber(s[i:])
		if n < 0 {
			return Composition{}, &ParseError{
				Input:  s,
				Offset: i,
				Token:  lit,
				Reason: "malformed number",
			}
		}
		i += n

		qty := one
		if lit != "" {
			var err error
			qty, err = decimal.NewFromString(lit)
			if err != nil {
				return Composition{}, &ParseError{
					Input:  s,
					Offset: i - n,
					Token:  lit,
					Reason: "malformed number",
				}
			}
		}
		comp.add(sym, qty)
	}
	return comp, nil
}

// MustParse is Parse for compositions known valid at compile time.
// It panics on error and exists for tests and examples.
func MustParse(s string) Composition {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// matchSymbol returns the longest valid element symbol at the start of s
// and its length, or ("", 0) if none matches.
func matchSymbol(s string) (string, int) {
	if len(s) == 0 || s[0] < 'A' || s[0] > 'Z' {
		return "", 0
	}
	if len(s) >= 2 && s[1] >= 'a' && s[1] <= 'z' {
		two := s[:2]
		if knownSymbols[two] {
			return two, 2
		}
	}
	if knownSymbols[s[:1]] {
		return s[:1], 1
	}
	return "", 0
}

// matchNumber returns the decimal literal at the start of s and its
// length. An empty literal with length 0 means no subscript. A negative
// length signals a malformed literal (multiple dots, or a dot with no
// digits), returned together with the offending text.
func matchNumber(s string) (string, int) {
	n := 0
	dots := 0
	digits := 0
	for n < len(s) && (s[n] == '.' || (s[n] >= '0' && s[n] <= '9')) {
		if s[n] == '.' {
			dots++
		} else {
			digits++
		}
		n++
	}
	if n == 0 {
		return "", 0
	}
	if dots > 1 || digits == 0 || s[n-1] == '.' {
		return s[:n], -1
	}
	return s[:n], n
}

// tokenAt extracts a short error-context token starting at offset i.
func tokenAt(s string, i int) string {
	end := i
	for end < len(s) && end < i+8 {
		end++
	}
	return s[i:end]
}

// add merges a term into the composition, summing repeated symbols and
// dropping zero quantities.
func (c *Composition) add(symbol string, qty decimal.Decimal) {
	if qty.Sign() == 0 {
		return
	}
	if idx, ok := c.index[symbol]; ok {
		c.terms[idx].Quantity = c.terms[idx].Quantity.Add(qty)
		return
	}
	c.index[symbol] = len(c.terms)
	c.terms = append(c.terms, Term{Symbol: symbol, Quantity: qty})
}

// Len returns the number of distinct elements.
func (c Composition) Len() int { return len(c.terms) }

// Terms returns the composition's terms in first-occurrence order.
// The returned slice is a copy.
func (c Composition) Terms() []Term {
	out := make([]Term, len(c.terms))
	copy(out, c.terms)
	return out
}

// Get returns the quantity of symbol and whether it is present.
func (c Composition) Get(symbol string) (decimal.Decimal, bool) {
	idx, ok := c.index[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return c.terms[idx].Quantity, true
}

// Symbols returns the element symbols in first-occurrence order.
func (c Composition) Symbols() []string {
	out := make([]string, len(c.terms))
	for i, t := range c.terms {
		out[i] = t.Symbol
	}
	return out
}

// Format renders the composition back into formula notation. A quantity
// of exactly 1 is omitted, so Parse(c.Format()) reproduces c.
func (c Composition) Format() string {
	var sb strings.Builder
	for _, t := range c.terms {
		sb.WriteString(t.Symbol)
		if !t.Quantity.Equal(one) {
			sb.WriteString(t.Quantity.String())
		}
	}
	return sb.String()
}

// String implements fmt.Stringer as "Li:5.5 P:1 S:4.5" for debugging
// and report echoes.
func (c Composition) String() string {
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		parts[i] = t.Symbol + ":" + t.Quantity.String()
	}
	return strings.Join(parts, " ")
}
