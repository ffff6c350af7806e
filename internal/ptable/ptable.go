// Package ptable provides the reference atomic mass table and molar mass
// computation. The table is an immutable symbol→mass mapping; masses are
// arbitrary-precision decimals so element sums stay exact.
package ptable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/steveyegge/stoich/internal/formula"
)

// ErrEmptyTable is returned when a mass data source contains no records.
var ErrEmptyTable = errors.New("atomic mass data contains no records")

// LoadError reports a mass data source that could not be read or parsed.
type LoadError struct {
	Source string // file path, or "" for an anonymous reader
	Line   int    // 1-based line number, 0 when not line-specific
	Record string // the offending line, if any
	Err    error
}

func (e *LoadError) Error() string {
	src := e.Source
	if src == "" {
		src = "atomic mass data"
	}
	if e.Line > 0 {
		return fmt.Sprintf("loading %s: line %d %q: %v", src, e.Line, e.Record, e.Err)
	}
	return fmt.Sprintf("loading %s: %v", src, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnknownElementError reports a symbol with no known atomic mass.
// This is fatal for a calculation run: there is no sane default mass.
type UnknownElementError struct {
	Symbol string
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("no atomic mass known for element %q", e.Symbol)
}

// Table is an immutable mapping from element symbol to atomic mass.
type Table struct {
	masses map[string]decimal.Decimal
	order  []string // record order of the source, for listing
}

// Parse reads "symbol mass" records from r. Blank lines and lines
// starting with '#' are skipped. A later record for the same symbol
// replaces the earlier one.
func Parse(r io.Reader) (*Table, error) {
	return parse(r, "")
}

// Load reads a mass table from a file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()
	return parse(f, path)
}

func parse(r io.Reader, source string) (*Table, error) {
	t := &Table{masses: make(map[string]decimal.Decimal)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, &LoadError{
				Source: source,
				Line:   lineNo,
				Record: line,
				Err:    fmt.Errorf("want 2 fields (symbol mass), got %d", len(fields)),
			}
		}
		mass, err := decimal.NewFromString(fields[1])
		if err != nil {
			return nil, &LoadError{
				Source: source,
				Line:   lineNo,
				Record: line,
				Err:    fmt.Errorf("invalid mass %q: %w", fields[1], err),
			}
		}
		if mass.Sign() <= 0 {
			return nil, &LoadError{
				Source: source,
				Line:   lineNo,
				Record: line,
				Err:    fmt.Errorf("mass must be positive, got %s", mass),
			}
		}
		t.set(fields[0], mass)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if len(t.masses) == 0 {
		return nil, &LoadError{Source: source, Err: ErrEmptyTable}
	}
	return t, nil
}

func (t *Table) set(symbol string, mass decimal.Decimal) {
	if _, ok := t.masses[symbol]; !ok {
		t.order = append(t.order, symbol)
	}
	t.masses[symbol] = mass
}

// Lookup returns the atomic mass of symbol.
func (t *Table) Lookup(symbol string) (decimal.Decimal, error) {
	mass, ok := t.masses[symbol]
	if !ok {
		return decimal.Zero, &UnknownElementError{Symbol: symbol}
	}
	return mass, nil
}

// Has reports whether symbol is present.
func (t *Table) Has(symbol string) bool {
	_, ok := t.masses[symbol]
	return ok
}

// Len returns the number of elements in the table.
func (t *Table) Len() int { return len(t.masses) }

// Symbols returns the element symbols in source record order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// MolarMass computes Σ quantity × atomic mass over the composition,
// entirely in decimal arithmetic. It fails with *UnknownElementError if
// any element of the composition is missing from the table.
func (t *Table) MolarMass(c formula.Composition) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, term := range c.Terms() {
		mass, err := t.Lookup(term.Symbol)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(term.Quantity.Mul(mass))
	}
	return total, nil
}

// WithOverrides returns a new table with records from o replacing or
// extending the receiver's. Neither input table is modified.
func (t *Table) WithOverrides(o *Table) *Table {
	merged := &Table{masses: make(map[string]decimal.Decimal, len(t.masses))}
	for _, sym := range t.order {
		merged.set(sym, t.masses[sym])
	}
	if o != nil {
		for _, sym := range o.order {
			merged.set(sym, o.masses[sym])
		}
	}
	return merged
}
