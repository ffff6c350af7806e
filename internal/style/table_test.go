package style

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTable_Render(t *testing.T) {
	table := NewTable(
		Column{Name: "Reagent", Width: 10},
		NumCol("Mass (g)", 14),
	)
	table.AddRow("LiCl", "0.2385267762")
	table.AddRow("P2S5", "0.4168207683")

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// header + separator + 2 rows
	if len(lines) != 4 {
		t.Fatalf("line count = %d, want 4:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Reagent") || !strings.Contains(lines[0], "Mass (g)") {
		t.Errorf("header = %q, want column names", lines[0])
	}
	if !strings.Contains(lines[2], "LiCl") {
		t.Errorf("row = %q, want LiCl", lines[2])
	}
	// Numeric column is right-aligned: value ends the line.
	if !strings.HasSuffix(stripAnsi(lines[2]), "0.2385267762") {
		t.Errorf("row = %q, want right-aligned number", stripAnsi(lines[2]))
	}
}

func TestTable_NoSeparator(t *testing.T) {
	table := NewTable(Column{Name: "El", Width: 4}).SetHeaderSeparator(false)
	table.AddRow("Li")
	out := table.Render()
	if strings.Contains(out, "─") {
		t.Errorf("output contains separator with separator disabled:\n%s", out)
	}
}

func TestTable_TruncatesLongValues(t *testing.T) {
	table := NewTable(Column{Name: "Label", Width: 8})
	table.AddRow("averylongreagentlabel")
	out := table.Render()
	if !strings.Contains(out, "...") {
		t.Errorf("long value not truncated:\n%s", out)
	}
}

func TestTable_PadShortRows(t *testing.T) {
	table := NewTable(
		Column{Name: "A", Width: 4},
		Column{Name: "B", Width: 4},
	)
	table.AddRow("x") // short row must not panic
	out := table.Render()
	if !strings.Contains(out, "x") {
		t.Errorf("short row missing from output:\n%s", out)
	}
}

func TestFixedDecimal(t *testing.T) {
	d := decimal.RequireFromString("0.00375095180402027")
	if got := FixedDecimal(d, 10); got != "0.0037509518" {
		t.Errorf("FixedDecimal = %q, want 0.0037509518", got)
	}
	if got := FixedDecimal(decimal.Zero, 4); got != "0.0000" {
		t.Errorf("FixedDecimal(0) = %q, want 0.0000", got)
	}
}

func TestStyleVariables(t *testing.T) {
	renders := map[string]func(...string) string{
		"Success": Success.Render,
		"Warning": Warning.Render,
		"Error":   Error.Render,
		"Info":    Info.Render,
		"Dim":     Dim.Render,
		"Bold":    Bold.Render,
	}
	for name, render := range renders {
		if out := render("test"); out == "" {
			t.Errorf("%s.Render() returned empty string", name)
		}
	}
}
