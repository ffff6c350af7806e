package ptable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"

	"github.com/steveyegge/stoich/internal/formula"
	"github.com/steveyegge/stoich/internal/util"
)

// Overrides are user-supplied mass records layered over the embedded
// table, stored in the same "symbol mass" text format. Writers take a
// file lock so concurrent `stoich elements set` invocations cannot
// interleave their read-modify-write cycles.

// DefaultOverridesPath returns the standard overrides file location,
// <user config dir>/stoich/masses.txt.
func DefaultOverridesPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, "stoich", "masses.txt"), nil
}

// LoadOverrides reads the overrides file at path. A missing or empty
// file is not an error: it means no overrides, and (nil, nil) is
// returned.
func LoadOverrides(path string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	t, err := Load(path)
	if err != nil {
		if errors.Is(err, ErrEmptyTable) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// SetOverride records mass for symbol in the overrides file, creating
// the file if needed. symbol must be a valid element symbol and mass
// must be positive.
func SetOverride(path, symbol string, mass decimal.Decimal) error {
	if !formula.IsKnownSymbol(symbol) {
		return fmt.Errorf("%q is not an element symbol", symbol)
	}
	if mass.Sign() <= 0 {
		return fmt.Errorf("mass must be positive, got %s", mass)
	}
	return rewriteOverrides(path, func(t *Table) {
		t.set(symbol, mass)
	})
}

// RemoveOverride deletes the override for symbol. It reports whether an
// override was present.
func RemoveOverride(path, symbol string) (bool, error) {
	removed := false
	err := rewriteOverrides(path, func(t *Table) {
		if _, ok := t.masses[symbol]; ok {
			delete(t.masses, symbol)
			removed = true
		}
	})
	return removed, err
}

// rewriteOverrides applies modify to the current override records under
// an exclusive file lock and writes the result back atomically.
func rewriteOverrides(path string, modify func(*Table)) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating overrides directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking overrides file: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck

	current := &Table{masses: make(map[string]decimal.Decimal)}
	if existing, err := LoadOverrides(path); err != nil {
		return err
	} else if existing != nil {
		current = existing
	}

	modify(current)

	var sb strings.Builder
	sb.WriteString("# stoich atomic mass overrides. Managed by `stoich elements`.\n")
	for _, sym := range current.order {
		mass, ok := current.masses[sym]
		if !ok {
			continue // removed
		}
		sb.WriteString(sym)
		sb.WriteByte(' ')
		sb.WriteString(mass.String())
		sb.WriteByte('\n')
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing overrides: %w", err)
	}
	return nil
}
