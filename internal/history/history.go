// Package history persists calculation runs so a synthesis plan can be
// re-read after the terminal scrolls away.
//
// Each run is one TOML record file named by its run ID under
// <user data dir>/stoich/history. Amounts are stored as decimal strings
// so records survive round-trips without losing precision. Writers take
// a directory-level file lock; `stoich plan --save` may race with
// `stoich history clear` from another shell.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/steveyegge/stoich/internal/util"
)

// ErrNotFound is returned when a run ID has no record.
var ErrNotFound = errors.New("no history record with that ID")

// ReagentRecord is one reagent line of a saved run.
type ReagentRecord struct {
	Formula   string `toml:"formula"`
	MolarMass string `toml:"molar_mass"`
	Moles     string `toml:"moles"`
	Mass      string `toml:"mass"`
}

// Record is one saved calculation run.
type Record struct {
	ID              string          `toml:"id"`
	CreatedAt       time.Time       `toml:"created_at"`
	Target          string          `toml:"target"`
	TargetMolarMass string          `toml:"target_molar_mass"`
	TargetMoles     string          `toml:"target_moles"`
	Amount          string          `toml:"amount"`
	Unit            string          `toml:"unit"`
	TotalMass       string          `toml:"total_mass"`
	Degraded        bool            `toml:"degraded,omitempty"`
	Reagents        []ReagentRecord `toml:"reagents"`
}

// DefaultDir returns the standard history directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, "stoich", "history"), nil
}

// Save writes rec into dir, assigning a run ID if it has none, and
// returns the ID.
func Save(dir string, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating history dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, ".lock"))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("locking history dir: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck

	data, err := toml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding run record: %w", err)
	}
	path := filepath.Join(dir, rec.ID+".toml")
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing run record: %w", err)
	}
	return rec.ID, nil
}

// Load reads the record with the given run ID. Abbreviated IDs are
// accepted when unambiguous.
func Load(dir, id string) (Record, error) {
	recs, err := List(dir)
	if err != nil {
		return Record{}, err
	}
	var match *Record
	for i := range recs {
		if recs[i].ID == id {
			return recs[i], nil
		}
		if strings.HasPrefix(recs[i].ID, id) {
			if match != nil {
				return Record{}, fmt.Errorf("run ID %q is ambiguous", id)
			}
			match = &recs[i]
		}
	}
	if match == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *match, nil
}

// List returns all records in dir, newest first. A missing directory
// means no history.
func List(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history dir: %w", err)
	}

	var recs []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		var rec Record
		if _, err := toml.DecodeFile(filepath.Join(dir, entry.Name()), &rec); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}

// Clear removes all records in dir. It reports how many were removed.
func Clear(dir string) (int, error) {
	lock := flock.New(filepath.Join(dir, ".lock"))
	if err := lock.Lock(); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("locking history dir: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading history dir: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
