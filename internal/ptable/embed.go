package ptable

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
)

//go:embed data/atomic_masses.txt
var embeddedMasses []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the process-wide table built from the embedded
// reference data. It is parsed once and must never be mutated; callers
// that need different masses layer them with WithOverrides.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := parse(bytes.NewReader(embeddedMasses), "embedded atomic_masses.txt")
		if err != nil {
			// The embedded dataset ships with the binary; failing to
			// parse it is a build defect, not a runtime condition.
			panic(fmt.Sprintf("ptable: embedded mass data invalid: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}
