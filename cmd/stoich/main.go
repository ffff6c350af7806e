// stoich is a high-precision synthesis planning calculator for solid-state chemistry.
package main

import (
	"os"

	"github.com/steveyegge/stoich/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
