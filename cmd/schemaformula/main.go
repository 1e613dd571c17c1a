// Command schemaformula inspects and maintains x-formula fields in JSON-Schema
// documents: it renders field paths, computes relative references, lists
// formula dependencies and rewrites formulas after a field rename.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
