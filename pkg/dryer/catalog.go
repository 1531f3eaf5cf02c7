// Package dryer implements the drying control logic: profile selection, the
// stage state machine driving the heater, the per-stage elapsed-time clock,
// and the fail-safe that halts the oven on unrecoverable faults.
package dryer

import (
	"time"

	"github.com/ovenforge/godryer/pkg/config"
)

// Profile is one drying configuration. Immutable after catalog construction.
type Profile struct {
	Name       string
	TargetTemp int // degC
	Duration   time.Duration
}

// Catalog is the fixed, ordered set of drying profiles. Index arithmetic is
// cyclic.
type Catalog []Profile

// CatalogFromConfig builds the catalog from configuration. An empty config
// falls back to the built-in defaults so the catalog is never empty.
func CatalogFromConfig(filaments []config.FilamentConfig) Catalog {
	if len(filaments) == 0 {
		filaments = config.Default().Filaments
	}

	c := make(Catalog, 0, len(filaments))
	for _, f := range filaments {
		c = append(c, Profile{
			Name:       f.Name,
			TargetTemp: f.TargetTemp,
			Duration:   f.Duration,
		})
	}
	return c
}

// NextIndex returns the index after i, wrapping to the start.
func (c Catalog) NextIndex(i int) int {
	if i >= len(c)-1 {
		return 0
	}
	return i + 1
}

// PrevIndex returns the index before i, wrapping to the end.
func (c Catalog) PrevIndex(i int) int {
	if i <= 0 {
		return len(c) - 1
	}
	return i - 1
}
