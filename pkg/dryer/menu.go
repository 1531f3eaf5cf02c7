package dryer

import (
	"fmt"

	"github.com/ovenforge/godryer/pkg/encoder"
)

// Menu cycles through the catalog on the display until the operator confirms
// a profile.
type Menu struct {
	catalog Catalog
	screen  Screen
	input   ActionSource
}

// NewMenu creates a selection menu over the catalog.
func NewMenu(catalog Catalog, screen Screen, input ActionSource) *Menu {
	return &Menu{
		catalog: catalog,
		screen:  screen,
		input:   input,
	}
}

// Select runs the selection loop and returns the confirmed profile.
// Next advances the cyclic index, Prev decrements it, None re-loops without
// a state change. Each index change re-renders.
func (m *Menu) Select() Profile {
	m.screen.Clear()

	idx := 0
	m.present(m.catalog[idx])

	for {
		switch m.input.ResolveAction() {
		case encoder.Confirm:
			return m.catalog[idx]
		case encoder.Next:
			idx = m.catalog.NextIndex(idx)
		case encoder.Prev:
			idx = m.catalog.PrevIndex(idx)
		default:
			continue
		}
		m.present(m.catalog[idx])
	}
}

// present shows the profile's name, drying time and temperature. Trailing
// spaces overwrite ghosts of longer previous entries.
func (m *Menu) present(p Profile) {
	m.screen.SetCursor(0, 0)
	m.screen.Print(p.Name)
	m.screen.Print(" ?   ")

	m.screen.SetCursor(0, 1)
	m.screen.Print(fmt.Sprintf("%d hours at %d*      ", int(p.Duration.Hours()), p.TargetTemp))
}
