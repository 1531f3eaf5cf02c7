package dryer

import (
	"time"

	"github.com/ovenforge/godryer/pkg/encoder"
)

// Sensor provides blocking chamber temperature reads in Celsius. A probe
// fault is reported as the configured disconnect sentinel, never an error.
type Sensor interface {
	ReadTemperature() float64
}

// Heater commands the heater relay. Idempotent, no feedback.
type Heater interface {
	SetHeater(on bool) error
}

// Beeper drives the audible indicator, blocking for the tone duration.
type Beeper interface {
	Beep(d time.Duration)
}

// Screen is the two-line text surface on the oven front.
type Screen interface {
	Clear()
	SetCursor(col, row int)
	Print(text string)
}

// ActionSource resolves operator input into encoder actions.
type ActionSource interface {
	ResolveAction() encoder.Action
}
