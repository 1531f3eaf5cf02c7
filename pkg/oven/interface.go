package oven

import "time"

// Device defines the interface for oven hardware (real or mocked).
//
// The drying control loop only ever talks to this interface; the real
// implementation bridges to the MCU over a serial line, the mock simulates
// the whole oven in software.
type Device interface {
	Connect() error
	Close() error
	IsConnected() bool

	// Samples returns the stream of raw conversions from the oven.
	Samples() <-chan RawSample

	// ReadTemperature blocks until the next conversion completes and
	// returns the chamber temperature in Celsius, or the configured
	// disconnect sentinel when the probe is open or shorted.
	ReadTemperature() float64

	// EncoderRaw returns the instantaneous quantized encoder level.
	EncoderRaw() uint16

	// OnEncoderEdge registers a callback fired on every encoder level
	// transition. Must be registered before Connect.
	OnEncoderEdge(fn func())

	// SetHeater commands the heater relay. Idempotent, no feedback.
	SetHeater(on bool) error

	// Beep drives the audible indicator, blocking for the duration.
	Beep(d time.Duration)

	// Display returns the two-line text surface.
	Display() Display
}

// Display is the two-line 16-column text surface on the oven front.
type Display interface {
	Clear()
	SetCursor(col, row int)
	Print(text string)
}

// ScreenMirror is implemented by devices that can report the current display
// contents, so a host UI can render a copy of the physical screen.
type ScreenMirror interface {
	ScreenLines() [2]string
	OnScreen(fn func(lines [2]string))
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
