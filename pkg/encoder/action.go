// Package encoder decodes the analog signal of a rotary encoder into
// discrete user actions.
//
// The encoder's contacts feed a resistor divider network, so each contact
// closure produces a distinct ADC level. Rotation closes two contacts in
// sequence (the order depends on direction), the push button closes a third.
// The decoder classifies instantaneous levels into calibrated bands and
// resolves the two-closure sequence, contact bounce and release into a
// single action.
package encoder

// Action is a resolved encoder action.
type Action uint8

const (
	// None means the encoder is idle or the reading was noise.
	None Action = iota
	// Next is a rotation one way (clockwise).
	Next
	// Prev is a rotation the other way.
	Prev
	// Confirm is a button press.
	Confirm
)

func (a Action) String() string {
	switch a {
	case None:
		return "None"
	case Next:
		return "Next"
	case Prev:
		return "Prev"
	case Confirm:
		return "Confirm"
	default:
		return "Unknown"
	}
}

// RawReader provides the instantaneous quantized encoder reading.
type RawReader interface {
	EncoderRaw() uint16
}

// RawFunc adapts a plain function to the RawReader interface.
type RawFunc func() uint16

// EncoderRaw implements RawReader.
func (f RawFunc) EncoderRaw() uint16 { return f() }
