package encoder

import (
	"time"

	"github.com/ovenforge/godryer/pkg/config"
)

// Decoder turns raw encoder levels into debounced actions.
type Decoder struct {
	raw     RawReader
	cfg     config.EncoderConfig
	pending Event
}

// New creates a Decoder over the given raw reading source.
func New(raw RawReader, cfg config.EncoderConfig) *Decoder {
	return &Decoder{
		raw: raw,
		cfg: cfg,
	}
}

// Notify marks an encoder edge as pending. Wire this as the device's
// encoder-edge callback; it is safe to call from any goroutine and must
// return immediately.
func (d *Decoder) Notify() {
	d.pending.Set()
}

// ReadLevel classifies the instantaneous raw reading. Non-blocking: a zero
// reading is None, a reading inside a calibrated band is that band's action,
// and anything else is treated as noise and classifies as None. The decoder
// never returns an ambiguous action.
func (d *Decoder) ReadLevel() Action {
	v := d.raw.EncoderRaw()
	switch {
	case v == 0:
		return None
	case d.cfg.Prev.Contains(v):
		return Prev
	case d.cfg.Next.Contains(v):
		return Next
	case d.cfg.Confirm.Contains(v):
		return Confirm
	default:
		return None
	}
}

// ResolveAction blocks until a pending encoder event resolves into an action.
//
// Rotation closes two contacts in sequence: the initiating contact gives the
// direction's band, then while it is still closed the second contact gives
// the opposite direction's band. After the initiating sample the decoder
// waits for that paired level, bounded by the pairing timeout — contact
// bounce or ADC latency can drop the level to zero before the second front
// arrives, and the timeout keeps that race from hanging the resolution. On
// timeout the initiating direction is still accepted as the result.
//
// Once both contacts have worked through (or the button is released), the
// level returns to zero. The decoder then holds for a quiet period — twice
// the observed pulse width plus the jitter margin — which suppresses
// bounce-induced re-triggering on fast rotations. Only then is the pending
// flag cleared: any edges that arrived meanwhile were bounce from the action
// just resolved.
func (d *Decoder) ResolveAction() Action {
	for !d.pending.IsSet() {
		time.Sleep(d.cfg.PollInterval)
	}

	action := d.ReadLevel()

	// Spurious wakeup: an edge fired but the level is already back at zero.
	// Leave the pending flag set; the next resolution samples again. The
	// sleep paces callers that loop on resolution.
	if action == None {
		time.Sleep(d.cfg.PollInterval)
		return None
	}

	begin := time.Now()

	if action == Prev || action == Next {
		paired := Next
		if action == Next {
			paired = Prev
		}
		for d.ReadLevel() != paired {
			time.Sleep(d.cfg.PollInterval)
			if time.Since(begin) > d.cfg.PairTimeout {
				break
			}
		}
	}

	// Wait for full release: contacts open / button let go.
	for d.ReadLevel() != None {
		time.Sleep(d.cfg.PollInterval)
	}

	quiet := d.cfg.Jitter
	if action != Confirm {
		quiet += 2 * time.Since(begin)
	}
	time.Sleep(quiet)

	d.pending.Clear()

	return action
}
