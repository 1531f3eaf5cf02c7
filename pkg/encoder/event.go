package encoder

import "sync/atomic"

// Event is the pending "encoder changed" flag.
//
// It is single-writer/single-reader: the asynchronous edge source sets it,
// the decoder clears it once an action has been fully resolved, including
// the debounce quiet period. Many edges may arrive while one action is being
// resolved; they all collapse into the one pending flag.
type Event struct {
	flag atomic.Bool
}

// Set marks an encoder edge as pending. Called from the edge source.
func (e *Event) Set() { e.flag.Store(true) }

// Clear resets the pending flag. Called by the decoder only.
func (e *Event) Clear() { e.flag.Store(false) }

// IsSet reports whether an encoder edge is pending.
func (e *Event) IsSet() bool { return e.flag.Load() }
