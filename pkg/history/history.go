// Package history keeps a time-windowed buffer of temperature samples for
// the trend view.
package history

import (
	"sync"
	"time"

	"github.com/ovenforge/godryer/pkg/config"
	"github.com/ovenforge/godryer/pkg/sample"
)

// Recorder consumes the sample stream and maintains a FIFO buffer trimmed by
// timestamp. Externally it exposes an ordered slice, oldest first.
type Recorder struct {
	window time.Duration

	mu      sync.RWMutex
	samples []sample.Sample

	cbMu      sync.RWMutex
	callbacks []func(samples []sample.Sample)

	// Set when the input channel closes; prevents further callbacks so a
	// disconnect doesn't race UI teardown.
	shutdown bool
}

// New creates a Recorder with the configured window.
func New(cfg config.HistoryConfig) *Recorder {
	return &Recorder{
		window:  cfg.Window,
		samples: make([]sample.Sample, 0),
	}
}

// ProcessSamples consumes samples from the input channel until it closes.
func (r *Recorder) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		r.add(s)
	}

	r.mu.Lock()
	r.shutdown = true
	r.mu.Unlock()
}

// add appends a sample, trims the window, and notifies.
func (r *Recorder) add(s sample.Sample) {
	r.mu.Lock()

	r.samples = append(r.samples, s)

	// Trim by timestamp, not count: the conversion rate may change.
	cutoff := s.Timestamp.Add(-r.window)
	trim := 0
	for i, old := range r.samples {
		if old.Timestamp.After(cutoff) {
			trim = i
			break
		}
	}
	if trim > 0 {
		r.samples = r.samples[trim:]
	}

	notify := !r.shutdown
	r.mu.Unlock()

	if notify {
		r.notifyCallbacks()
	}
}

// Samples returns a copy of the current buffer, oldest first.
func (r *Recorder) Samples() []sample.Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]sample.Sample, len(r.samples))
	copy(result, r.samples)
	return result
}

// Latest returns the most recent sample, if any.
func (r *Recorder) Latest() (sample.Sample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.samples) == 0 {
		return sample.Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}

// OnUpdate registers a callback invoked with the current buffer after every
// accepted sample. The callback should copy quickly and return fast.
func (r *Recorder) OnUpdate(callback func(samples []sample.Sample)) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	r.callbacks = append(r.callbacks, callback)
}

// ResetShutdown re-arms callbacks before a new device connection.
func (r *Recorder) ResetShutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdown = false
}

// notifyCallbacks invokes all callbacks with a copy of the buffer, holding
// no locks during the calls.
func (r *Recorder) notifyCallbacks() {
	r.mu.RLock()
	samplesCopy := make([]sample.Sample, len(r.samples))
	copy(samplesCopy, r.samples)
	r.mu.RUnlock()

	r.cbMu.RLock()
	callbacks := make([]func(samples []sample.Sample), len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy)
		}
	}
}
