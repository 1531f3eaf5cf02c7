package dryer

import (
	"sync"
	"time"
)

// StageClock counts the seconds elapsed within the current drying stage and
// carries the display-refresh flag that the same tick raises.
//
// The periodic tick source and the control loop both touch the counter, so
// every read-and-reset happens under the mutex — the moral equivalent of
// masking the timer interrupt while the counter is written. A torn read of
// a mid-increment counter is what the critical section prevents.
type StageClock struct {
	mu      sync.Mutex
	seconds uint64
	refresh bool

	stop chan struct{}
	done chan struct{}
}

// NewStageClock returns a stopped clock at zero.
func NewStageClock() *StageClock {
	return &StageClock{}
}

// Start begins ticking once per second until Stop is called.
func (c *StageClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.run(c.stop, c.done)
}

// Stop halts the ticker and waits for it to exit.
func (c *StageClock) Stop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (c *StageClock) run(stop chan struct{}, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick advances the counter by one second and raises the refresh flag.
// Called by the internal ticker; tests and simulations call it directly.
func (c *StageClock) Tick() {
	c.mu.Lock()
	c.seconds++
	c.refresh = true
	c.mu.Unlock()
}

// Seconds returns the seconds elapsed since the last Reset.
func (c *StageClock) Seconds() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seconds
}

// Reset zeroes the counter and clears the refresh flag. Performed at the
// instant the stage changes.
func (c *StageClock) Reset() {
	c.mu.Lock()
	c.seconds = 0
	c.refresh = false
	c.mu.Unlock()
}

// MarkRefresh forces a display refresh on the next loop iteration.
func (c *StageClock) MarkRefresh() {
	c.mu.Lock()
	c.refresh = true
	c.mu.Unlock()
}

// TakeRefresh returns the refresh flag and clears it in one critical section.
func (c *StageClock) TakeRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.refresh
	c.refresh = false
	return r
}
