package dryer

import (
	"strings"
	"sync"
	"time"

	"github.com/ovenforge/godryer/pkg/encoder"
)

// fakeSensor replays a queue of readings; once drained it repeats the last.
type fakeSensor struct {
	mu       sync.Mutex
	readings []float64
	last     float64
}

func (s *fakeSensor) ReadTemperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readings) > 0 {
		s.last = s.readings[0]
		s.readings = s.readings[1:]
	}
	return s.last
}

// fakeHeater records every commanded state.
type fakeHeater struct {
	mu     sync.Mutex
	states []bool
	err    error
}

func (h *fakeHeater) SetHeater(on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.states = append(h.states, on)
	return nil
}

func (h *fakeHeater) history() []bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]bool, len(h.states))
	copy(out, h.states)
	return out
}

func (h *fakeHeater) lastState() (bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.states) == 0 {
		return false, false
	}
	return h.states[len(h.states)-1], true
}

// fakeBeeper records tones without sleeping.
type fakeBeeper struct {
	mu    sync.Mutex
	beeps []time.Duration
}

func (b *fakeBeeper) Beep(d time.Duration) {
	b.mu.Lock()
	b.beeps = append(b.beeps, d)
	b.mu.Unlock()
}

func (b *fakeBeeper) history() []time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]time.Duration, len(b.beeps))
	copy(out, b.beeps)
	return out
}

// fakeScreen is an in-memory 16x2 display.
type fakeScreen struct {
	mu       sync.Mutex
	lines    [2][]rune
	col, row int
	clears   int
}

func newFakeScreen() *fakeScreen {
	s := &fakeScreen{}
	s.blank()
	return s
}

func (s *fakeScreen) blank() {
	for i := range s.lines {
		line := make([]rune, 16)
		for j := range line {
			line[j] = ' '
		}
		s.lines[i] = line
	}
	s.col, s.row = 0, 0
}

func (s *fakeScreen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blank()
	s.clears++
}

func (s *fakeScreen) SetCursor(col, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col >= 0 && col < 16 && row >= 0 && row < 2 {
		s.col, s.row = col, row
	}
}

func (s *fakeScreen) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range text {
		if s.col >= 16 {
			break
		}
		s.lines[s.row][s.col] = r
		s.col++
	}
}

// line returns one display row with trailing spaces trimmed.
func (s *fakeScreen) line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimRight(string(s.lines[row]), " ")
}

// fakeInput replays scripted actions; once drained it reports None.
type fakeInput struct {
	mu      sync.Mutex
	actions []encoder.Action
}

func (i *fakeInput) ResolveAction() encoder.Action {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.actions) == 0 {
		return encoder.None
	}
	a := i.actions[0]
	i.actions = i.actions[1:]
	return a
}
