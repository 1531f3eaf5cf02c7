package oven

import "sync"

const (
	screenCols = 16
	screenRows = 2
)

// screenState keeps a host-side copy of the 16x2 display so the UI can
// mirror what the physical LCD shows. Writes past the end of a line are
// silently discarded, matching the hardware.
type screenState struct {
	mu       sync.Mutex
	lines    [screenRows][]rune
	col, row int
	onChange func(lines [2]string)

	// write is invoked with every display mutation so the real device can
	// forward it to the MCU. Nil for the mock.
	write func(cmd string)
}

func newScreenState(write func(cmd string)) *screenState {
	s := &screenState{write: write}
	s.reset()
	return s
}

func (s *screenState) reset() {
	for i := range s.lines {
		s.lines[i] = blankLine()
	}
	s.col, s.row = 0, 0
}

func blankLine() []rune {
	line := make([]rune, screenCols)
	for i := range line {
		line[i] = ' '
	}
	return line
}

func (s *screenState) Clear() {
	s.mu.Lock()
	s.reset()
	if s.write != nil {
		s.write("X\n")
	}
	s.mu.Unlock()
	s.notify()
}

func (s *screenState) SetCursor(col, row int) {
	s.mu.Lock()
	if col >= 0 && col < screenCols && row >= 0 && row < screenRows {
		s.col, s.row = col, row
	}
	s.mu.Unlock()
}

func (s *screenState) Print(text string) {
	s.mu.Lock()
	if s.write != nil {
		s.write(displayCommand(s.row, s.col, text))
	}
	for _, r := range text {
		if s.col >= screenCols {
			break
		}
		s.lines[s.row][s.col] = r
		s.col++
	}
	s.mu.Unlock()
	s.notify()
}

// Lines returns the current display contents, one string per row.
func (s *screenState) Lines() [2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return [2]string{string(s.lines[0]), string(s.lines[1])}
}

func (s *screenState) onChanged(fn func(lines [2]string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *screenState) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(s.Lines())
	}
}
