package encoder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ovenforge/godryer/pkg/config"
)

func testEncoderConfig() config.EncoderConfig {
	return config.EncoderConfig{
		Prev:         config.Band{Low: 840, High: 850},
		Next:         config.Band{Low: 690, High: 705},
		Confirm:      config.Band{Low: 560, High: 610},
		Jitter:       time.Millisecond,
		PairTimeout:  30 * time.Millisecond,
		PollInterval: 100 * time.Microsecond,
	}
}

// scriptedRaw is a thread-safe settable encoder level.
type scriptedRaw struct {
	mu    sync.Mutex
	level uint16
}

func (s *scriptedRaw) EncoderRaw() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

func (s *scriptedRaw) set(v uint16) {
	s.mu.Lock()
	s.level = v
	s.mu.Unlock()
}

func TestReadLevel(t *testing.T) {
	raw := &scriptedRaw{}
	d := New(raw, testEncoderConfig())

	tests := []struct {
		name  string
		level uint16
		want  Action
	}{
		{"idle", 0, None},
		{"prev band", 845, Prev},
		{"next band", 698, Next},
		{"confirm band", 585, Confirm},
		{"prev lower bound excluded", 840, None},
		{"prev upper bound excluded", 850, None},
		{"next lower bound excluded", 690, None},
		{"confirm upper bound excluded", 610, None},
		{"noise between bands", 650, None},
		{"noise above all bands", 1000, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw.set(tt.level)
			assert.Equal(t, tt.want, d.ReadLevel())
		})
	}
}

func TestResolveAction_PairedRotation(t *testing.T) {
	raw := &scriptedRaw{}
	d := New(raw, testEncoderConfig())

	// Counter-clockwise detent: prev contact closes, then the next contact,
	// then both release.
	raw.set(845)
	d.Notify()
	go func() {
		time.Sleep(5 * time.Millisecond)
		raw.set(698)
		time.Sleep(5 * time.Millisecond)
		raw.set(0)
	}()

	assert.Equal(t, Prev, d.ResolveAction())
	assert.False(t, d.pending.IsSet(), "pending cleared after resolution")
}

func TestResolveAction_PairedRotationOtherWay(t *testing.T) {
	raw := &scriptedRaw{}
	d := New(raw, testEncoderConfig())

	raw.set(698)
	d.Notify()
	go func() {
		time.Sleep(5 * time.Millisecond)
		raw.set(845)
		time.Sleep(5 * time.Millisecond)
		raw.set(0)
	}()

	assert.Equal(t, Next, d.ResolveAction())
}

func TestResolveAction_PairingTimeoutFallsBack(t *testing.T) {
	raw := &scriptedRaw{}
	d := New(raw, testEncoderConfig())

	// The second contact never closes; the initiating direction still wins
	// once the pairing timeout passes.
	raw.set(845)
	d.Notify()
	go func() {
		time.Sleep(40 * time.Millisecond)
		raw.set(0)
	}()

	assert.Equal(t, Prev, d.ResolveAction())
}

func TestResolveAction_Confirm(t *testing.T) {
	raw := &scriptedRaw{}
	d := New(raw, testEncoderConfig())

	raw.set(585)
	d.Notify()
	go func() {
		time.Sleep(5 * time.Millisecond)
		raw.set(0)
	}()

	assert.Equal(t, Confirm, d.ResolveAction())
	assert.False(t, d.pending.IsSet())
}

func TestResolveAction_SpuriousEdgeKeepsPending(t *testing.T) {
	raw := &scriptedRaw{}
	d := New(raw, testEncoderConfig())

	// An edge fired but the level is already back at zero: bounce. The
	// resolution reports None and the flag stays pending for the next pass.
	d.Notify()
	assert.Equal(t, None, d.ResolveAction())
	assert.True(t, d.pending.IsSet())
}

func TestResolveAction_BounceDuringQuietPeriodAbsorbed(t *testing.T) {
	raw := &scriptedRaw{}
	d := New(raw, testEncoderConfig())

	raw.set(585)
	d.Notify()
	go func() {
		time.Sleep(2 * time.Millisecond)
		raw.set(0)
		// Bounce edges arriving while the action resolves collapse into the
		// pending flag and are discarded when it clears.
		d.Notify()
		d.Notify()
	}()

	assert.Equal(t, Confirm, d.ResolveAction())
	assert.False(t, d.pending.IsSet())
}

func TestEvent(t *testing.T) {
	var e Event

	assert.False(t, e.IsSet())
	e.Set()
	assert.True(t, e.IsSet())
	e.Set()
	assert.True(t, e.IsSet())
	e.Clear()
	assert.False(t, e.IsSet())
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "None", None.String())
	assert.Equal(t, "Next", Next.String())
	assert.Equal(t, "Prev", Prev.String())
	assert.Equal(t, "Confirm", Confirm.String())
}

func TestRawFunc(t *testing.T) {
	f := RawFunc(func() uint16 { return 845 })
	assert.Equal(t, uint16(845), f.EncoderRaw())
}
