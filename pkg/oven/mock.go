package oven

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ovenforge/godryer/pkg/config"
)

// Mock simulates the whole oven in software: a first-order thermal model for
// the chamber, a scriptable rotary encoder, and an in-memory display. It is
// used for development without hardware and by tests.
type Mock struct {
	cfg *config.Config

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	heaterOn     bool
	disconnected bool
	tempC        float64
	encoderRaw   uint16

	latest  RawSample
	haveRaw bool
	seq     uint64

	startTime time.Time
	edgeFn    func()
	screen    *screenState
	beeps     []time.Duration
}

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// NewMock creates a new mocked oven instance.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
		screen:  newScreenState(nil),
	}
}

// Connect starts the simulation at ambient temperature with the heater off.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()
	m.heaterOn = false
	m.tempC = m.cfg.Mock.AmbientC

	go m.generateSamples()

	return nil
}

// Close stops the simulation.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.samples)

	return nil
}

// IsConnected returns whether the simulation is running.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Samples returns the channel of simulated conversions.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// ReadTemperature blocks until the next simulated conversion and returns it
// in Celsius, or the disconnect sentinel when the probe fault is injected.
func (m *Mock) ReadTemperature() float64 {
	m.mu.RLock()
	start := m.seq
	m.mu.RUnlock()

	for {
		time.Sleep(time.Millisecond)
		m.mu.RLock()
		if m.seq != start && m.haveRaw {
			adc := m.latest.Temp
			m.mu.RUnlock()
			return Celsius(adc, m.cfg.Sensor)
		}
		m.mu.RUnlock()
	}
}

// EncoderRaw returns the current scripted encoder level.
func (m *Mock) EncoderRaw() uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.encoderRaw
}

// OnEncoderEdge registers the callback fired on scripted encoder transitions.
func (m *Mock) OnEncoderEdge(fn func()) {
	m.mu.Lock()
	m.edgeFn = fn
	m.mu.Unlock()
}

// SetHeater sets the simulated heater state.
func (m *Mock) SetHeater(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}

	m.heaterOn = on
	return nil
}

// HeaterOn reports the current simulated heater state.
func (m *Mock) HeaterOn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.heaterOn
}

// Beep records the tone and blocks for its duration like a real beeper.
func (m *Mock) Beep(d time.Duration) {
	m.mu.Lock()
	m.beeps = append(m.beeps, d)
	m.mu.Unlock()
	time.Sleep(d)
}

// Beeps returns the tones played so far.
func (m *Mock) Beeps() []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]time.Duration, len(m.beeps))
	copy(out, m.beeps)
	return out
}

// Display returns the in-memory two-line display.
func (m *Mock) Display() Display {
	return m.screen
}

// ScreenLines returns the current display contents.
func (m *Mock) ScreenLines() [2]string {
	return m.screen.Lines()
}

// OnScreen registers a callback invoked whenever the display changes.
func (m *Mock) OnScreen(fn func(lines [2]string)) {
	m.screen.onChanged(fn)
}

// SetProbeDisconnected injects or clears a probe fault.
func (m *Mock) SetProbeDisconnected(disconnected bool) {
	m.mu.Lock()
	m.disconnected = disconnected
	m.mu.Unlock()
}

// SetTemperature forces the simulated chamber temperature.
func (m *Mock) SetTemperature(c float64) {
	m.mu.Lock()
	m.tempC = c
	m.mu.Unlock()
}

// Rotate scripts one encoder detent. A real encoder closes two contacts in
// sequence, producing the initiating band followed by the paired band before
// the level returns to zero; the script reproduces that, firing an edge per
// transition. Blocks for the duration of the pulse (~40ms).
func (m *Mock) Rotate(clockwise bool) {
	first, second := m.bandCenter(m.cfg.Encoder.Prev), m.bandCenter(m.cfg.Encoder.Next)
	if clockwise {
		first, second = second, first
	}

	m.setEncoder(first)
	time.Sleep(15 * time.Millisecond)
	m.setEncoder(second)
	time.Sleep(15 * time.Millisecond)
	m.setEncoder(0)
}

// Press scripts one button press and release.
func (m *Mock) Press() {
	m.setEncoder(m.bandCenter(m.cfg.Encoder.Confirm))
	time.Sleep(30 * time.Millisecond)
	m.setEncoder(0)
}

func (m *Mock) bandCenter(b config.Band) uint16 {
	return (b.Low + b.High) / 2
}

func (m *Mock) setEncoder(raw uint16) {
	m.mu.Lock()
	changed := m.encoderRaw != raw
	m.encoderRaw = raw
	fn := m.edgeFn
	m.mu.Unlock()

	if changed && fn != nil {
		fn()
	}
}

// generateSamples advances the thermal model and emits conversions at the
// configured rate.
func (m *Mock) generateSamples() {
	ticker := time.NewTicker(m.cfg.Mock.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			raw := m.generateSample()
			m.mu.Lock()
			m.latest = raw
			m.haveRaw = true
			m.seq++
			m.mu.Unlock()

			select {
			case m.samples <- raw:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample advances the chamber model by one conversion period.
// First-order response: the chamber approaches ambient, or ambient plus the
// heater gain, with the configured time constant.
func (m *Mock) generateSample() RawSample {
	m.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(m.startTime)

	target := m.cfg.Mock.AmbientC
	if m.heaterOn {
		target += m.cfg.Mock.HeaterGainC
	}

	dt := m.cfg.Mock.SampleRate.Seconds()
	alpha := dt / m.cfg.Mock.TimeConstant.Seconds()
	m.tempC += alpha * (target - m.tempC)

	noise := (math.Sin(float64(elapsed.Nanoseconds())*0.001) +
		math.Cos(float64(elapsed.Nanoseconds())*0.0013)) *
		m.cfg.Mock.NoiseC * 0.5
	tempC := m.tempC + noise

	raw := RawSample{
		Timestamp: now,
		Temp:      m.tempADC(tempC),
		Encoder:   m.encoderRaw,
		HeaterOn:  m.heaterOn,
	}
	m.mu.Unlock()

	return raw
}

// tempADC inverts the sensor calibration. An injected probe fault reads as
// the zero rail, which Celsius maps back to the disconnect sentinel.
func (m *Mock) tempADC(c float64) uint16 {
	if m.disconnected {
		return 0
	}

	val := (c - m.cfg.Sensor.Offset) / m.cfg.Sensor.Slope
	if val < 1 {
		val = 1
	} else if val > adcMax-1 {
		val = adcMax - 1
	}
	return uint16(val)
}
