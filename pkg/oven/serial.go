package oven

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/ovenforge/godryer/pkg/config"
)

// Serial represents a connection to the oven bridge MCU.
//
// The MCU streams raw conversions as text lines and accepts single-letter
// commands for the heater, beeper and display. All control logic stays on
// the host side; the MCU never interprets state.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	sensor   config.SensorConfig

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	writeMu   sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	latest  RawSample
	haveRaw bool
	seq     uint64

	edgeFn func()
	screen *screenState
}

// New creates a new Serial device for the given port.
func New(port string, baudRate int, bufSize int, sensor config.SensorConfig) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		sensor:   sensor,
		samples:  make(chan RawSample, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.screen = newScreenState(d.sendCommand)
	return d
}

// Connect opens the serial port, forces the heater off, and starts reading
// conversions.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Heater off before anything else.
	d.sendCommand("H0\n")

	go d.readSamples()

	return nil
}

// Close closes the connection and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.samples)

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Samples returns the channel for reading raw conversions.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// ReadTemperature blocks until the next conversion arrives from the MCU and
// returns it in Celsius. There is no timeout: the probe conversion is treated
// as a trusted, bounded-latency operation.
func (d *Serial) ReadTemperature() float64 {
	d.mu.RLock()
	start := d.seq
	d.mu.RUnlock()

	for {
		time.Sleep(time.Millisecond)
		d.mu.RLock()
		if d.seq != start && d.haveRaw {
			adc := d.latest.Temp
			d.mu.RUnlock()
			return Celsius(adc, d.sensor)
		}
		d.mu.RUnlock()
	}
}

// EncoderRaw returns the most recent quantized encoder level.
func (d *Serial) EncoderRaw() uint16 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest.Encoder
}

// OnEncoderEdge registers the callback fired on every encoder transition.
func (d *Serial) OnEncoderEdge(fn func()) {
	d.mu.Lock()
	d.edgeFn = fn
	d.mu.Unlock()
}

// SetHeater commands the heater relay on the MCU.
func (d *Serial) SetHeater(on bool) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if on {
		d.sendCommand("H1\n")
	} else {
		d.sendCommand("H0\n")
	}
	return nil
}

// Beep drives the beeper for the given duration and blocks until it ends.
// The MCU times the tone itself; the host sleep keeps call timing identical
// to a locally attached beeper.
func (d *Serial) Beep(dur time.Duration) {
	d.sendCommand(fmt.Sprintf("B%d\n", dur.Milliseconds()))
	time.Sleep(dur)
}

// Display returns the two-line text surface. Writes are forwarded to the
// MCU-attached LCD and mirrored host-side.
func (d *Serial) Display() Display {
	return d.screen
}

// ScreenLines returns the mirrored display contents.
func (d *Serial) ScreenLines() [2]string {
	return d.screen.Lines()
}

// OnScreen registers a callback invoked whenever the display changes.
func (d *Serial) OnScreen(fn func(lines [2]string)) {
	d.screen.onChanged(fn)
}

// sendCommand writes a single command line to the MCU.
func (d *Serial) sendCommand(cmd string) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	if d.conn == nil {
		return
	}
	if _, err := d.conn.Write([]byte(cmd)); err != nil {
		log.Printf("Failed to send command %q: %v", strings.TrimSpace(cmd), err)
	}
}

// displayCommand encodes a print-at-cursor command for the MCU LCD.
func displayCommand(row, col int, text string) string {
	return fmt.Sprintf("D%d;%d;%s\n", row, col, text)
}

// readSamples reads lines from the serial port and parses them into RawSample.
func (d *Serial) readSamples() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readSamples: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			raw, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			d.storeSample(raw)

			select {
			case d.samples <- raw:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, the trend view just skips a point.
			}
		}
	}
}

// storeSample publishes the latest conversion and fires the encoder edge
// callback on level transitions. The MCU samples the encoder pin far faster
// than the probe, so a transition seen here corresponds to the pin-change
// interrupt on a directly wired build.
func (d *Serial) storeSample(raw RawSample) {
	d.mu.Lock()
	edged := d.haveRaw && raw.Encoder != d.latest.Encoder
	d.latest = raw
	d.haveRaw = true
	d.seq++
	fn := d.edgeFn
	d.mu.Unlock()

	if edged && fn != nil {
		fn()
	}
}
