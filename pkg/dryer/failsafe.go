package dryer

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/ovenforge/godryer/pkg/config"
)

// Fault taxonomy. All four are fatal: they are detected at the point of
// occurrence and escalate straight to the fail-safe, with no retry and no
// partial degradation.
var (
	// ErrSensorDisconnected means the probe reported its disconnect sentinel.
	ErrSensorDisconnected = errors.New("Temp NaN.")
	// ErrSensorFrozen means the reading is implausibly low.
	ErrSensorFrozen = errors.New("Frozen.")
	// ErrSensorBurned means the reading is implausibly high.
	ErrSensorBurned = errors.New("Burned.")
	// ErrPreheatTimeout means the target was not reached within the preheat budget.
	ErrPreheatTimeout = errors.New("Preheating.")
	// ErrInvalidSession means heater control was invoked with no active profile.
	ErrInvalidSession = errors.New("Heater state.")
)

// Distress pattern timing: S-O-S, three short, three long, three short.
const (
	dotLen    = 500 * time.Millisecond
	dashLen   = 3 * dotLen
	signGap   = dotLen
	letterGap = 3 * dotLen
	repeatGap = 7 * dotLen
)

// CheckReading validates a Celsius reading against the sensor limits and
// returns it truncated to the byte range the control logic works in.
func CheckReading(celsius float64, cfg config.SensorConfig) (int, error) {
	if celsius == cfg.DisconnectedC {
		return 0, ErrSensorDisconnected
	}

	temp := int(celsius) & 0xFF
	if temp <= cfg.FreezeFloor {
		return temp, ErrSensorFrozen
	}
	if temp >= cfg.BurnCeiling {
		return temp, ErrSensorBurned
	}

	return temp, nil
}

// FailSafe is the terminal alarm. Tripping it shuts the heater off, shows
// the fault reason, and plays the distress pattern forever. There is no
// recovery path; only a power cycle restarts the system.
type FailSafe struct {
	heater Heater
	beeper Beeper
	screen Screen

	halted atomic.Bool
	sleep  func(time.Duration)
}

// NewFailSafe creates a FailSafe over the given actuators.
func NewFailSafe(heater Heater, beeper Beeper, screen Screen) *FailSafe {
	return &FailSafe{
		heater: heater,
		beeper: beeper,
		screen: screen,
		sleep:  time.Sleep,
	}
}

// Halted reports whether the fail-safe has been entered.
func (f *FailSafe) Halted() bool {
	return f.halted.Load()
}

// Trip enters the absorbing alarm state. Never returns.
func (f *FailSafe) Trip(reason error) {
	f.halted.Store(true)

	// Heater off unconditionally, before anything that could block.
	if err := f.heater.SetHeater(false); err != nil {
		// Nothing left to do about it; the alarm still sounds.
		_ = err
	}

	f.screen.Clear()
	f.screen.SetCursor(0, 0)
	f.screen.Print("PANIC! Reason:")
	f.screen.SetCursor(0, 1)
	f.screen.Print(reason.Error())

	for {
		f.playDistress()
		f.sleep(repeatGap)
	}
}

// playDistress plays one S-O-S iteration: nine tones with the documented gaps.
func (f *FailSafe) playDistress() {
	f.playLetter(dotLen)  // S: ...
	f.playLetter(dashLen) // O: ---
	f.playLetter(dotLen)  // S: ...
}

func (f *FailSafe) playLetter(sign time.Duration) {
	f.beeper.Beep(sign)
	f.sleep(signGap)
	f.beeper.Beep(sign)
	f.sleep(signGap)
	f.beeper.Beep(sign)
	f.sleep(letterGap)
}
