package dryer

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ovenforge/godryer/pkg/config"
	"github.com/ovenforge/godryer/pkg/encoder"
)

const (
	// Completion announcement: three tones with a fixed gap.
	finishBeep = 2 * time.Second
	finishGap  = time.Second

	// Boot greeting chirp.
	bootChirp = 250 * time.Millisecond
)

// Controller runs the drying stage state machine.
//
// It is a single cooperative loop: profile selection, completion check,
// blocking sensor read, bang-bang heater evaluation, display refresh. Pacing
// comes from the sensor conversion; the StageClock ticks asynchronously.
// Any fault escalates to the fail-safe and the loop never resumes.
type Controller struct {
	sensor Sensor
	heater Heater
	beeper Beeper
	screen Screen
	input  ActionSource

	menu     *Menu
	clock    *StageClock
	failsafe *FailSafe

	sensorCfg      config.SensorConfig
	preheatCeiling uint64 // seconds

	mu      sync.RWMutex
	session Session

	sleep func(time.Duration)
}

// NewController wires the control loop over the given collaborators.
func NewController(cfg *config.Config, sensor Sensor, heater Heater, beeper Beeper, screen Screen, input ActionSource) *Controller {
	catalog := CatalogFromConfig(cfg.Filaments)

	c := &Controller{
		sensor:         sensor,
		heater:         heater,
		beeper:         beeper,
		screen:         screen,
		input:          input,
		clock:          NewStageClock(),
		sensorCfg:      cfg.Sensor,
		preheatCeiling: uint64(cfg.Drying.PreheatCeiling.Seconds()),
		sleep:          time.Sleep,
	}
	c.menu = NewMenu(catalog, screen, input)
	c.failsafe = NewFailSafe(heater, beeper, screen)
	return c
}

// Session returns a snapshot of the current session state.
func (c *Controller) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Clock returns the stage clock.
func (c *Controller) Clock() *StageClock {
	return c.clock
}

// Halted reports whether the fail-safe has been entered.
func (c *Controller) Halted() bool {
	return c.failsafe.Halted()
}

// Run is the main control loop. It greets, starts the clock and loops
// forever; on any fault it trips the fail-safe and never returns.
func (c *Controller) Run() {
	c.boot()
	c.clock.Start()

	for {
		if err := c.step(); err != nil {
			c.setStage(StageHalted)
			c.failsafe.Trip(err) // never returns
		}
	}
}

// boot forces the heater off before anything else, then greets.
func (c *Controller) boot() {
	c.turnHeater(false)
	c.screen.Clear()
	c.screen.Print("Hello world!")
	c.beeper.Beep(bootChirp)
}

// step is one control-loop iteration.
func (c *Controller) step() error {
	if c.Session().Profile == nil {
		c.turnHeater(false)
		p := c.menu.Select()
		c.beginSession(p)
	}

	if c.finished() {
		c.finishSession()
		return nil
	}

	temp, err := CheckReading(c.sensor.ReadTemperature(), c.sensorCfg)
	if err != nil {
		return err
	}

	if err := c.Evaluate(temp); err != nil {
		return err
	}

	if err := c.checkPreheat(); err != nil {
		return err
	}

	if c.clock.TakeRefresh() {
		c.renderStatus(temp)
	}

	return nil
}

// beginSession arms a freshly selected profile.
func (c *Controller) beginSession(p Profile) {
	c.mu.Lock()
	c.session.Profile = &p
	c.session.Stage = StageIdle
	c.mu.Unlock()

	c.screen.Clear()
	c.clock.Reset()
	c.clock.MarkRefresh()
}

// Evaluate runs one bang-bang evaluation against the latest reading and
// switches stages accordingly. Pure threshold comparison, no hysteresis.
func (c *Controller) Evaluate(temp int) error {
	c.mu.RLock()
	stage := c.session.Stage
	profile := c.session.Profile
	c.mu.RUnlock()

	// Absorbing state: reject all further transitions.
	if stage == StageHalted {
		return nil
	}

	if profile == nil {
		return ErrInvalidSession
	}

	if temp > profile.TargetTemp {
		c.turnHeater(false)
		// First drop below the heater threshold ends the preheat: the
		// countdown starts now. Starting a session in a chamber that
		// is already above target skips the preheat the same way.
		if stage == StageIdle || stage == StagePreheating {
			c.setStage(StageWorking)
			c.clock.Reset()
		}
	} else {
		c.turnHeater(true)
		if stage == StageIdle {
			c.setStage(StagePreheating)
			c.clock.Reset()
		}
	}

	return nil
}

// checkPreheat faults when the chamber has not reached target within the
// preheat budget — at that point something is certainly wrong with the
// heater or the probe placement.
func (c *Controller) checkPreheat() error {
	if c.Session().Stage == StagePreheating && c.clock.Seconds() >= c.preheatCeiling {
		return ErrPreheatTimeout
	}
	return nil
}

// finished reports whether the drying countdown has run out.
func (c *Controller) finished() bool {
	s := c.Session()
	if s.Stage != StageWorking || s.Profile == nil {
		return false
	}
	return c.clock.Seconds() > uint64(s.Profile.Duration.Seconds())
}

// finishSession announces completion, waits for the operator to confirm,
// and returns the oven to the selection flow.
func (c *Controller) finishSession() {
	c.turnHeater(false)

	c.screen.Clear()
	c.screen.SetCursor(0, 0)
	c.screen.Print("Finished!")

	c.beeper.Beep(finishBeep)
	c.sleep(finishGap)
	c.beeper.Beep(finishBeep)
	c.sleep(finishGap)
	c.beeper.Beep(finishBeep)

	c.screen.SetCursor(0, 1)
	c.screen.Print("Press any key...")

	for c.input.ResolveAction() != encoder.Confirm {
	}

	c.mu.Lock()
	c.session.Profile = nil
	c.session.Stage = StageIdle
	c.mu.Unlock()
}

// renderStatus updates the display with the current temperatures and the
// time readout for the stage. Trailing spaces overwrite ghost characters
// from previously longer lines.
func (c *Controller) renderStatus(temp int) {
	s := c.Session()
	if s.Profile == nil {
		return
	}

	c.screen.SetCursor(0, 0)
	c.screen.Print(fmt.Sprintf("%s %d / %d* ", s.Profile.Name, s.Profile.TargetTemp, temp))
	if s.HeaterOn {
		c.screen.Print("H")
	}
	c.screen.Print("      ")

	c.screen.SetCursor(0, 1)
	secs := c.clock.Seconds()
	if s.Stage == StageWorking {
		total := uint64(s.Profile.Duration.Seconds())
		var remaining uint64
		if total > secs {
			remaining = total - secs
		}
		c.screen.Print(fmt.Sprintf("ETA %02d:%02d:%02d", remaining/3600, (remaining%3600)/60, remaining%60))
	} else {
		c.screen.Print(fmt.Sprintf("Preheating %02d:%02d", (secs%3600)/60, secs%60))
	}
	c.screen.Print("      ")
}

// turnHeater commands the actuator and mirrors the state in the session.
func (c *Controller) turnHeater(on bool) {
	if err := c.heater.SetHeater(on); err != nil {
		log.Printf("Failed to set heater (on=%v): %v", on, err)
	}

	c.mu.Lock()
	c.session.HeaterOn = on
	c.mu.Unlock()
}

func (c *Controller) setStage(s Stage) {
	c.mu.Lock()
	c.session.Stage = s
	c.mu.Unlock()
}
