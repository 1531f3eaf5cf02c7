package main

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ovenforge/godryer/pkg/dryer"
	"github.com/ovenforge/godryer/pkg/oven"
	"github.com/ovenforge/godryer/pkg/sample"
)

// frontPanel mirrors the oven's physical front: the two-line character LCD
// and the rotary knob. On a simulated oven the knob buttons script encoder
// pulses; on a real oven input comes from the physical knob and the buttons
// stay disabled.
type frontPanel struct {
	container fyne.CanvasObject

	line0 *widget.Label
	line1 *widget.Label

	prevBtn    *widget.Button
	confirmBtn *widget.Button
	nextBtn    *widget.Button
	faultCheck *widget.Check

	statusLabel *widget.Label

	mu   sync.RWMutex
	mock *oven.Mock
}

func newFrontPanel(state *appState) *frontPanel {
	p := &frontPanel{
		line0:       widget.NewLabel(""),
		line1:       widget.NewLabel(""),
		statusLabel: widget.NewLabel("Disconnected"),
	}
	p.line0.TextStyle = fyne.TextStyle{Monospace: true}
	p.line1.TextStyle = fyne.TextStyle{Monospace: true}

	// Knob pulses block for tens of milliseconds, so they run off the event
	// loop.
	p.prevBtn = widget.NewButton("◀", func() {
		if m := p.mockDevice(); m != nil {
			go m.Rotate(false)
		}
	})
	p.confirmBtn = widget.NewButton("OK", func() {
		if m := p.mockDevice(); m != nil {
			go m.Press()
		}
	})
	p.nextBtn = widget.NewButton("▶", func() {
		if m := p.mockDevice(); m != nil {
			go m.Rotate(true)
		}
	})

	p.faultCheck = widget.NewCheck("Probe fault", func(checked bool) {
		if m := p.mockDevice(); m != nil {
			m.SetProbeDisconnected(checked)
		}
	})

	p.setEnabled(false)

	lcd := container.NewVBox(p.line0, p.line1)
	knob := container.NewHBox(p.prevBtn, p.confirmBtn, p.nextBtn, p.faultCheck)

	p.container = container.NewBorder(
		nil, nil,
		lcd,
		knob,
		p.statusLabel,
	)

	return p
}

func (p *frontPanel) mockDevice() *oven.Mock {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mock
}

// attach wires the panel to a connected device: the LCD mirror follows the
// device's display and the knob buttons activate for a simulated oven.
func (p *frontPanel) attach(device oven.Device) {
	m, _ := device.(*oven.Mock)
	p.mu.Lock()
	p.mock = m
	p.mu.Unlock()

	p.setEnabled(m != nil)
	p.statusLabel.SetText("Connected")

	if mirror, ok := device.(oven.ScreenMirror); ok {
		p.showLines(mirror.ScreenLines())
		mirror.OnScreen(func(lines [2]string) {
			fyne.Do(func() {
				p.showLines(lines)
			})
		})
	}
}

// detach disables the panel after a disconnect.
func (p *frontPanel) detach() {
	p.mu.Lock()
	p.mock = nil
	p.mu.Unlock()

	p.setEnabled(false)
	p.statusLabel.SetText("Disconnected")
	p.showLines([2]string{"", ""})
}

func (p *frontPanel) setEnabled(enabled bool) {
	if enabled {
		p.prevBtn.Enable()
		p.confirmBtn.Enable()
		p.nextBtn.Enable()
		p.faultCheck.Enable()
	} else {
		p.prevBtn.Disable()
		p.confirmBtn.Disable()
		p.nextBtn.Disable()
		p.faultCheck.SetChecked(false)
		p.faultCheck.Disable()
	}
}

// showLines renders the mirrored display contents. Must run on the Fyne
// event loop.
func (p *frontPanel) showLines(lines [2]string) {
	p.line0.SetText(fmt.Sprintf("[%-16s]", lines[0]))
	p.line1.SetText(fmt.Sprintf("[%-16s]", lines[1]))
}

// setStatus summarizes the drying session next to the LCD mirror. Must run
// on the Fyne event loop.
func (p *frontPanel) setStatus(session dryer.Session, samples []sample.Sample) {
	text := "Connected"

	if session.Profile != nil {
		text = fmt.Sprintf("%s: %s", session.Profile.Name, session.Stage)
	} else if session.Stage == dryer.StageHalted {
		text = session.Stage.String()
	}

	if len(samples) > 0 {
		latest := samples[len(samples)-1]
		heater := "off"
		if latest.HeaterOn {
			heater = "ON"
		}
		text += fmt.Sprintf("  |  %.1f°C  heater %s", latest.Celsius, heater)
	}

	p.statusLabel.SetText(text)
}
