package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ovenforge/godryer/pkg/config"
	"github.com/ovenforge/godryer/pkg/oven"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	// Create tabs
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createEncoderTab(state),
		createSensorTab(state),
		createDryingTab(state),
		createFilamentsTab(state),
		createMockTab(state),
	)

	// Create dialog with tabs as content
	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := oven.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - will be called on submit
	})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected // Fallback to selected text
				}

				// Check if port changed and device is connected
				portChanged := state.cfg.Serial.Port != selectedPort
				wasConnected := state.device != nil && state.device.IsConnected()

				state.cfg.Serial.Port = selectedPort
				if err := state.cfg.Save("config.yaml"); err != nil {
					dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
					return
				}

				// If port changed and device was connected, restart the chain
				if portChanged && wasConnected {
					// Gracefully close old chain
					closeOvenChain(state.chain)
					state.chain = nil

					// Close old device
					if state.device != nil {
						state.device.Close()
						state.device = nil
					}
					state.setController(nil)
					state.panel.detach()

					// Reconnect with new port
					handleConnect(state)
				}
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createEncoderTab creates the rotary encoder calibration tab. The band
// bounds must match the resistor divider on the physical knob; the values
// here are only worth touching after re-measuring the contacts.
func createEncoderTab(state *appState) *container.TabItem {
	prevEntry := widget.NewEntry()
	prevEntry.SetText(bandText(state.cfg.Encoder.Prev))

	nextEntry := widget.NewEntry()
	nextEntry.SetText(bandText(state.cfg.Encoder.Next))

	confirmEntry := widget.NewEntry()
	confirmEntry.SetText(bandText(state.cfg.Encoder.Confirm))

	jitterEntry := widget.NewEntry()
	jitterEntry.SetText(state.cfg.Encoder.Jitter.String())

	pairTimeoutEntry := widget.NewEntry()
	pairTimeoutEntry.SetText(state.cfg.Encoder.PairTimeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Prev band (low-high)", Widget: prevEntry},
			{Text: "Next band (low-high)", Widget: nextEntry},
			{Text: "Confirm band (low-high)", Widget: confirmEntry},
			{Text: "Jitter margin", Widget: jitterEntry},
			{Text: "Pair timeout", Widget: pairTimeoutEntry},
		},
		OnSubmit: func() {
			if b, err := parseBand(prevEntry.Text); err == nil {
				state.cfg.Encoder.Prev = b
			}
			if b, err := parseBand(nextEntry.Text); err == nil {
				state.cfg.Encoder.Next = b
			}
			if b, err := parseBand(confirmEntry.Text); err == nil {
				state.cfg.Encoder.Confirm = b
			}
			if j, err := time.ParseDuration(jitterEntry.Text); err == nil {
				state.cfg.Encoder.Jitter = j
			}
			if pt, err := time.ParseDuration(pairTimeoutEntry.Text); err == nil {
				state.cfg.Encoder.PairTimeout = pt
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Encoder", form)
}

// createSensorTab creates the temperature probe configuration tab.
func createSensorTab(state *appState) *container.TabItem {
	slopeEntry := widget.NewEntry()
	slopeEntry.SetText(fmt.Sprintf("%.4f", state.cfg.Sensor.Slope))

	offsetEntry := widget.NewEntry()
	offsetEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Sensor.Offset))

	freezeEntry := widget.NewEntry()
	freezeEntry.SetText(fmt.Sprintf("%d", state.cfg.Sensor.FreezeFloor))

	burnEntry := widget.NewEntry()
	burnEntry.SetText(fmt.Sprintf("%d", state.cfg.Sensor.BurnCeiling))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Slope (°C/count)", Widget: slopeEntry},
			{Text: "Offset (°C)", Widget: offsetEntry},
			{Text: "Freeze floor (°C)", Widget: freezeEntry},
			{Text: "Burn ceiling (°C)", Widget: burnEntry},
		},
		OnSubmit: func() {
			if s, err := strconv.ParseFloat(slopeEntry.Text, 64); err == nil {
				state.cfg.Sensor.Slope = s
			}
			if o, err := strconv.ParseFloat(offsetEntry.Text, 64); err == nil {
				state.cfg.Sensor.Offset = o
			}
			if f, err := strconv.Atoi(freezeEntry.Text); err == nil {
				state.cfg.Sensor.FreezeFloor = f
			}
			if b, err := strconv.Atoi(burnEntry.Text); err == nil {
				state.cfg.Sensor.BurnCeiling = b
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Sensor", form)
}

// createDryingTab creates the drying stage and trend configuration tab.
func createDryingTab(state *appState) *container.TabItem {
	preheatEntry := widget.NewEntry()
	preheatEntry.SetText(state.cfg.Drying.PreheatCeiling.String())

	windowEntry := widget.NewEntry()
	windowEntry.SetText(state.cfg.History.Window.String())

	averageEntry := widget.NewEntry()
	averageEntry.SetText(fmt.Sprintf("%d", state.cfg.History.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Preheat ceiling", Widget: preheatEntry},
			{Text: "Trend window", Widget: windowEntry},
			{Text: "Smoothing samples (0=disabled)", Widget: averageEntry},
		},
		OnSubmit: func() {
			if pc, err := time.ParseDuration(preheatEntry.Text); err == nil {
				state.cfg.Drying.PreheatCeiling = pc
			}
			if w, err := time.ParseDuration(windowEntry.Text); err == nil {
				state.cfg.History.Window = w
			}
			if avg, err := strconv.Atoi(averageEntry.Text); err == nil {
				state.cfg.History.AverageSamples = avg
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Drying", form)
}

// createFilamentsTab creates the filament catalog tab. One profile per line:
// name, target °C, drying duration.
func createFilamentsTab(state *appState) *container.TabItem {
	catalogEntry := widget.NewMultiLineEntry()
	catalogEntry.SetText(catalogText(state.cfg.Filaments))
	catalogEntry.SetMinRowsVisible(8)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Profiles (name,°C,duration)", Widget: catalogEntry},
		},
		OnSubmit: func() {
			profiles, err := parseCatalog(catalogEntry.Text)
			if err != nil {
				dialog.ShowError(fmt.Errorf("failed to parse profiles: %w", err), state.window)
				return
			}
			state.cfg.Filaments = profiles
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Filaments", form)
}

// createMockTab creates the simulated oven configuration tab.
func createMockTab(state *appState) *container.TabItem {
	ambientEntry := widget.NewEntry()
	ambientEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.AmbientC))

	gainEntry := widget.NewEntry()
	gainEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.HeaterGainC))

	timeConstantEntry := widget.NewEntry()
	timeConstantEntry.SetText(state.cfg.Mock.TimeConstant.String())

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseC))

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Ambient (°C)", Widget: ambientEntry},
			{Text: "Heater gain (°C)", Widget: gainEntry},
			{Text: "Time constant", Widget: timeConstantEntry},
			{Text: "Noise (°C)", Widget: noiseEntry},
			{Text: "Sample rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if a, err := strconv.ParseFloat(ambientEntry.Text, 64); err == nil {
				state.cfg.Mock.AmbientC = a
			}
			if g, err := strconv.ParseFloat(gainEntry.Text, 64); err == nil {
				state.cfg.Mock.HeaterGainC = g
			}
			if tc, err := time.ParseDuration(timeConstantEntry.Text); err == nil {
				state.cfg.Mock.TimeConstant = tc
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseC = n
			}
			if sr, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = sr
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}

func bandText(b config.Band) string {
	return fmt.Sprintf("%d-%d", b.Low, b.High)
}

func parseBand(text string) (config.Band, error) {
	low, high, ok := strings.Cut(strings.TrimSpace(text), "-")
	if !ok {
		return config.Band{}, fmt.Errorf("expected low-high, got %q", text)
	}
	l, err := strconv.ParseUint(strings.TrimSpace(low), 10, 16)
	if err != nil {
		return config.Band{}, fmt.Errorf("invalid low bound: %w", err)
	}
	h, err := strconv.ParseUint(strings.TrimSpace(high), 10, 16)
	if err != nil {
		return config.Band{}, fmt.Errorf("invalid high bound: %w", err)
	}
	if l >= h {
		return config.Band{}, fmt.Errorf("low bound %d not below high bound %d", l, h)
	}
	return config.Band{Low: uint16(l), High: uint16(h)}, nil
}

func catalogText(profiles []config.FilamentConfig) string {
	var sb strings.Builder
	for _, p := range profiles {
		fmt.Fprintf(&sb, "%s,%d,%s\n", p.Name, p.TargetTemp, p.Duration)
	}
	return sb.String()
}

func parseCatalog(text string) ([]config.FilamentConfig, error) {
	var profiles []config.FilamentConfig

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("expected name,temp,duration in %q", line)
		}

		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, fmt.Errorf("empty profile name in %q", line)
		}

		temp, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid target temperature in %q: %w", line, err)
		}

		dur, err := time.ParseDuration(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("invalid duration in %q: %w", line, err)
		}

		profiles = append(profiles, config.FilamentConfig{
			Name:       name,
			TargetTemp: temp,
			Duration:   dur,
		})
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one profile")
	}

	return profiles, nil
}
