package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ovenforge/godryer/pkg/chart"
	"github.com/ovenforge/godryer/pkg/config"
	"github.com/ovenforge/godryer/pkg/dryer"
	"github.com/ovenforge/godryer/pkg/encoder"
	"github.com/ovenforge/godryer/pkg/history"
	"github.com/ovenforge/godryer/pkg/oven"
	"github.com/ovenforge/godryer/pkg/sample"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use a simulated oven instead of a serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Trend smoothing window (0 = disabled, overrides config)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Override smoothing window if provided via command line
	if *averageSamplesFlag >= 0 {
		cfg.History.AverageSamples = *averageSamplesFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.ovenforge.godryer")

	// Create main window
	window := application.NewWindow("Filament Dryer")
	window.Resize(fyne.NewSize(1000, 700))
	window.CenterOnScreen()

	// Create trend recorder
	recorder := history.New(cfg.History)

	// Create application state
	appState := &appState{
		cfg:      cfg,
		device:   nil,
		recorder: recorder,
		window:   window,
		useMock:  *mockFlag,
	}

	// Create toolbar
	toolbar := createToolbar(appState)

	// Create trend widget for graph display
	trendWidget := chart.New(cfg)
	appState.trendWidget = trendWidget

	// Create front panel mirror with operator input
	panel := newFrontPanel(appState)
	appState.panel = panel

	// Register trend callback once; the recorder survives reconnects.
	// Throttle UI updates to ~10 FPS - conversions arrive slower than that
	// anyway, but a burst after a stall should not flood the event loop.
	const updateInterval = 100 * time.Millisecond
	recorder.OnUpdate(func(samples []sample.Sample) {
		appState.updateMu.Lock()
		now := time.Now()
		tooSoon := now.Sub(appState.lastUpdateTime) < updateInterval
		if !tooSoon {
			appState.lastUpdateTime = now
		}
		appState.updateMu.Unlock()

		if tooSoon {
			return
		}

		var heaterOn bool
		if len(samples) > 0 {
			heaterOn = samples[len(samples)-1].HeaterOn
		}

		var target float64
		var session dryer.Session
		if ctrl := appState.controller(); ctrl != nil {
			session = ctrl.Session()
			if session.Profile != nil {
				target = float64(session.Profile.TargetTemp)
			}
		}

		fyne.Do(func() {
			appState.trendWidget.UpdateData(samples, target, heaterOn)
			appState.panel.setStatus(session, samples)
		})
	})

	// Create border layout: toolbar at top, front panel at the bottom, trend
	// widget as content
	content := container.NewBorder(
		toolbar,
		panel.container,
		nil,
		nil,
		trendWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()
}

// ovenChain tracks the components of the running oven session for graceful
// shutdown.
type ovenChain struct {
	device        oven.Device
	samplesStream <-chan sample.Sample
	historyDone   chan struct{} // Closed when the recorder goroutine exits
	controller    *dryer.Controller
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	device      oven.Device
	recorder    *history.Recorder
	trendWidget *chart.TrendWidget
	panel       *frontPanel
	window      fyne.Window
	connectBtn  *widget.Button
	useMock     bool
	chain       *ovenChain // Current oven chain (nil if not connected)

	ctrlMu sync.RWMutex
	ctrl   *dryer.Controller

	// Throttling for trend updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// controller returns the active drying controller, or nil when disconnected.
func (s *appState) controller() *dryer.Controller {
	s.ctrlMu.RLock()
	defer s.ctrlMu.RUnlock()
	return s.ctrl
}

func (s *appState) setController(c *dryer.Controller) {
	s.ctrlMu.Lock()
	s.ctrl = c
	s.ctrlMu.Unlock()
}

// createToolbar creates the application toolbar with Connect and Settings
// buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		nil, // right
		nil, // center (spacer)
	)
}

// closeOvenChain gracefully closes the running oven session.
// Waits for the recorder goroutine to finish and its channel to drain.
func closeOvenChain(chain *ovenChain) {
	if chain == nil {
		return
	}

	// Close device - this will close the raw samples channel
	if chain.device != nil {
		chain.device.Close()
	}

	// Wait for the recorder goroutine to finish. It exits when the sample
	// stream closes, which happens when the converters finish draining.
	if chain.historyDone != nil {
		<-chain.historyDone
	}

	// Stop the stage clock. The control loop goroutine itself is abandoned:
	// it blocks inside ReadTemperature waiting for a conversion that will
	// never come, exactly like the firmware build stalling on a dead probe
	// bus. A reconnect starts a fresh loop.
	if chain.controller != nil {
		chain.controller.Clock().Stop()
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		// Disconnect - gracefully close the oven chain
		closeOvenChain(state.chain)
		state.chain = nil
		state.device = nil
		state.setController(nil)
		state.panel.detach()
		if state.useMock {
			fmt.Println("Disconnected from simulated oven")
		} else {
			fmt.Println("Disconnected from serial port")
		}
	} else {
		// Connect
		var device oven.Device
		if state.useMock {
			device = oven.NewMock(state.cfg)
			fmt.Println("Using simulated oven")
		} else {
			device = oven.New(state.cfg.Serial.Port, oven.DefaultBaudRate, oven.DefaultBufferSize, state.cfg.Sensor)
		}

		// The decoder must see every encoder edge, so register the callback
		// before the device starts producing samples.
		decoder := encoder.New(device, state.cfg.Encoder)
		device.OnEncoderEdge(decoder.Notify)

		if err := device.Connect(); err != nil {
			if state.useMock {
				dialog.ShowError(fmt.Errorf("failed to start simulated oven: %w", err), state.window)
			} else {
				dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
			}
			return
		}
		state.device = device
		if state.useMock {
			fmt.Printf("Connected to simulated oven\n")
		} else {
			fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
		}

		// Reset recorder shutdown flag for the new chain
		state.recorder.ResetShutdown()

		// Chain converters: calibration converter always, smoothing
		// conditionally. Larger buffers prevent channel-full drops when the
		// UI stalls.
		baseStream := sample.NewConverter(state.cfg, 500)(device.Samples())

		var samplesStream <-chan sample.Sample
		if state.cfg.History.AverageSamples > 0 {
			samplesStream = sample.NewAveraging(state.cfg.History.AverageSamples, 500, state.cfg.Sensor.DisconnectedC)(baseStream)
		} else {
			samplesStream = baseStream
		}

		// Record samples for the trend view
		historyDone := make(chan struct{})
		go func() {
			defer close(historyDone)
			state.recorder.ProcessSamples(samplesStream)
		}()

		// The drying control loop runs against the device exactly as the
		// firmware build runs against the pins: sensor, heater, beeper and
		// display all come from the same Device.
		controller := dryer.NewController(state.cfg, device, device, device, device.Display(), decoder)
		state.setController(controller)
		go controller.Run()

		// Mirror the physical front panel in the UI
		state.panel.attach(device)

		// Store chain for graceful shutdown
		state.chain = &ovenChain{
			device:        device,
			samplesStream: samplesStream,
			historyDone:   historyDone,
			controller:    controller,
		}
	}
}
