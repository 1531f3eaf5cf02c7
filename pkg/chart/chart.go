// Package chart provides a custom Fyne widget that plots the chamber
// temperature trend against the profile's target.
package chart

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"

	"github.com/ovenforge/godryer/pkg/config"
	"github.com/ovenforge/godryer/pkg/sample"
)

// TrendWidget displays the temperature history, the target line and the
// heater state.
type TrendWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu       sync.RWMutex
	display  []sample.Sample
	target   float64
	heaterOn bool

	// Auto-scaling
	yMin, yMax float32
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a new TrendWidget instance.
func New(cfg *config.Config) *TrendWidget {
	w := &TrendWidget{
		cfg:              cfg,
		display:          make([]sample.Sample, 0, 1000),
		maxDisplayPoints: 1000, // limit points for efficient rendering
	}
	w.ExtendBaseWidget(w)
	w.Refresh()
	return w
}

// UpdateData updates the widget with new trend data. Call from the history
// callback via fyne.Do().
func (w *TrendWidget) UpdateData(samples []sample.Sample, target float64, heaterOn bool) {
	w.mu.Lock()

	w.display = sample.Downsample(w.display, samples, w.maxDisplayPoints)
	w.target = target
	w.heaterOn = heaterOn
	w.updateAutoScale()

	w.mu.Unlock()

	w.Refresh()
}

// updateAutoScale computes the axis ranges from the current data, keeping
// the target line in view.
func (w *TrendWidget) updateAutoScale() {
	if len(w.display) == 0 {
		w.yMin, w.yMax = 0, 100
		w.xMin = time.Now()
		w.xMax = w.xMin.Add(w.cfg.History.Window)
		return
	}

	yMin := float32(w.display[0].Celsius)
	yMax := yMin
	for _, s := range w.display {
		yMin = math32.Min(yMin, float32(s.Celsius))
		yMax = math32.Max(yMax, float32(s.Celsius))
	}

	if w.target > 0 {
		yMin = math32.Min(yMin, float32(w.target))
		yMax = math32.Max(yMax, float32(w.target))
	}

	span := yMax - yMin
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	w.yMin = yMin - margin
	w.yMax = yMax + margin

	w.xMin = w.display[0].Timestamp
	w.xMax = w.display[len(w.display)-1].Timestamp
	if w.xMax.Sub(w.xMin) < time.Minute {
		w.xMax = w.xMin.Add(time.Minute)
	}
}

// CreateRenderer creates the widget renderer.
func (w *TrendWidget) CreateRenderer() fyne.WidgetRenderer {
	return newTrendRenderer(w)
}
