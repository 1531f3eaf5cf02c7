package chart

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"

	"github.com/ovenforge/godryer/pkg/sample"
)

var (
	backgroundColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	gridColor       = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor      = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor      = color.RGBA{R: 255, G: 165, B: 0, A: 255} // chamber temperature
	targetColor     = color.RGBA{R: 80, G: 180, B: 80, A: 255} // target line
	heaterColor     = color.RGBA{R: 220, G: 60, B: 60, A: 255} // heater-on indicator
)

// trendRenderer renders the trend widget.
type trendRenderer struct {
	trend *TrendWidget

	background *canvas.Rectangle
	objects    []fyne.CanvasObject
	lastSize   fyne.Size
}

func newTrendRenderer(w *TrendWidget) *trendRenderer {
	bg := canvas.NewRectangle(backgroundColor)
	return &trendRenderer{
		trend:      w,
		background: bg,
		objects:    []fyne.CanvasObject{bg},
	}
}

// MinSize returns the minimum size of the widget.
func (r *trendRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 240)
}

// Layout arranges the widget components.
func (r *trendRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.trend.BaseWidget.Refresh()
	}
}

// Refresh redraws the trend from the current data.
func (r *trendRenderer) Refresh() {
	r.trend.mu.RLock()
	samples := r.trend.display
	target := r.trend.target
	heaterOn := r.trend.heaterOn
	yMin, yMax := r.trend.yMin, r.trend.yMax
	xMin, xMax := r.trend.xMin, r.trend.xMax
	r.trend.mu.RUnlock()

	size := r.trend.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}

	const (
		marginLeft   = float32(48)
		marginRight  = float32(16)
		marginTop    = float32(16)
		marginBottom = float32(32)
	)

	plot := plotArea{
		x:    marginLeft,
		y:    marginTop,
		w:    size.Width - marginLeft - marginRight,
		h:    size.Height - marginTop - marginBottom,
		yMin: yMin,
		yMax: yMax,
		xMin: xMin,
		xMax: xMax,
	}

	r.drawGrid(plot)

	if target > 0 {
		r.drawTargetLine(plot, float32(target))
	}

	if len(samples) > 1 {
		r.drawTrace(plot, samples)
	}

	if heaterOn {
		label := canvas.NewText("HEATER", heaterColor)
		label.TextSize = 12
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.Move(fyne.NewPos(plot.x+plot.w-60, plot.y+4))
		r.objects = append(r.objects, label)
	}

	canvas.Refresh(r.trend)
}

// Objects returns the canvas objects to render.
func (r *trendRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up renderer resources.
func (r *trendRenderer) Destroy() {}

// plotArea holds the pixel rectangle and value ranges of the plot.
type plotArea struct {
	x, y, w, h float32
	yMin, yMax float32
	xMin, xMax time.Time
}

// mapY maps a Celsius value to a pixel Y coordinate.
func (p plotArea) mapY(c float32) float32 {
	span := p.yMax - p.yMin
	if span == 0 {
		span = 1
	}
	frac := (c - p.yMin) / span
	frac = math32.Max(0, math32.Min(1, frac))
	return p.y + p.h*(1-frac)
}

// mapX maps a timestamp to a pixel X coordinate.
func (p plotArea) mapX(t time.Time) float32 {
	span := float32(p.xMax.Sub(p.xMin))
	if span == 0 {
		span = 1
	}
	frac := float32(t.Sub(p.xMin)) / span
	frac = math32.Max(0, math32.Min(1, frac))
	return p.x + p.w*frac
}

// drawGrid draws the background grid with Celsius and time labels.
func (r *trendRenderer) drawGrid(p plotArea) {
	const hLines = 5
	for i := 0; i <= hLines; i++ {
		y := p.y + float32(i)*p.h/float32(hLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(p.x, y)
		line.Position2 = fyne.NewPos(p.x+p.w, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := p.yMax - float32(i)*(p.yMax-p.yMin)/float32(hLines)
		text := canvas.NewText(fmt.Sprintf("%.0f°C", value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-6, y-6))
		r.objects = append(r.objects, text)
	}

	const vLines = 6
	for i := 0; i <= vLines; i++ {
		x := p.x + float32(i)*p.w/float32(vLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, p.y)
		line.Position2 = fyne.NewPos(x, p.y+p.h)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		frac := float32(i) / float32(vLines)
		ts := p.xMin.Add(time.Duration(float64(p.xMax.Sub(p.xMin)) * float64(frac)))
		text := canvas.NewText(ts.Format("15:04:05"), labelColor)
		text.TextSize = 10
		text.Move(fyne.NewPos(x-24, p.y+p.h+4))
		r.objects = append(r.objects, text)
	}
}

// drawTargetLine draws the profile target as a horizontal line.
func (r *trendRenderer) drawTargetLine(p plotArea, target float32) {
	y := p.mapY(target)
	line := canvas.NewLine(targetColor)
	line.Position1 = fyne.NewPos(p.x, y)
	line.Position2 = fyne.NewPos(p.x+p.w, y)
	line.StrokeWidth = 1
	r.objects = append(r.objects, line)
}

// drawTrace draws the temperature polyline.
func (r *trendRenderer) drawTrace(p plotArea, samples []sample.Sample) {
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		line := canvas.NewLine(traceColor)
		line.Position1 = fyne.NewPos(p.mapX(prev.Timestamp), p.mapY(float32(prev.Celsius)))
		line.Position2 = fyne.NewPos(p.mapX(curr.Timestamp), p.mapY(float32(curr.Celsius)))
		line.StrokeWidth = 2
		r.objects = append(r.objects, line)
	}
}
