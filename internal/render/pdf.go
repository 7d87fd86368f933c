package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/rcliao/geofunc/internal/model"
)

// ErrLogScale is returned when a log-scaled axis holds a value <= 0.
var ErrLogScale = errors.New("non-positive value on logarithmic axis")

// Plot area on an A4 landscape page, in mm.
const (
	plotLeft   = 30.0
	plotTop    = 25.0
	plotWidth  = 230.0
	plotHeight = 150.0
	tickCount  = 5
)

// axis maps data values onto one page dimension.
type axis struct {
	log      bool
	min, max float64 // in plotted units (log10 when log is set)
}

func newAxis(values []float64, log bool, name string) (axis, error) {
	a := axis{log: log, min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range values {
		if log {
			if v <= 0 {
				return axis{}, fmt.Errorf("%w: %s=%g", ErrLogScale, name, v)
			}
			v = math.Log10(v)
		}
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	if a.min == a.max {
		a.min, a.max = a.min-1, a.max+1
	}
	return a, nil
}

// frac returns the position of v along the axis in [0, 1].
func (a axis) frac(v float64) float64 {
	if a.log {
		v = math.Log10(v)
	}
	return (v - a.min) / (a.max - a.min)
}

// ticks returns tick values in data units. Log axes tick at each decade.
func (a axis) ticks() []float64 {
	var ts []float64
	if a.log {
		const eps = 1e-9
		for e := math.Ceil(a.min - eps); e <= math.Floor(a.max+eps); e++ {
			ts = append(ts, math.Pow(10, e))
		}
		if len(ts) > 0 {
			return ts
		}
	}
	step := (a.max - a.min) / (tickCount - 1)
	for i := 0; i < tickCount; i++ {
		v := a.min + float64(i)*step
		if a.log {
			v = math.Pow(10, v)
		}
		ts = append(ts, v)
	}
	return ts
}

func axisLabel(param, fallback string, log bool) string {
	if param == "" {
		param = fallback
	}
	if log {
		param += " (log)"
	}
	return param
}

// PDF renders f as a single-page plot. Axes are labelled with the
// InputParam and OutputParam options; LogInput scales the x axis and
// LogOutput the y axis logarithmically.
func PDF(f *model.Function) ([]byte, error) {
	if f.Len() == 0 {
		return nil, model.ErrEmptyCurve
	}
	opts, err := f.Options.Typed()
	if err != nil {
		return nil, err
	}
	xs, ys := f.X(), f.Y()
	xa, err := newAxis(xs, opts.LogInput, "x")
	if err != nil {
		return nil, err
	}
	ya, err := newAxis(ys, opts.LogOutput, "y")
	if err != nil {
		return nil, err
	}
	px := func(v float64) float64 { return plotLeft + xa.frac(v)*plotWidth }
	py := func(v float64) float64 { return plotTop + plotHeight - ya.frac(v)*plotHeight }

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(f.Name, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 12)
	pdf.SetXY(plotLeft, 10)
	pdf.CellFormat(plotWidth, 8, fmt.Sprintf("%d: %s", f.ID, f.Name), "", 0, "C", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Rect(plotLeft, plotTop, plotWidth, plotHeight, "D")

	pdf.SetFont("Arial", "", 8)
	pdf.SetLineWidth(0.1)
	for _, t := range xa.ticks() {
		x := px(t)
		pdf.Line(x, plotTop+plotHeight, x, plotTop+plotHeight+2)
		label := tickLabel(t)
		pdf.Text(x-pdf.GetStringWidth(label)/2, plotTop+plotHeight+6, label)
	}
	for _, t := range ya.ticks() {
		y := py(t)
		pdf.Line(plotLeft-2, y, plotLeft, y)
		label := tickLabel(t)
		pdf.Text(plotLeft-3-pdf.GetStringWidth(label), y+1, label)
	}

	pdf.SetFont("Arial", "", 10)
	xLabel := axisLabel(opts.InputParam, "X", opts.LogInput)
	pdf.Text(plotLeft+plotWidth/2-pdf.GetStringWidth(xLabel)/2, plotTop+plotHeight+14, xLabel)
	yLabel := axisLabel(opts.OutputParam, "Y", opts.LogOutput)
	pdf.TransformBegin()
	pdf.TransformRotate(90, 12, plotTop+plotHeight/2)
	pdf.Text(12-pdf.GetStringWidth(yLabel)/2, plotTop+plotHeight/2, yLabel)
	pdf.TransformEnd()

	pdf.SetDrawColor(31, 119, 180)
	pdf.SetFillColor(31, 119, 180)
	pdf.SetLineWidth(0.5)
	for i := range xs {
		if i > 0 {
			pdf.Line(px(xs[i-1]), py(ys[i-1]), px(xs[i]), py(ys[i]))
		}
		pdf.Circle(px(xs[i]), py(ys[i]), 0.8, "F")
	}

	legendX, legendY := plotLeft+plotWidth-60, plotTop+6
	pdf.Line(legendX, legendY, legendX+8, legendY)
	pdf.SetFont("Arial", "", 9)
	pdf.Text(legendX+10, legendY+1, f.Name)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func tickLabel(v float64) string {
	return fmt.Sprintf("%.3g", v)
}
