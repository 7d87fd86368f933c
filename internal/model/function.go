// Package model defines the Function entity of a project file and its
// conversion to and from the host's tagged-row representation.
package model

import (
	"fmt"
	"math"
	"slices"
)

// Row is one row of a raw points table.
type Row []string

// Table is the tagged-row form of a curve: a header row followed by
// [tag, x, y] rows.
type Table []Row

// RawFunction holds the field values of a function exactly as the host file
// stores them.
type RawFunction struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Points   Table    `json:"points"`
	Function string   `json:"function"`
	Estimate string   `json:"estimate,omitempty"`
	Types    []string `json:"types,omitempty"`
}

// Point is one (x, y) pair of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Function is a named, tagged XY curve.
//
// Options is derived from Spec whenever a Function is built with FromRaw.
// ToRaw never writes Options back into Spec: editing Options in memory does
// not change what gets saved.
type Function struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Header   Row      `json:"header"`
	Tags     []string `json:"tags"`
	Points   []Point  `json:"points"`
	Spec     string   `json:"function"`
	Options  Options  `json:"options"`
	Estimate string   `json:"estimate,omitempty"`
	Types    []string `json:"types,omitempty"`
}

// Len returns the number of points.
func (f *Function) Len() int { return len(f.Points) }

// X returns a copy of the x coordinates in point order.
func (f *Function) X() []float64 {
	xs := make([]float64, len(f.Points))
	for i, p := range f.Points {
		xs[i] = p.X
	}
	return xs
}

// Y returns a copy of the y coordinates in point order.
func (f *Function) Y() []float64 {
	ys := make([]float64, len(f.Points))
	for i, p := range f.Points {
		ys[i] = p.Y
	}
	return ys
}

// SetX replaces the x coordinate of every point. values must have one entry
// per point; otherwise nothing is written.
func (f *Function) SetX(values []float64) error {
	if len(values) != len(f.Points) {
		return fmt.Errorf("set x: %w: got %d values for %d points", ErrLengthMismatch, len(values), len(f.Points))
	}
	for i, v := range values {
		f.Points[i].X = v
	}
	return nil
}

// SetY replaces the y coordinate of every point. values must have one entry
// per point; otherwise nothing is written.
func (f *Function) SetY(values []float64) error {
	if len(values) != len(f.Points) {
		return fmt.Errorf("set y: %w: got %d values for %d points", ErrLengthMismatch, len(values), len(f.Points))
	}
	for i, v := range values {
		f.Points[i].Y = v
	}
	return nil
}

// Evaluate interpolates the curve linearly at x. Points must be ordered by
// non-decreasing x. Values outside the curve's range are clamped to the end
// points. When the options mark the input axis as logarithmic, the
// interpolation runs in log10(x). A LogInput flag that is not a boolean is
// an error wrapping ErrMalformedOptions.
func (f *Function) Evaluate(x float64) (float64, error) {
	n := len(f.Points)
	if n == 0 {
		return 0, ErrEmptyCurve
	}
	typed, err := f.Options.Typed()
	if err != nil {
		return 0, fmt.Errorf("evaluate: %w", err)
	}
	for i := 1; i < n; i++ {
		if f.Points[i].X < f.Points[i-1].X {
			return 0, fmt.Errorf("evaluate: %w at point %d", ErrNotMonotonic, i)
		}
	}
	if x <= f.Points[0].X {
		return f.Points[0].Y, nil
	}
	if x >= f.Points[n-1].X {
		return f.Points[n-1].Y, nil
	}

	logInput := typed.LogInput

	for i := 1; i < n; i++ {
		left, right := f.Points[i-1], f.Points[i]
		if x > right.X {
			continue
		}
		if right.X == left.X {
			return right.Y, nil
		}
		x0, x1, xi := left.X, right.X, x
		if logInput && x0 > 0 {
			x0, x1, xi = math.Log10(x0), math.Log10(x1), math.Log10(x)
		}
		t := (xi - x0) / (x1 - x0)
		return left.Y + t*(right.Y-left.Y), nil
	}
	return f.Points[n-1].Y, nil
}

// Clone returns a deep copy of f.
func (f *Function) Clone() *Function {
	c := *f
	c.Header = slices.Clone(f.Header)
	c.Tags = slices.Clone(f.Tags)
	c.Points = slices.Clone(f.Points)
	c.Types = slices.Clone(f.Types)
	c.Options = f.Options.clone()
	return &c
}
