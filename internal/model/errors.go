package model

import "errors"

var (
	// ErrMalformedTable reports a raw points table that is not a header row
	// followed by [tag, x, y] rows with numeric coordinates.
	ErrMalformedTable = errors.New("malformed points table")

	// ErrMalformedOptions reports a function spec that is not of the form
	// Name(k1=v1,k2=v2,...).
	ErrMalformedOptions = errors.New("malformed function options")

	// ErrLengthMismatch reports a coordinate slice or tag list whose length
	// differs from the number of points.
	ErrLengthMismatch = errors.New("length mismatch")

	ErrEmptyCurve   = errors.New("curve has no points")
	ErrNotMonotonic = errors.New("x values are not in ascending order")
)
