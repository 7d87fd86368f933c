package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FromRaw builds a Function from its raw field values.
//
// The points table is converted as a whole: if any row is malformed or any
// coordinate fails to parse, FromRaw returns a nil Function and an error
// wrapping ErrMalformedTable.
//
// A spec string that cannot be decoded does not prevent loading. In that case
// FromRaw returns the Function with empty Options together with an error
// wrapping ErrMalformedOptions.
func FromRaw(raw RawFunction) (*Function, error) {
	header, tags, points, err := splitTable(raw.Points)
	if err != nil {
		return nil, fmt.Errorf("function %d: %w", raw.ID, err)
	}

	f := &Function{
		ID:       raw.ID,
		Name:     raw.Name,
		Header:   header,
		Tags:     tags,
		Points:   points,
		Spec:     raw.Function,
		Estimate: raw.Estimate,
		Types:    append([]string(nil), raw.Types...),
	}

	opts, err := ParseOptions(raw.Function)
	if err != nil {
		return f, fmt.Errorf("function %d: %w", raw.ID, err)
	}
	f.Options = opts
	return f, nil
}

func splitTable(t Table) (Row, []string, []Point, error) {
	if len(t) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: missing header row", ErrMalformedTable)
	}
	header := append(Row{}, t[0]...)
	tags := make([]string, 0, len(t)-1)
	points := make([]Point, 0, len(t)-1)
	for i, row := range t[1:] {
		if len(row) != 3 {
			return nil, nil, nil, fmt.Errorf("%w: row %d has %d fields, want 3", ErrMalformedTable, i+1, len(row))
		}
		x, err := parseCoord(row[1])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: row %d x: %v", ErrMalformedTable, i+1, err)
		}
		y, err := parseCoord(row[2])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: row %d y: %v", ErrMalformedTable, i+1, err)
		}
		tags = append(tags, row[0])
		points = append(points, Point{X: x, Y: y})
	}
	return header, tags, points, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		// Out-of-range values become ±Inf.
		if errors.Is(err, strconv.ErrRange) {
			return v, nil
		}
		return 0, err
	}
	return v, nil
}

// ToRaw rebuilds the raw field values of f. The points table is the header
// followed by one [tag, x, y] row per point, in point order. Options are not
// consulted: the spec string is written exactly as loaded.
func (f *Function) ToRaw() (RawFunction, error) {
	if len(f.Tags) != len(f.Points) {
		return RawFunction{}, fmt.Errorf("function %d: %w: %d tags for %d points", f.ID, ErrLengthMismatch, len(f.Tags), len(f.Points))
	}

	table := make(Table, 0, len(f.Points)+1)
	table = append(table, append(Row{}, f.Header...))
	for i, p := range f.Points {
		table = append(table, Row{f.Tags[i], FormatFloat(p.X), FormatFloat(p.Y)})
	}

	return RawFunction{
		ID:       f.ID,
		Name:     f.Name,
		Points:   table,
		Function: f.Spec,
		Estimate: f.Estimate,
		Types:    append([]string(nil), f.Types...),
	}, nil
}

// FormatFloat formats v as the shortest decimal string that parses back to
// v. Integral values keep a fractional part ("3.0"), and the exponent form is
// used when the decimal exponent is below -4 or at least 16.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
