package model

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const volWCSpec = "VolWCFun(InputParam=Suction,OutputParam=WaterContent,LogInput=1,LogOutput=0)"

func volWCRaw() RawFunction {
	return RawFunction{
		ID:   3,
		Name: "Silt VWC",
		Points: Table{
			{"Header"},
			{"t1", "0.0", "1.5"},
			{"t2", "1.0", "2.5"},
		},
		Function: volWCSpec,
		Estimate: "Fredlund",
		Types:    []string{"Material", "Hydraulic", "VolWCFun"},
	}
}

func TestFromRawScenario(t *testing.T) {
	f, err := FromRaw(volWCRaw())
	if err != nil {
		t.Fatalf("from raw: %v", err)
	}

	if diff := cmp.Diff([]Point{{0, 1.5}, {1, 2.5}}, f.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"t1", "t2"}, f.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if v, _ := f.Options.Get("LogInput"); v != "1" {
		t.Errorf("expected LogInput 1, got %q", v)
	}

	if err := f.SetY([]float64{3.0, 4.0}); err != nil {
		t.Fatalf("set y: %v", err)
	}
	raw, err := f.ToRaw()
	if err != nil {
		t.Fatalf("to raw: %v", err)
	}
	want := Table{
		{"Header"},
		{"t1", "0.0", "3.0"},
		{"t2", "1.0", "4.0"},
	}
	if diff := cmp.Diff(want, raw.Points); diff != "" {
		t.Errorf("raw points mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripIdentity(t *testing.T) {
	in := volWCRaw()
	f, err := FromRaw(in)
	if err != nil {
		t.Fatalf("from raw: %v", err)
	}
	out, err := f.ToRaw()
	if err != nil {
		t.Fatalf("to raw: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestToRawIsRepeatable(t *testing.T) {
	f, _ := FromRaw(volWCRaw())
	first, _ := f.ToRaw()
	second, err := f.ToRaw()
	if err != nil {
		t.Fatalf("second to raw: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second call differs (-first +second):\n%s", diff)
	}
}

func TestHeaderIsCopied(t *testing.T) {
	in := volWCRaw()
	in.Points[0] = Row{"Len=2", "Kind=Spline"}
	f, err := FromRaw(in)
	if err != nil {
		t.Fatalf("from raw: %v", err)
	}
	in.Points[0][0] = "changed"
	if f.Header[0] != "Len=2" {
		t.Errorf("header aliases the input table: %q", f.Header[0])
	}
	out, _ := f.ToRaw()
	if diff := cmp.Diff(Row{"Len=2", "Kind=Spline"}, out.Points[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRawCardinality(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		want  int
	}{
		{"header only", Table{{"H"}}, 0},
		{"one row", Table{{"H"}, {"a", "1", "2"}}, 1},
		{"many rows", Table{{"H"}, {"a", "1", "2"}, {"b", "3", "4"}, {"c", "5", "6"}, {"d", "7", "8"}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FromRaw(RawFunction{Points: tt.table, Function: "F(K=V)"})
			if err != nil {
				t.Fatalf("from raw: %v", err)
			}
			if len(f.Points) != tt.want || len(f.Tags) != tt.want {
				t.Errorf("expected %d points and tags, got %d points and %d tags", tt.want, len(f.Points), len(f.Tags))
			}
			out, _ := f.ToRaw()
			if len(out.Points) != tt.want+1 {
				t.Errorf("expected %d raw rows, got %d", tt.want+1, len(out.Points))
			}
		})
	}
}

func TestFromRawMalformedTable(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"empty", Table{}},
		{"short row", Table{{"H"}, {"a", "1"}}},
		{"long row", Table{{"H"}, {"a", "1", "2", "3"}}},
		{"bad x", Table{{"H"}, {"a", "1", "2"}, {"b", "abc", "2"}}},
		{"bad y", Table{{"H"}, {"a", "1", "2"}, {"b", "3", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FromRaw(RawFunction{ID: 9, Points: tt.table, Function: volWCSpec})
			if !errors.Is(err, ErrMalformedTable) {
				t.Fatalf("expected ErrMalformedTable, got %v", err)
			}
			if f != nil {
				t.Error("expected no function on a malformed table")
			}
		})
	}
}

func TestFromRawMalformedOptionsKeepsFunction(t *testing.T) {
	in := volWCRaw()
	in.Function = "VolWCFun(InputParam=Suction,LogInput)"
	f, err := FromRaw(in)
	if !errors.Is(err, ErrMalformedOptions) {
		t.Fatalf("expected ErrMalformedOptions, got %v", err)
	}
	if f == nil {
		t.Fatal("expected the function to be returned")
	}
	if f.Len() != 2 || f.Name != "Silt VWC" {
		t.Errorf("other fields not usable: %+v", f)
	}
	if f.Options.Len() != 0 {
		t.Errorf("expected empty options, got %v", f.Options.Keys())
	}
}

func TestToRawRejectsTagMismatch(t *testing.T) {
	f, _ := FromRaw(volWCRaw())
	f.Tags = f.Tags[:1]
	if _, err := f.ToRaw(); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestOptionsEditsAreNotSaved(t *testing.T) {
	f, _ := FromRaw(volWCRaw())
	f.Options.Set("LogInput", "0")
	f.Options.Set("Extra", "x")

	raw, err := f.ToRaw()
	if err != nil {
		t.Fatalf("to raw: %v", err)
	}
	if raw.Function != volWCSpec {
		t.Errorf("expected spec unchanged, got %q", raw.Function)
	}

	reloaded, _ := FromRaw(raw)
	if v, _ := reloaded.Options.Get("LogInput"); v != "1" {
		t.Errorf("expected reloaded LogInput 1, got %q", v)
	}
	if _, ok := reloaded.Options.Get("Extra"); ok {
		t.Error("expected in-memory option edit to be lost on reload")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{3, "3.0"},
		{-2, "-2.0"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1.5e-7, "1.5e-07"},
		{123456789012345.0, "123456789012345.0"},
		{1e16, "1e+16"},
		{2.5e20, "2.5e+20"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaterializeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("formatted floats parse back exactly", prop.ForAll(
		func(v float64) bool {
			got, err := strconv.ParseFloat(FormatFloat(v), 64)
			return err == nil && got == v
		},
		gen.Float64(),
	))

	properties.Property("tags and points stay parallel and round trip", prop.ForAll(
		func(xs, ys []float64, tag string) bool {
			n := min(len(xs), len(ys))
			table := Table{{"Header", "v1"}}
			for i := 0; i < n; i++ {
				table = append(table, Row{tag + strconv.Itoa(i), FormatFloat(xs[i]), FormatFloat(ys[i])})
			}
			f, err := FromRaw(RawFunction{Points: table, Function: volWCSpec})
			if err != nil || len(f.Tags) != n || len(f.Points) != n {
				return false
			}
			out, err := f.ToRaw()
			return err == nil && cmp.Equal(table, out.Points)
		},
		gen.SliceOf(gen.Float64()),
		gen.SliceOf(gen.Float64()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
