package store

import (
	"context"
	"testing"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, PutParams{Project: "a", Function: testFunction(t, 1, "Silt VWC", "1.0")})
	s.Put(ctx, PutParams{Project: "a", Function: testFunction(t, 2, "Silt K", "1.0"), Note: "calibrated"})
	s.Put(ctx, PutParams{Project: "b", Function: testFunction(t, 1, "Clay VWC", "1.0")})

	// Search by name
	results, err := s.Search(ctx, SearchParams{Query: "Silt"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Search with project filter
	results, err = s.Search(ctx, SearchParams{Project: "b", Query: "VWC"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// Search by spec string
	results, err = s.Search(ctx, SearchParams{Query: "InputParam=Suction"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Search by note
	results, _ = s.Search(ctx, SearchParams{Query: "calibrated"})
	if len(results) != 1 || results[0].FunctionID != 2 {
		t.Fatalf("expected function 2, got %+v", results)
	}

	// No results
	results, err = s.Search(ctx, SearchParams{Query: "Permeability"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}
