package gdxcheck

import (
	"context"
	"testing"
)

func TestVerifySortAgreesWithReference(t *testing.T) {
	trials := []Trial{
		{Dim: 1, Records: 200, KeySpan: 5, Seed: 1},
		{Dim: 2, Records: 300, KeySpan: 4, Seed: 2},
		{Dim: 3, Records: 150, KeySpan: 3, Seed: 3},
		{Dim: 0, Records: 1, KeySpan: 1, Seed: 4},
		{Dim: 4, Records: 500, KeySpan: 6, Seed: 5},
	}

	results, err := VerifySort(context.Background(), trials)
	if err != nil {
		t.Fatalf("VerifySort: %v", err)
	}
	if len(results) != len(trials) {
		t.Fatalf("got %d results, want %d", len(results), len(trials))
	}
	for i, r := range results {
		if r.Mean < 0 || r.Mean > 1 {
			t.Errorf("trial %d: mean %v outside [0,1] for uniform inputs", i, r.Mean)
		}
	}
}
