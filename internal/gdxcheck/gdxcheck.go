// Package gdxcheck holds cross-checking helpers for tests: brute-force reference implementations that a faster,
// production code path (radix sort in internal/accum, in particular) can
// be checked against over many randomized trials at once.
package gdxcheck

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/gdxio/gdx/internal/accum"
)

// Trial is one randomized radix-sort cross-check: dim dimensions,
// records records, keys drawn from [0, keySpan).
type Trial struct {
	Dim     int
	Records int
	KeySpan int
	Seed    int64
}

// Result summarizes one trial's outcome for a caller that wants more than
// pass/fail: Mean is the arithmetic mean of the values that were fed in,
// recomputed from the accumulator's sorted output as a cheap sanity check
// that sorting never drops or duplicates a record's value.
type Result struct {
	Mean float64
}

// VerifySort runs trials concurrently (one errgroup goroutine per trial,
// with no worker limit) and checks internal/accum's radix sort against
// Go's sort.SliceStable over the same input. It returns the first mismatch found,
// annotated with the trial index, or nil if every trial agreed.
func VerifySort(ctx context.Context, trials []Trial) ([]Result, error) {
	results := make([]Result, len(trials))
	eg, ctx := errgroup.WithContext(ctx)
	for i, tr := range trials {
		i, tr := i, tr
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := verifyOne(tr)
			if err != nil {
				return fmt.Errorf("trial %d (dim=%d records=%d seed=%d): %w",
					i, tr.Dim, tr.Records, tr.Seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type refRecord struct {
	keys  []int
	value float64
}

func verifyOne(tr Trial) (Result, error) {
	rng := rand.New(rand.NewSource(tr.Seed))
	acc := accum.New(tr.Dim)
	ref := make([]refRecord, 0, tr.Records)

	for i := 0; i < tr.Records; i++ {
		keys := make([]int, tr.Dim)
		for d := range keys {
			keys[d] = rng.Intn(tr.KeySpan)
		}
		v := rng.Float64()
		acc.Add(keys, v)
		ref = append(ref, refRecord{keys: keys, value: v})
	}

	sort.SliceStable(ref, func(i, j int) bool {
		return lessKeys(ref[i].keys, ref[j].keys)
	})

	acc.Sort()
	got := acc.All()
	values := make([]float64, 0, len(got))
	if len(got) != len(ref) {
		return Result{}, fmt.Errorf("record count = %d, want %d", len(got), len(ref))
	}
	for i := range ref {
		if !equalKeys(got[i].Keys, ref[i].keys) {
			return Result{}, fmt.Errorf("record %d keys = %v, want %v", i, got[i].Keys, ref[i].keys)
		}
		gv, ok := got[i].Value.(float64)
		if !ok {
			return Result{}, fmt.Errorf("record %d value type = %T, want float64", i, got[i].Value)
		}
		if gv != ref[i].value {
			return Result{}, fmt.Errorf("record %d value = %v, want %v", i, gv, ref[i].value)
		}
		values = append(values, gv)
	}

	return Result{Mean: stat.Mean(values, nil)}, nil
}

func lessKeys(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func equalKeys(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
