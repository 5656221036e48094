package gdx

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

func TestRoundTripStringMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round-trip.gdx")

	wf, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw, err := Create(wf)
	if err != nil {
		t.Fatal(err)
	}

	if err := gw.WriteSet("i", 1, "set i", ModeWriteStr); err != nil {
		t.Fatalf("WriteSet: %v", err)
	}
	for _, s := range []string{"a", "b", "c"} {
		if err := gw.WriteRecordString([]string{s}, []float64{0}); err != nil {
			t.Fatalf("WriteRecordString(%q): %v", s, err)
		}
	}
	if err := gw.EndSymbol(); err != nil {
		t.Fatalf("EndSymbol(i): %v", err)
	}

	vals := map[string]float64{"a": 1.5, "b": 2.5, "c": 3.5}
	if err := gw.WriteParameter("p", 1, "values over i", ModeWriteStr); err != nil {
		t.Fatalf("WriteParameter: %v", err)
	}
	if err := gw.SetDomain([]string{"i"}); err != nil {
		t.Fatalf("SetDomain: %v", err)
	}
	for k, v := range vals {
		if err := gw.WriteRecordString([]string{k}, []float64{v}); err != nil {
			t.Fatalf("WriteRecordString(%q): %v", k, err)
		}
	}
	if err := gw.EndSymbol(); err != nil {
		t.Fatalf("EndSymbol(p): %v", err)
	}

	if err := gw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wf.Close(); err != nil {
		t.Fatal(err)
	}

	rf, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	gr, err := Open(rf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got, want := gr.SymbolCount(), 2; got != want {
		t.Fatalf("SymbolCount() = %d, want %d", got, want)
	}

	pInfo, err := gr.SymbolInfo(2)
	if err != nil {
		t.Fatalf("SymbolInfo(2): %v", err)
	}
	if diff := cmp.Diff([]string{"i"}, pInfo.Domain); diff != "" {
		t.Errorf("p's domain mismatch (-want +got):\n%s", diff)
	}

	n, err := gr.DataReadStrStart(2)
	if err != nil {
		t.Fatalf("DataReadStrStart: %v", err)
	}
	if n != len(vals) {
		t.Fatalf("record count = %d, want %d", n, len(vals))
	}

	var got []float64
	var keys []string
	for {
		rec, done, err := gr.DataReadStr()
		if err != nil {
			t.Fatalf("DataReadStr: %v", err)
		}
		if done {
			break
		}
		want, ok := vals[rec.Keys[0]]
		if !ok {
			t.Fatalf("unexpected key %q", rec.Keys[0])
		}
		if rec.Values[0] != want {
			t.Fatalf("value for %q = %v, want %v", rec.Keys[0], rec.Values[0], want)
		}
		keys = append(keys, rec.Keys[0])
		got = append(got, rec.Values[0])
	}
	if err := gr.EndSymbol(); err != nil {
		t.Fatalf("EndSymbol (read): %v", err)
	}

	sort.Strings(keys)
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	mean := stat.Mean(got, nil)
	const wantMean = (1.5 + 2.5 + 3.5) / 3
	if diff := mean - wantMean; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("mean = %v, want %v", mean, wantMean)
	}
}

// TestConcurrentReadersAgree opens the same file from several goroutines
// at once and checks they all see the same symbol table: File handles
// are not meant to be shared across goroutines, but independently
// opened ones reading the same unchanging file must agree.
func TestConcurrentReadersAgree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.gdx")

	wf, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw, err := Create(wf)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := gw.WriteParameter(string(rune('A'+i)), 0, "", ModeWriteRaw); err != nil {
			t.Fatal(err)
		}
		if err := gw.WriteRecordRaw(Record{Keys: nil, Values: []float64{float64(i)}}); err != nil {
			t.Fatal(err)
		}
		if err := gw.EndSymbol(); err != nil {
			t.Fatal(err)
		}
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := wf.Close(); err != nil {
		t.Fatal(err)
	}

	var g errgroup.Group
	counts := make([]int, 8)
	for i := range counts {
		i := i
		g.Go(func() error {
			rf, err := os.Open(path)
			if err != nil {
				return err
			}
			defer rf.Close()
			gr, err := Open(rf)
			if err != nil {
				return err
			}
			counts[i] = gr.SymbolCount()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Open: %v", err)
	}
	for i, c := range counts {
		if c != 5 {
			t.Errorf("reader %d: SymbolCount() = %d, want 5", i, c)
		}
	}
}

func TestCreateAndOpenFileHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handle.gdx")

	gw, err := CreateFile(path)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := gw.WriteSet("i", 1, "", ModeWriteStr); err != nil {
		t.Fatal(err)
	}
	if err := gw.WriteRecordString([]string{"a"}, []float64{0}); err != nil {
		t.Fatal(err)
	}
	if err := gw.EndSymbol(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	gr, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer gr.Close()
	if got, want := gr.SymbolCount(), 1; got != want {
		t.Fatalf("SymbolCount() = %d, want %d", got, want)
	}
}
