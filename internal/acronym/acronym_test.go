package acronym

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, idx := range []int{1, 2, 7, 100} {
		v := Encode(idx)
		got, ok := Decode(v)
		if !ok {
			t.Fatalf("Decode(Encode(%d)) reported not-an-acronym", idx)
		}
		if got != idx {
			t.Fatalf("Decode(Encode(%d)) = %d", idx, got)
		}
	}
}

func TestDecodeRejectsOrdinaryValues(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 3.14, 1e10} {
		if _, ok := Decode(v); ok {
			t.Fatalf("Decode(%v) reported an acronym, want not-an-acronym", v)
		}
	}
}

func TestAddAndLookup(t *testing.T) {
	tbl := New()
	if err := tbl.Add("unit", "units of measure", 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	e := tbl.ByIndex(3)
	if e == nil || e.Name != "unit" {
		t.Fatalf("ByIndex(3) = %+v, want Name \"unit\"", e)
	}
	if got := tbl.ByName("unit"); got == nil || got.Index != 3 {
		t.Fatalf("ByName(\"unit\") = %+v, want Index 3", got)
	}
}

func TestAddSameIndexSameNameIsIdempotent(t *testing.T) {
	tbl := New()
	if err := tbl.Add("unit", "", 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.Add("unit", "", 3); err != nil {
		t.Fatalf("re-Add with identical name should succeed: %v", err)
	}
	if tbl.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (no duplicate entry)", tbl.Count())
	}
}

func TestAddConflictingNameFails(t *testing.T) {
	tbl := New()
	if err := tbl.Add("unit", "", 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.Add("other", "", 3); err == nil {
		t.Fatalf("Add with a conflicting name for the same index should fail")
	}
}

func TestAddAutoSynthesizesName(t *testing.T) {
	tbl := New()
	e := tbl.AddAuto(9)
	if e.Name != "UnknownAcronym9" {
		t.Fatalf("AddAuto(9).Name = %q, want %q", e.Name, "UnknownAcronym9")
	}
	if !e.AutoGenerated {
		t.Fatalf("AddAuto(9).AutoGenerated = false, want true")
	}
	if e2 := tbl.AddAuto(9); e2 != e {
		t.Fatalf("AddAuto(9) called twice returned different entries")
	}
}

func TestSetMappingAndResolve(t *testing.T) {
	tbl := New()
	if err := tbl.Add("a", "", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.SetMapping(1, 5); err != nil {
		t.Fatalf("SetMapping: %v", err)
	}
	if got := tbl.Resolve(1); got != 5 {
		t.Fatalf("Resolve(1) = %d, want 5", got)
	}
	if got := tbl.Resolve(2); got != 2 {
		t.Fatalf("Resolve(2) (no entry) = %d, want 2 unchanged", got)
	}
}
