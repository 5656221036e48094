package settext

import (
	"strings"
	"testing"
)

func TestEmptyStringIsAlwaysIndexZero(t *testing.T) {
	tbl := New()
	idx, err := tbl.Add("")
	if err != nil {
		t.Fatalf("Add(\"\"): %v", err)
	}
	if idx != 0 {
		t.Fatalf("Add(\"\") = %d, want 0", idx)
	}
	if got := tbl.Get(0); got != "" {
		t.Fatalf("Get(0) = %q, want empty", got)
	}
}

func TestAddDedupesExactMatches(t *testing.T) {
	tbl := New()
	i1, err := tbl.Add("Demand")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	i2, err := tbl.Add("Demand")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if i1 != i2 {
		t.Fatalf("Add(\"Demand\") twice returned %d then %d, want equal", i1, i2)
	}
	if got := tbl.Get(i1); got != "Demand" {
		t.Fatalf("Get(%d) = %q, want %q", i1, got, "Demand")
	}
}

func TestAddIsCaseSensitive(t *testing.T) {
	tbl := New()
	i1, _ := tbl.Add("Demand")
	i2, _ := tbl.Add("demand")
	if i1 == i2 {
		t.Fatalf("\"Demand\" and \"demand\" merged into the same index %d, want distinct", i1)
	}
}

func TestAddRejectsOverlongText(t *testing.T) {
	tbl := New()
	s := strings.Repeat("x", MaxTextLength+1)
	if _, err := tbl.Add(s); err == nil {
		t.Fatalf("Add() of a %d-byte string should fail (max %d)", len(s), MaxTextLength)
	}
}

func TestNodeNumberAndReferenced(t *testing.T) {
	tbl := New()
	idx, _ := tbl.Add("note")
	if !tbl.Referenced(idx) {
		t.Fatalf("Referenced(%d) = false right after Add, want true", idx)
	}
	tbl.SetNodeNumber(idx, 7)
	if got := tbl.NodeNumber(idx); got != 7 {
		t.Fatalf("NodeNumber(%d) = %d, want 7", idx, got)
	}
	if tbl.Referenced(idx + 50) {
		t.Fatalf("Referenced(%d) for an index never added = true, want false", idx+50)
	}
}

func TestCount(t *testing.T) {
	tbl := New()
	if tbl.Count() != 1 {
		t.Fatalf("Count() on a fresh table = %d, want 1 (the empty-string slot)", tbl.Count())
	}
	tbl.Add("a")
	tbl.Add("b")
	if tbl.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", tbl.Count())
	}
}
