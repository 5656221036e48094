package symboltab

import "testing"

func TestAddAndGet(t *testing.T) {
	tbl := New()
	idx, err := tbl.Add(Descriptor{Name: "i", Kind: KindSet, Dim: 1})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if idx != 1 {
		t.Fatalf("first Add index = %d, want 1", idx)
	}
	d := tbl.Get(idx)
	if d.Name != "i" || d.Kind != KindSet || d.Dim != 1 {
		t.Fatalf("Get(%d) = %+v, want name i, KindSet, dim 1", idx, d)
	}
}

func TestAddDuplicateNameFails(t *testing.T) {
	tbl := New()
	if _, err := tbl.Add(Descriptor{Name: "i", Kind: KindSet, Dim: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := tbl.Add(Descriptor{Name: "I", Kind: KindSet, Dim: 1}); err == nil {
		t.Fatalf("Add of a case-insensitive duplicate name should fail")
	}
}

func TestAddAliasWithoutTargetFails(t *testing.T) {
	tbl := New()
	if _, err := tbl.Add(Descriptor{Name: "j", Kind: KindAlias}); err == nil {
		t.Fatalf("Add of an alias with no AliasOf should fail")
	}
}

func TestIndexOfAndRename(t *testing.T) {
	tbl := New()
	idx, _ := tbl.Add(Descriptor{Name: "p", Kind: KindParameter})
	if got := tbl.IndexOf("P"); got != idx {
		t.Fatalf("IndexOf(\"P\") = %d, want %d", got, idx)
	}
	if err := tbl.Rename(idx, "q"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if tbl.IndexOf("p") != 0 {
		t.Fatalf("old name still resolves after Rename")
	}
	if tbl.IndexOf("q") != idx {
		t.Fatalf("IndexOf(\"q\") after Rename = %d, want %d", tbl.IndexOf("q"), idx)
	}
}

func TestSetRecordCountAndPosition(t *testing.T) {
	tbl := New()
	idx, _ := tbl.Add(Descriptor{Name: "a", Kind: KindSet, Dim: 1})
	tbl.SetRecordCount(idx, 42)
	tbl.SetPosition(idx, 1024)
	d := tbl.Get(idx)
	if d.RecordCount != 42 {
		t.Fatalf("RecordCount = %d, want 42", d.RecordCount)
	}
	if d.Position != 1024 {
		t.Fatalf("Position = %d, want 1024", d.Position)
	}
}

func TestCount(t *testing.T) {
	tbl := New()
	if tbl.Count() != 0 {
		t.Fatalf("Count() on empty table = %d, want 0", tbl.Count())
	}
	tbl.Add(Descriptor{Name: "a", Kind: KindSet})
	tbl.Add(Descriptor{Name: "b", Kind: KindSet})
	if tbl.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", tbl.Count())
	}
}
