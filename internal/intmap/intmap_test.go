package intmap

import "testing"

func TestGetUnsetReturnsMinusOne(t *testing.T) {
	m := New()
	if got := m.Get(1); got != -1 {
		t.Fatalf("Get(1) on empty map = %d, want -1", got)
	}
	if got := m.Get(500); got != -1 {
		t.Fatalf("Get(500) out of range = %d, want -1", got)
	}
}

func TestSetAndGet(t *testing.T) {
	m := New()
	m.Set(1, 10)
	m.Set(300, 99)
	if got := m.Get(1); got != 10 {
		t.Fatalf("Get(1) = %d, want 10", got)
	}
	if got := m.Get(300); got != 99 {
		t.Fatalf("Get(300) = %d, want 99", got)
	}
	if got := m.Get(2); got != -1 {
		t.Fatalf("Get(2) (never set, but within grown range) = %d, want -1", got)
	}
}

func TestClear(t *testing.T) {
	m := New()
	m.Set(5, 42)
	m.Clear()
	if got := m.Get(5); got != -1 {
		t.Fatalf("Get(5) after Clear() = %d, want -1", got)
	}
	if m.Len() == 0 {
		t.Fatalf("Clear() should not release backing storage, Len() = 0")
	}
}

func TestLenGrowsInChunks(t *testing.T) {
	m := New()
	m.Set(1, 1)
	if got := m.Len(); got != 256 {
		t.Fatalf("Len() after first Set = %d, want 256 (one chunk)", got)
	}
	m.Set(300, 1)
	if got := m.Len(); got != 512 {
		t.Fatalf("Len() after Set(300) = %d, want 512 (two chunks)", got)
	}
}
