package filter

import "testing"

func TestSetAddAndContains(t *testing.T) {
	s := NewSet(7)
	if s.Number() != 7 {
		t.Fatalf("Number() = %d, want 7", s.Number())
	}
	s.Add(3)
	s.Add(9)
	if !s.Contains(3) || !s.Contains(9) {
		t.Fatalf("Contains missing a just-added member")
	}
	if s.Contains(4) {
		t.Fatalf("Contains(4) = true, want false")
	}
	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}
}

func TestRegistryRegisterGetUnregister(t *testing.T) {
	r := NewRegistry()
	s := NewSet(1)
	if err := r.Register(s); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := r.Get(1); got != s {
		t.Fatalf("Get(1) = %v, want the registered set", got)
	}
	if err := r.Register(NewSet(1)); err == nil {
		t.Fatalf("re-registering filter number 1 should fail")
	}
	r.Unregister(1)
	if got := r.Get(1); got != nil {
		t.Fatalf("Get(1) after Unregister = %v, want nil", got)
	}
}
