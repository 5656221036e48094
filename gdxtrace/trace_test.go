package gdxtrace

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	w := New(Errors, &buf)
	w.Errorf("boom %d", 1)
	w.Somef("should not appear")
	w.Allf("should not appear either")

	out := buf.String()
	if !strings.Contains(out, "boom 1") {
		t.Fatalf("output %q missing the Errors-level message", out)
	}
	if strings.Contains(out, "should not appear") {
		t.Fatalf("output %q contains a message above the gating level", out)
	}
}

func TestAllLevelEmitsEverything(t *testing.T) {
	var buf bytes.Buffer
	w := New(All, &buf)
	w.Errorf("e")
	w.Somef("s")
	w.Allf("a")

	out := buf.String()
	for _, want := range []string{"e", "s", "a"} {
		if !strings.Contains(out, "[error] "+want) && !strings.Contains(out, "[trace] "+want) {
			t.Errorf("output %q missing message %q", out, want)
		}
	}
}

func TestNoneLevelSuppressesEverything(t *testing.T) {
	var buf bytes.Buffer
	w := New(None, &buf)
	w.Errorf("boom")
	if buf.Len() != 0 {
		t.Fatalf("output at level None = %q, want empty", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	w := New(None, &buf)
	if w.Level() != None {
		t.Fatalf("Level() = %v, want None", w.Level())
	}
	w.SetLevel(Some)
	w.Somef("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("message after SetLevel(Some) was dropped")
	}
}
