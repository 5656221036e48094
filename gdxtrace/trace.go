// Package gdxtrace implements the human-readable trace output gated by
// a file's trace level (spec §7): none, errors, some, all. Output goes
// to an io.Writer (stderr by default), with messages below the current
// level simply dropped.
//
// Loosely grounded on the teacher's internal/trace package: GDX's trace
// surface is level-gated human text, not a Chrome-trace-format JSON
// stream, so neither that package's package-level sink nor its
// Event/Done span machinery carries over. Each File builds its own
// Writer (see Default) and reuses it for every message.
package gdxtrace

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Level is one of the four trace verbosities a file can be opened with.
type Level int

const (
	None Level = iota
	Errors
	Some
	All
)

// Writer gates Printf-style messages by level and writes the survivors
// through a *log.Logger.
type Writer struct {
	mu     sync.Mutex
	level  Level
	logger *log.Logger
	color  bool
}

// New returns a Writer at the given level, writing to w. If w is *os.File
// and refers to a terminal, messages at level Errors are prefixed in a
// way a terminal renders distinctly (no-op on a non-terminal sink).
func New(level Level, w io.Writer) *Writer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{
		level:  level,
		logger: log.New(w, "", log.LstdFlags),
		color:  color,
	}
}

// Default returns a Writer at level, writing to os.Stderr.
func Default(level Level) *Writer {
	return New(level, os.Stderr)
}

// Level reports the writer's current gating level.
func (w *Writer) Level() Level {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// SetLevel changes the gating level.
func (w *Writer) SetLevel(level Level) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.level = level
}

func (w *Writer) emit(at Level, prefix, format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.level < at {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.color && prefix == "error" {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	w.logger.Printf("[%s] %s", prefix, msg)
}

// Errorf writes a message at the Errors level (the lowest level that
// still produces output).
func (w *Writer) Errorf(format string, args ...interface{}) {
	w.emit(Errors, "error", format, args...)
}

// Somef writes a message at the Some level.
func (w *Writer) Somef(format string, args ...interface{}) {
	w.emit(Some, "trace", format, args...)
}

// Allf writes a message at the All level, the most verbose.
func (w *Writer) Allf(format string, args ...interface{}) {
	w.emit(All, "trace", format, args...)
}
