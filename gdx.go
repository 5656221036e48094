// Package gdx implements the GDX (GAMS Data Exchange) container format:
// a self-describing binary file holding named, typed, multi-dimensional
// data (sets, parameters, variables, equations, aliases) keyed by
// interned element labels.
package gdx

import (
	"fmt"

	"github.com/gdxio/gdx/gdxtrace"
	"github.com/gdxio/gdx/internal/acronym"
	"github.com/gdxio/gdx/internal/codec"
	"github.com/gdxio/gdx/internal/filter"
	"github.com/gdxio/gdx/internal/gdxio"
	"github.com/gdxio/gdx/internal/settext"
	"github.com/gdxio/gdx/internal/strhash"
	"github.com/gdxio/gdx/internal/symboltab"
	"github.com/gdxio/gdx/internal/ueltable"
)

// TraceLevel selects the verbosity of human-readable diagnostics gdxtrace
// writes during file operations.
type TraceLevel = gdxtrace.Level

const (
	TraceNone   = gdxtrace.None
	TraceErrors = gdxtrace.Errors
	TraceSome   = gdxtrace.Some
	TraceAll    = gdxtrace.All
)

// Version is the file format version this package writes.
const Version = 7

const headerID = "GAMSGDX"
const markBOI = 19510624

const (
	markSymb = "_SYMB_"
	markSett = "_SETT_"
	markUEL  = "_UEL_"
	markAcro = "_ACRO_"
	markDoms = "_DOMS_"
)

// MaxDimension is the largest symbol dimension GDX supports.
const MaxDimension = 20

// MaxNameLength is the longest a symbol or UEL name may be.
const MaxNameLength = 63

// Mode is the file object's current state-machine mode. Every public
// operation checks the modes it is valid in and returns ErrBadMode
// otherwise.
type Mode int

const (
	ModeNotOpen Mode = iota
	ModeReadInit
	ModeWriteInit
	ModeWriteDomainRaw
	ModeWriteDomainMap
	ModeWriteDomainStr
	ModeWriteRaw
	ModeWriteMap
	ModeWriteStr
	ModeRegisterRaw
	ModeRegisterMap
	ModeRegisterStr
	ModeReadRaw
	ModeReadMap
	ModeReadMapR
	ModeReadStr
	ModeReadFilter
	ModeReadSlice
)

// DataType identifies what a symbol represents, re-exported from
// internal/symboltab so callers don't need to import it directly.
type DataType = symboltab.Kind

const (
	DataSet       = symboltab.KindSet
	DataParameter = symboltab.KindParameter
	DataVariable  = symboltab.KindVariable
	DataEquation  = symboltab.KindEquation
	DataAlias     = symboltab.KindAlias
)

// UELAction controls how a read session resolves storage indices for one
// dimension.
type UELAction int

const (
	ActionUnmapped UELAction = iota
	ActionExpand
	ActionStrict
	ActionFilter
)

// ErrorRecord is one entry in a symbol's deferred error list (spec §7):
// a record whose keys or domain failed validation, kept instead of
// rejected outright so the caller can inspect what went wrong after the
// session ends. A negative key marks the dimension that violated.
type ErrorRecord struct {
	Keys []int
}

const maxErrorRecords = 11

// File is a GDX file handle. A File is not safe for concurrent use: GDX
// file handles are single-threaded (spec §5).
type File struct {
	cfg   config
	trace *gdxtrace.Writer

	mode    Mode
	version int

	stream *gdxio.Stream

	uels          *ueltable.Table
	setTexts      *settext.Table
	acronyms      *acronym.Table
	symbols       *symboltab.Table
	filters       *filter.Registry
	domainStrings *strhash.Table // relaxed domain-name strings, case-insensitive

	offsets          offsetTable
	headerOffsetsPos int64

	lastError  Code
	errorCount int

	session       *symbolSession
	lastErrorList []ErrorRecord
	pendingFilter *filter.Set

	domainAcronymRemap []int // original-index list needing remap after read
}

type offsetTable struct {
	symbol, uel, setText, acronym, nextWrite, domainString int64
}

func newFile(opts []Option) *File {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &File{
		cfg:           cfg,
		trace:         gdxtrace.Default(cfg.traceLevel),
		uels:          ueltable.New(),
		setTexts:      settext.New(),
		acronyms:      acronym.New(),
		symbols:       symboltab.New(),
		filters:       filter.NewRegistry(),
		domainStrings: &strhash.Table{},
		version:       Version,
	}
}

// LastError returns and clears the most recent error code (spec §5).
func (f *File) LastError() Code {
	e := f.lastError
	f.lastError = ErrNoError
	return e
}

// ErrorCount returns the total number of errors recorded over the file's
// lifetime.
func (f *File) ErrorCount() int { return f.errorCount }

func (f *File) fail(c Code) error {
	f.lastError = c
	f.errorCount++
	e := newError(c)
	f.trace.Errorf("%s", e.Error())
	return e
}

func (f *File) requireMode(modes ...Mode) error {
	for _, m := range modes {
		if f.mode == m {
			return nil
		}
	}
	return f.fail(ErrBadMode)
}

func (f *File) specialBits() codec.SpecialBits {
	return codec.SpecialBits(f.cfg.specialValues.bits)
}

// SymbolCount returns the number of symbols registered in the file.
func (f *File) SymbolCount() int { return f.symbols.Count() }

// SymbolInfo returns the descriptor for symbol index n (1-based; 0 is
// the universe).
func (f *File) SymbolInfo(n int) (*symboltab.Descriptor, error) {
	if n == 0 {
		return &symboltab.Descriptor{Name: "*", Kind: DataSet, Dim: 1}, nil
	}
	if n < 1 || n > f.symbols.Count() {
		return nil, f.fail(ErrBadSymbolIndex)
	}
	return f.symbols.Get(n), nil
}

// FindSymbol returns the symbol index for name (case-insensitive), or 0
// if not found.
func (f *File) FindSymbol(name string) int { return f.symbols.IndexOf(name) }

func isGoodIdent(name string) bool {
	if len(name) == 0 || len(name) > MaxNameLength {
		return false
	}
	hasSingle, hasDouble := false, false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 {
			return false
		}
		if c == '\'' {
			hasSingle = true
		}
		if c == '"' {
			hasDouble = true
		}
	}
	return !(hasSingle && hasDouble)
}

// makeGoodExplText sanitizes an explanatory text string to the rules
// applied to symbol and UEL descriptions: control characters are
// stripped and the result truncated to settext.MaxTextLength.
func makeGoodExplText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x20 {
			out = append(out, s[i])
		}
	}
	if len(out) > settext.MaxTextLength {
		out = out[:settext.MaxTextLength]
	}
	return string(out)
}

func validateDimension(dim int) error {
	if dim < 0 || dim > MaxDimension {
		return fmt.Errorf("gdx: dimension %d out of range (0..%d)", dim, MaxDimension)
	}
	return nil
}
