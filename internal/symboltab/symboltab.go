// Package symboltab implements the symbol table: an insertion-ordered,
// case-insensitive name->descriptor table (reusing internal/strhash for
// the name lookup) describing each symbol's kind, dimension, domain and
// record-count metadata.
package symboltab

import (
	"fmt"

	"github.com/gdxio/gdx/internal/strhash"
)

// Kind identifies what a symbol represents.
type Kind int

const (
	KindSet Kind = iota
	KindParameter
	KindVariable
	KindEquation
	KindAlias
)

// VarType distinguishes the GAMS variable subtypes (free/positive/
// negative/binary/integer/sos1/sos2/semicont/semiint), meaningful only
// when Kind == KindVariable.
type VarType int

const (
	VarFree VarType = iota
	VarPositive
	VarNegative
	VarBinary
	VarInteger
	VarSOS1
	VarSOS2
	VarSemiCont
	VarSemiInt
)

// EquType distinguishes the GAMS equation subtypes (=e=/=g=/=l=/
// external/cone), meaningful only when Kind == KindEquation.
type EquType int

const (
	EquEqual EquType = iota
	EquGreater
	EquLess
	EquExternal
	EquCone
)

// Descriptor is the metadata GDX keeps per symbol.
type Descriptor struct {
	Name       string
	Kind       Kind
	Dim        int
	Text       string
	VarType    VarType // valid when Kind == KindVariable
	EquType    EquType // valid when Kind == KindEquation
	AliasOf    string  // valid when Kind == KindAlias; name of the aliased set
	Domain     []string // per-dimension domain set name, "*" for unrestricted
	RecordCount int
	UserInfo   int   // opaque caller-supplied tag (subtype discriminant on disk)
	Position   int64 // byte offset of this symbol's record block

	// ElemBitmap caches storage-index membership for a 1-D set (Kind ==
	// KindSet, Dim == 1), written once the set's own data has been fully
	// written. Populated only when domain-set storage is enabled; nil
	// otherwise or for any other kind/dimension.
	ElemBitmap []bool
}

// Table is the symbol table for one open GDX file.
type Table struct {
	names       *strhash.Table
	descriptors []Descriptor
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{names: &strhash.Table{}}
}

// Add registers a new symbol and returns its 1-based symbol index. It is
// an error to reuse a name already present (case-insensitively).
func (t *Table) Add(d Descriptor) (int, error) {
	if t.names.IndexOf(d.Name) != 0 {
		return 0, fmt.Errorf("symboltab: duplicate symbol name %q", d.Name)
	}
	if d.Kind == KindAlias && d.AliasOf == "" {
		return 0, fmt.Errorf("symboltab: alias %q has no target set", d.Name)
	}
	idx := t.names.Add(d.Name)
	for len(t.descriptors) < idx {
		t.descriptors = append(t.descriptors, Descriptor{})
	}
	t.descriptors[idx-1] = d
	return idx, nil
}

// Count returns the number of symbols.
func (t *Table) Count() int { return t.names.Count() }

// Get returns the descriptor for symbol index n (1-based).
func (t *Table) Get(n int) *Descriptor { return &t.descriptors[n-1] }

// IndexOf returns the symbol index for name (case-insensitive), or 0 if
// not found.
func (t *Table) IndexOf(name string) int { return t.names.IndexOf(name) }

// Rename changes the name of symbol index n.
func (t *Table) Rename(n int, name string) error {
	if existing := t.names.IndexOf(name); existing != 0 && existing != n {
		return fmt.Errorf("symboltab: name %q already in use", name)
	}
	t.names.Rename(n, name)
	t.descriptors[n-1].Name = name
	return nil
}

// SetRecordCount updates the record count recorded for symbol n, called
// once the symbol's data block has been fully written or read.
func (t *Table) SetRecordCount(n, count int) {
	t.descriptors[n-1].RecordCount = count
}

// SetPosition records the byte offset of symbol n's record block.
func (t *Table) SetPosition(n int, pos int64) {
	t.descriptors[n-1].Position = pos
}
