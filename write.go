package gdx

import (
	"github.com/gdxio/gdx/internal/accum"
	"github.com/gdxio/gdx/internal/codec"
	"github.com/gdxio/gdx/internal/symboltab"
)

// sessionKind distinguishes a write session from a read session; both
// live in *symbolSession because only one can be open on a File at a
// time and most of their bookkeeping (current symbol, error list)
// overlaps.
type sessionKind int

const (
	sessionWrite sessionKind = iota
	sessionRead
)

// symbolSession holds the state of the currently open write or read
// session for one symbol.
type symbolSession struct {
	kind    sessionKind
	symIdx  int
	dim     int
	valCount int

	writeMode Mode // one of ModeWriteRaw/Map/Str, valid when kind == sessionWrite
	readMode  Mode

	lastKey []int
	minKey  []int
	maxKey  []int

	acc *accum.Accumulator // used by mapped/string write, and by every mapped/filtered/string read

	header codec.Header  // raw-mode write only: the block header already committed to the stream
	writer *codec.Writer // raw-mode write only; created lazily on the first record (or at EndSymbol if none arrive)
	reader *codec.Reader // read sessions only

	errorList []ErrorRecord

	// read-side configuration
	readActions []UELAction
	readFilters []*int // filter number per dimension, parallel to readActions
	readRecords []accum.Record // materialized, sorted records for mapped/filtered/string reads
	readCursor  int

	domainWrBitmap [][]bool // per-dimension membership bitmap, nil if no domain check configured

	trackSetBitmap bool   // true while writing a 1-D set with domain-set storage enabled
	setBitmap      []bool // storage-index membership being accumulated for trackSetBitmap
}

func valCountFor(d *symboltab.Descriptor) int {
	if d.Kind == symboltab.KindVariable || d.Kind == symboltab.KindEquation {
		return 5
	}
	return 1
}

// Record is one data record as exchanged across the write/read session
// API: Keys has length dim, Values has length valCount (1 for
// sets/parameters, 5 for variables/equations).
type Record struct {
	Keys   []int
	Values []float64
}

func (f *File) validateNewSymbol(name string, dim int) error {
	if !isGoodIdent(name) {
		return f.fail(ErrBadIdentFormat)
	}
	if err := validateDimension(dim); err != nil {
		return f.fail(ErrBadDimension)
	}
	if f.symbols.IndexOf(name) != 0 {
		return f.fail(ErrDuplicateSymbol)
	}
	return nil
}

func (f *File) beginSymbol(name string, dim int, kind symboltab.Kind, userInfo int, text string, writeMode Mode) error {
	if err := f.requireMode(ModeWriteInit, ModeWriteRaw, ModeWriteMap, ModeWriteStr); err != nil {
		return err
	}
	if f.session != nil {
		return f.fail(ErrBadMode)
	}
	if err := f.validateNewSymbol(name, dim); err != nil {
		return err
	}
	d := symboltab.Descriptor{
		Name:     name,
		Kind:     kind,
		Dim:      dim,
		Text:     makeGoodExplText(text),
		UserInfo: userInfo,
	}
	pos, err := f.flushPos()
	if err != nil {
		return err
	}
	d.Position = pos
	idx, err := f.symbols.Add(d)
	if err != nil {
		return f.fail(ErrDuplicateSymbol)
	}

	sess := &symbolSession{
		kind:           sessionWrite,
		symIdx:         idx,
		dim:            dim,
		valCount:       valCountFor(&d),
		writeMode:      writeMode,
		lastKey:        make([]int, dim),
		minKey:         make([]int, dim),
		maxKey:         make([]int, dim),
		trackSetBitmap: f.cfg.domainSetStore && kind == symboltab.KindSet && dim == 1,
	}
	for i := range sess.lastKey {
		sess.lastKey[i] = -256
	}
	if writeMode != ModeWriteRaw {
		sess.acc = accum.New(dim)
	} else {
		// Raw mode streams records as they arrive instead of accumulating
		// and sorting first, so the per-dimension key bound the header
		// needs has to be known before any record is seen. The caller's
		// keys are UEL storage indices, so the current size of the UEL
		// table is a safe (if not always tight) upper bound: it can only
		// grow, and any key the caller legitimately writes must already be
		// registered.
		bound := f.uels.Count()
		if bound < 1 {
			bound = 1
		}
		minKey := make([]int, dim)
		maxKey := make([]int, dim)
		for d := range maxKey {
			maxKey[d] = bound
		}
		sess.minKey, sess.maxKey = minKey, maxKey
		sess.header = codec.Header{Dim: dim, RecordCount: -1, MinKey: minKey, MaxKey: maxKey}
		if err := codec.WriteHeader(f.stream, sess.header); err != nil {
			return err
		}
	}
	f.session = sess
	f.mode = writeMode
	return nil
}

// WriteSet begins a write session for a set symbol.
func (f *File) WriteSet(name string, dim int, text string, mode Mode) error {
	return f.beginSymbol(name, dim, symboltab.KindSet, 0, text, mode)
}

// WriteParameter begins a write session for a parameter symbol.
func (f *File) WriteParameter(name string, dim int, text string, mode Mode) error {
	return f.beginSymbol(name, dim, symboltab.KindParameter, 0, text, mode)
}

// WriteVariable begins a write session for a variable symbol.
func (f *File) WriteVariable(name string, dim int, varType symboltab.VarType, text string, mode Mode) error {
	return f.beginSymbol(name, dim, symboltab.KindVariable, int(varType), text, mode)
}

// WriteEquation begins a write session for an equation symbol.
func (f *File) WriteEquation(name string, dim int, equType symboltab.EquType, text string, mode Mode) error {
	return f.beginSymbol(name, dim, symboltab.KindEquation, int(equType), text, mode)
}

// AddAlias registers name as an alias of target (or "*" for the
// universe).
func (f *File) AddAlias(name, target string) error {
	if err := f.requireMode(ModeWriteInit, ModeWriteRaw, ModeWriteMap, ModeWriteStr); err != nil {
		return err
	}
	if err := f.validateNewSymbol(name, 1); err != nil {
		return err
	}
	targetOrd := 0
	targetDim := 1
	if target != "*" {
		targetOrd = f.symbols.IndexOf(target)
		if targetOrd == 0 {
			return f.fail(ErrAliasSetExpected)
		}
		targetDesc := f.symbols.Get(targetOrd)
		if targetDesc.Kind != symboltab.KindSet && targetDesc.Kind != symboltab.KindAlias {
			return f.fail(ErrAliasSetExpected)
		}
		targetDim = targetDesc.Dim
	}
	_, err := f.symbols.Add(symboltab.Descriptor{
		Name:     name,
		Kind:     symboltab.KindAlias,
		Dim:      targetDim,
		Text:     "Aliased with " + target,
		UserInfo: targetOrd,
		AliasOf:  target,
	})
	if err != nil {
		return f.fail(ErrDuplicateSymbol)
	}
	return nil
}

// SetDomain declares the relaxed domain names for the symbol currently
// being written.
func (f *File) SetDomain(names []string) error {
	if f.session == nil || f.session.kind != sessionWrite {
		return f.fail(ErrBadMode)
	}
	d := f.symbols.Get(f.session.symIdx)
	if len(names) != d.Dim {
		return f.fail(ErrBadDimension)
	}
	d.Domain = append([]string(nil), names...)
	if f.cfg.domainSetStore {
		bitmap := make([][]bool, d.Dim)
		for i, name := range names {
			bitmap[i] = f.setBitmapFor(name)
		}
		f.session.domainWrBitmap = bitmap
	}
	return nil
}

// setBitmapFor resolves a domain name (following alias chains) to its
// cached element-membership bitmap. Returns nil for the unrestricted
// domain "*", an unknown name, or a set with no bitmap cached yet (not
// written with domain-set storage enabled, or not written at all before
// this symbol) — in every nil case checkDomain simply skips that
// dimension.
func (f *File) setBitmapFor(name string) []bool {
	if name == "*" {
		return nil
	}
	idx := f.symbols.IndexOf(name)
	if idx == 0 {
		return nil
	}
	d := f.symbols.Get(idx)
	for d.Kind == symboltab.KindAlias {
		idx = f.symbols.IndexOf(d.AliasOf)
		if idx == 0 {
			return nil
		}
		d = f.symbols.Get(idx)
	}
	return d.ElemBitmap
}

// markSetMember records storageKey as a member of the 1-D set currently
// being written, when domain-set storage is enabled for it. A no-op
// otherwise.
func (f *File) markSetMember(storageKey int) {
	sess := f.session
	if !sess.trackSetBitmap || storageKey < 0 {
		return
	}
	if storageKey >= len(sess.setBitmap) {
		grown := make([]bool, storageKey+1)
		copy(grown, sess.setBitmap)
		sess.setBitmap = grown
	}
	sess.setBitmap[storageKey] = true
}

func compareKeySlices(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}

func (f *File) recordDomainError(keys []int) {
	if len(f.session.errorList) >= maxErrorRecords {
		return
	}
	cp := append([]int(nil), keys...)
	f.session.errorList = append(f.session.errorList, ErrorRecord{Keys: cp})
	f.errorCount++
}

// checkDomain tests keys against the current symbol's domain bitmap, if
// one is configured (WithDomainSetStorage). Violating dimensions have
// their key negated in the diverted error record.
func (f *File) checkDomain(keys []int) bool {
	sess := f.session
	if sess.domainWrBitmap == nil {
		return true
	}
	ok := true
	marked := append([]int(nil), keys...)
	for d, bitmap := range sess.domainWrBitmap {
		if bitmap == nil {
			continue
		}
		k := keys[d]
		if k < 0 || k >= len(bitmap) || !bitmap[k] {
			marked[d] = -marked[d]
			ok = false
		}
	}
	if !ok {
		f.recordDomainError(marked)
	}
	return ok
}

// WriteRecordRaw submits one record during a raw write session. Keys
// must be storage-index UELs (caller-resolved). Records out of
// non-decreasing key order, or exact duplicates, are diverted to the
// error list instead of being written.
func (f *File) WriteRecordRaw(rec Record) error {
	if err := f.requireMode(ModeWriteRaw); err != nil {
		return err
	}
	sess := f.session
	if sess.writer != nil && compareKeySlices(rec.Keys, sess.lastKey) <= 0 {
		f.recordDomainError(rec.Keys)
		return nil
	}
	if !f.checkDomain(rec.Keys) {
		return nil
	}
	if sess.trackSetBitmap {
		f.markSetMember(rec.Keys[0])
	}
	if sess.writer == nil {
		sess.writer = codec.NewWriter(f.stream, sess.header)
	}
	if err := sess.writer.WriteRecord(rec.Keys); err != nil {
		return err
	}
	copy(sess.lastKey, rec.Keys)
	for _, v := range rec.Values {
		if err := codec.WriteValue(f.stream, v, f.specialBits()); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecordMapped submits one record during a mapped write session.
// Keys are user indices, resolved via the UEL table's user_to_storage
// mapping; an unresolvable key diverts the record to the error list.
func (f *File) WriteRecordMapped(rec Record) error {
	if err := f.requireMode(ModeWriteMap); err != nil {
		return err
	}
	storageKeys := make([]int, len(rec.Keys))
	for i, uk := range rec.Keys {
		sk := f.uels.StorageIndex(uk)
		if sk == 0 {
			f.recordDomainError(rec.Keys)
			return nil
		}
		storageKeys[i] = sk
	}
	if !f.checkDomain(storageKeys) {
		return nil
	}
	if f.session.trackSetBitmap {
		f.markSetMember(storageKeys[0])
	}
	f.session.acc.Add(storageKeys, append([]float64(nil), rec.Values...))
	return nil
}

// WriteRecordString submits one record during a string write session.
// Keys are element label strings, interned (storage index only) as
// needed.
func (f *File) WriteRecordString(keys []string, values []float64) error {
	if err := f.requireMode(ModeWriteStr); err != nil {
		return err
	}
	storageKeys := make([]int, len(keys))
	for i, k := range keys {
		sk, err := f.uels.RegisterRaw(k)
		if err != nil {
			return err
		}
		storageKeys[i] = sk
	}
	if !f.checkDomain(storageKeys) {
		return nil
	}
	if f.session.trackSetBitmap {
		f.markSetMember(storageKeys[0])
	}
	f.session.acc.Add(storageKeys, append([]float64(nil), values...))
	return nil
}

// EndSymbol closes out the current write or read session.
func (f *File) EndSymbol() error {
	return f.endSession()
}

func (f *File) endSession() error {
	sess := f.session
	if sess == nil {
		return nil
	}
	var err error
	if sess.kind == sessionWrite {
		err = f.endWriteSession(sess)
	} else {
		err = f.endReadSession(sess)
	}
	f.lastErrorList = sess.errorList
	f.session = nil
	if sess.kind == sessionWrite {
		f.mode = ModeWriteInit
	} else {
		f.mode = ModeReadInit
	}
	return err
}

func (f *File) endWriteSession(sess *symbolSession) error {
	if sess.trackSetBitmap {
		f.symbols.Get(sess.symIdx).ElemBitmap = sess.setBitmap
	}

	if sess.writeMode == ModeWriteRaw {
		if sess.writer == nil {
			// No records arrived: still need a valid empty block, against
			// the header already written at session start.
			sess.writer = codec.NewWriter(f.stream, sess.header)
		}
		if err := sess.writer.Close(); err != nil {
			return err
		}
		f.symbols.SetRecordCount(sess.symIdx, sess.writer.Count())
		return nil
	}

	// Mapped/string: sort the accumulator, then replay through the codec
	// exactly as raw mode would, diverting duplicates to the error list.
	sess.acc.Sort()
	for d := 0; d < sess.dim; d++ {
		sess.minKey[d] = sess.acc.MinKey(d)
		sess.maxKey[d] = sess.acc.MaxKey(d)
	}
	h := codec.Header{Dim: sess.dim, RecordCount: -1, MinKey: sess.minKey, MaxKey: sess.maxKey}
	if err := codec.WriteHeader(f.stream, h); err != nil {
		return err
	}
	w := codec.NewWriter(f.stream, h)
	first := true
	prev := make([]int, sess.dim)
	var writeErr error
	sess.acc.Iterate(func(keys []int, value interface{}) bool {
		if !first && compareKeySlices(keys, prev) == 0 {
			f.recordDomainError(keys)
			return true
		}
		if err := w.WriteRecord(keys); err != nil {
			writeErr = err
			return false
		}
		values := value.([]float64)
		for _, v := range values {
			if err := codec.WriteValue(f.stream, v, f.specialBits()); err != nil {
				writeErr = err
				return false
			}
		}
		copy(prev, keys)
		first = false
		return true
	})
	if writeErr != nil {
		return writeErr
	}
	if err := w.Close(); err != nil {
		return err
	}
	f.symbols.SetRecordCount(sess.symIdx, w.Count())
	return nil
}

// DataErrorCount returns the size of the current (or, once a session has
// ended, the most recently ended) symbol's deferred error-record list.
func (f *File) DataErrorCount() int {
	if f.session != nil {
		return len(f.session.errorList)
	}
	return len(f.lastErrorList)
}

// DataErrorRecord returns error-list entry n (1-based) from the current
// or most recently ended session.
func (f *File) DataErrorRecord(n int) ErrorRecord {
	if f.session != nil {
		return f.session.errorList[n-1]
	}
	return f.lastErrorList[n-1]
}
