package gdx

import (
	"io"

	"github.com/gdxio/gdx/internal/accum"
	"github.com/gdxio/gdx/internal/codec"
	"github.com/gdxio/gdx/internal/filter"
)

func (f *File) beginRead(symIdx int, mode Mode, actions []UELAction, filterNrs []int) error {
	if err := f.requireMode(ModeReadInit); err != nil {
		return err
	}
	if symIdx < 1 || symIdx > f.symbols.Count() {
		return f.fail(ErrBadSymbolIndex)
	}
	d := f.symbols.Get(symIdx)

	if _, err := f.stream.Seek(d.Position, io.SeekStart); err != nil {
		return f.fail(ErrFileError)
	}
	h, err := codec.ReadHeader(f.stream)
	if err != nil {
		return f.fail(ErrBadDataMarkerData)
	}

	sess := &symbolSession{
		kind:     sessionRead,
		symIdx:   symIdx,
		dim:      d.Dim,
		valCount: valCountFor(d),
		readMode: mode,
	}
	if mode == ModeReadRaw {
		sess.reader = codec.NewReader(f.stream, h)
	} else {
		sess.readActions = actions
		sess.readFilters = make([]*int, d.Dim)
		for i, nr := range filterNrs {
			n := nr
			if n != 0 {
				sess.readFilters[i] = &n
			}
		}
		if err := f.preloadAccumulated(sess, h); err != nil {
			return err
		}
	}
	f.session = sess
	f.mode = mode
	return nil
}

// preloadAccumulated decodes every record of the block up front and
// resolves keys according to the configured per-dimension actions,
// diverting anything unresolvable to the error list. This trades the
// spec's streaming "classify whether resolution preserves sortedness"
// optimization for a simpler, always-correct two-pass approach: decode
// everything, resolve keys, sort once if resolution could have
// reordered them.
func (f *File) preloadAccumulated(sess *symbolSession, h codec.Header) error {
	reader := codec.NewReader(f.stream, h)
	sess.acc = accum.New(sess.dim)
	for {
		keys, done, err := reader.Next()
		if err != nil {
			return f.fail(ErrFileError)
		}
		if done {
			break
		}
		values := make([]float64, sess.valCount)
		for i := range values {
			v, err := codec.ReadValue(f.stream, f.specialBits())
			if err != nil {
				return f.fail(ErrFileError)
			}
			values[i] = v
		}
		resolved, ok := f.resolveReadKeys(sess, keys)
		if !ok {
			continue
		}
		sess.acc.Add(resolved, values)
	}
	sess.acc.Sort()
	sess.readRecords = sess.acc.All()
	return nil
}

// resolveReadKeys applies this session's per-dimension UELAction to a
// decoded record's storage-index keys, returning ok=false (and
// recording an error) if any dimension's action cannot resolve.
func (f *File) resolveReadKeys(sess *symbolSession, storageKeys []int) ([]int, bool) {
	out := make([]int, sess.dim)
	ok := true
	marked := append([]int(nil), storageKeys...)
	for d, k := range storageKeys {
		switch sess.readActions[d] {
		case ActionUnmapped:
			out[d] = k
		case ActionExpand:
			out[d] = f.uels.NewUserUEL(k)
		case ActionStrict:
			u := f.uels.UserIndex(k)
			if u == 0 {
				marked[d] = -marked[d]
				ok = false
				continue
			}
			out[d] = u
		case ActionFilter:
			u := f.uels.UserIndex(k)
			if u == 0 {
				marked[d] = -marked[d]
				ok = false
				continue
			}
			if sess.readFilters[d] != nil {
				set := f.filters.Get(*sess.readFilters[d])
				if set == nil || !set.Contains(u) {
					marked[d] = -marked[d]
					ok = false
					continue
				}
			}
			out[d] = u
		}
	}
	if !ok {
		f.recordDomainError(marked)
	}
	return out, ok
}

// DataReadRawStart begins a raw-mode read session for symbol symIdx,
// returning the symbol's total record count.
func (f *File) DataReadRawStart(symIdx int) (int, error) {
	if err := f.beginRead(symIdx, ModeReadRaw, nil, nil); err != nil {
		return 0, err
	}
	return f.symbols.Get(symIdx).RecordCount, nil
}

// DataReadRaw returns the next record in raw (storage-index) mode, or
// done=true once the block is exhausted.
func (f *File) DataReadRaw() (rec Record, done bool, err error) {
	if err := f.requireMode(ModeReadRaw); err != nil {
		return Record{}, false, err
	}
	sess := f.session
	keys, done, err := sess.reader.Next()
	if err != nil {
		return Record{}, false, f.fail(ErrFileError)
	}
	if done {
		return Record{}, true, nil
	}
	values := make([]float64, sess.valCount)
	for i := range values {
		v, err := codec.ReadValue(f.stream, f.specialBits())
		if err != nil {
			return Record{}, false, f.fail(ErrFileError)
		}
		values[i] = v
	}
	return Record{Keys: keys, Values: values}, false, nil
}

// DataReadMapStart begins a mapped-mode read session: each dimension's
// storage-index key is expanded to a user index, assigning new user
// indices for storage entries that don't have one yet.
func (f *File) DataReadMapStart(symIdx int) (int, error) {
	d, err := f.SymbolInfo(symIdx)
	if err != nil {
		return 0, err
	}
	actions := make([]UELAction, d.Dim)
	for i := range actions {
		actions[i] = ActionExpand
	}
	if err := f.beginRead(symIdx, ModeReadMap, actions, nil); err != nil {
		return 0, err
	}
	return len(f.session.readRecords), nil
}

// DataReadFilteredStart begins a filtered-mode read session: dimension
// d uses filter number filterNrs[d] when non-zero, otherwise passes
// through as a strict user-index mapping.
func (f *File) DataReadFilteredStart(symIdx int, filterNrs []int) (int, error) {
	d, err := f.SymbolInfo(symIdx)
	if err != nil {
		return 0, err
	}
	actions := make([]UELAction, d.Dim)
	for i := range actions {
		if filterNrs[i] != 0 {
			actions[i] = ActionFilter
		} else {
			actions[i] = ActionStrict
		}
	}
	if err := f.beginRead(symIdx, ModeReadFilter, actions, filterNrs); err != nil {
		return 0, err
	}
	return len(f.session.readRecords), nil
}

// DataReadStrStart begins a string-mode read session: keys are
// resolved directly to element label strings rather than any index
// space.
func (f *File) DataReadStrStart(symIdx int) (int, error) {
	d, err := f.SymbolInfo(symIdx)
	if err != nil {
		return 0, err
	}
	actions := make([]UELAction, d.Dim)
	for i := range actions {
		actions[i] = ActionUnmapped
	}
	if err := f.beginRead(symIdx, ModeReadStr, actions, nil); err != nil {
		return 0, err
	}
	return len(f.session.readRecords), nil
}

// StrRecord is one data record addressed by element label string rather
// than index.
type StrRecord struct {
	Keys   []string
	Values []float64
}

// DataReadStr returns the next record from a string-mode read session,
// resolving storage indices to their interned label spelling.
func (f *File) DataReadStr() (rec StrRecord, done bool, err error) {
	sess := f.session
	if sess == nil || sess.readMode != ModeReadStr {
		return StrRecord{}, false, f.fail(ErrBadMode)
	}
	if sess.readCursor >= len(sess.readRecords) {
		return StrRecord{}, true, nil
	}
	r := sess.readRecords[sess.readCursor]
	sess.readCursor++
	keys := make([]string, len(r.Keys))
	for i, k := range r.Keys {
		keys[i] = f.uels.Storage(k)
	}
	return StrRecord{Keys: keys, Values: r.Value.([]float64)}, false, nil
}

// DataReadMap returns the next resolved record from a mapped or
// filtered read session, or done=true once all records have been
// returned.
func (f *File) DataReadMap() (rec Record, done bool, err error) {
	sess := f.session
	if sess == nil || (sess.readMode != ModeReadMap && sess.readMode != ModeReadFilter) {
		return Record{}, false, f.fail(ErrBadMode)
	}
	if sess.readCursor >= len(sess.readRecords) {
		return Record{}, true, nil
	}
	r := sess.readRecords[sess.readCursor]
	sess.readCursor++
	return Record{Keys: r.Keys, Values: r.Value.([]float64)}, false, nil
}

// RegisterFilterStart allocates a new named filter spanning the current
// user-index range.
func (f *File) RegisterFilterStart(number int) error {
	set := filter.NewSet(number)
	if err := f.filters.Register(set); err != nil {
		return f.fail(ErrBadFilterNr)
	}
	f.pendingFilter = set
	return nil
}

// RegisterFilterUEL marks userIdx as a member of the filter started by
// RegisterFilterStart.
func (f *File) RegisterFilterUEL(userIdx int) error {
	if f.pendingFilter == nil {
		return f.fail(ErrBadFilterNr)
	}
	if userIdx < 1 {
		return f.fail(ErrBadUELStr)
	}
	f.pendingFilter.Add(userIdx)
	return nil
}

// RegisterFilterDone finishes the filter started by RegisterFilterStart.
func (f *File) RegisterFilterDone() {
	f.pendingFilter = nil
}

// endReadSession has nothing to flush: a read session only consumes
// bytes already on disk, unlike a write session which must sort and
// replay its accumulator. It exists so endSession can treat both kinds
// of session symmetrically.
func (f *File) endReadSession(sess *symbolSession) error {
	return nil
}
