package gdx

import (
	"github.com/gdxio/gdx/internal/gdxio"
)

// Create opens a new GDX stream for writing. rw is typically a freshly
// truncated *os.File or an in-memory buffer from gdxio.NewMemory.
func Create(rw gdxio.ReadWriteSeeker, opts ...Option) (*File, error) {
	f := newFile(opts)
	if err := f.cfg.specialValues.validate(); err != nil {
		return nil, f.fail(ErrDuplicateSpecVal)
	}
	f.stream = gdxio.New(rw, f.cfg.compress)
	if err := f.writeHeader(); err != nil {
		return nil, err
	}
	f.mode = ModeWriteInit
	return f, nil
}

// Open opens an existing GDX stream for reading.
func Open(rw gdxio.ReadWriteSeeker, opts ...Option) (*File, error) {
	f := newFile(opts)
	if err := f.cfg.specialValues.validate(); err != nil {
		return nil, f.fail(ErrDuplicateSpecVal)
	}
	f.stream = gdxio.New(rw, false) // compression flag is read from the header below
	if err := f.readHeader(); err != nil {
		return nil, err
	}
	if err := f.readTrailers(); err != nil {
		return nil, err
	}
	f.mode = ModeReadInit
	return f, nil
}

func (f *File) writeHeader() error {
	s := f.stream
	if err := s.RawWriteByte(123); err != nil {
		return err
	}
	if err := s.RawWriteString(headerID); err != nil {
		return err
	}
	if err := s.RawWriteInt(int32(f.version)); err != nil {
		return err
	}
	compressFlag := int32(0)
	if f.cfg.compress {
		compressFlag = 1
	}
	if err := s.RawWriteInt(compressFlag); err != nil {
		return err
	}
	if err := s.RawWriteString(f.cfg.audit); err != nil {
		return err
	}
	if err := s.RawWriteString(f.cfg.producer); err != nil {
		return err
	}
	if err := s.RawWriteInt(markBOI); err != nil {
		return err
	}
	pos, err := s.Pos()
	if err != nil {
		return err
	}
	f.headerOffsetsPos = pos
	// Six placeholder offsets, patched on Close.
	for i := 0; i < 6; i++ {
		if err := s.RawWriteInt64(0); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) readHeader() error {
	s := f.stream
	magic, err := s.RawReadByte()
	if err != nil || magic != 123 {
		return f.fail(ErrOpenFileHeader)
	}
	id, err := s.RawReadString()
	if err != nil || id != headerID {
		return f.fail(ErrOpenFileMarker)
	}
	version, err := s.RawReadInt()
	if err != nil {
		return f.fail(ErrOpenFileVersion)
	}
	f.version = int(version)
	if f.version > Version {
		return f.fail(ErrOpenFileVersion)
	}
	compressFlag, err := s.RawReadInt()
	if err != nil {
		return f.fail(ErrOpenFileHeader)
	}
	if _, err := s.RawReadString(); err != nil { // audit
		return f.fail(ErrOpenFileHeader)
	}
	if _, err := s.RawReadString(); err != nil { // producer
		return f.fail(ErrOpenFileHeader)
	}
	boi, err := s.RawReadInt()
	if err != nil || boi != markBOI {
		return f.fail(ErrOpenBOI)
	}

	readOffset := func() (int64, error) {
		if f.version <= 5 {
			v, err := s.RawReadInt()
			return int64(v), err
		}
		return s.RawReadInt64()
	}
	var err2 error
	if f.offsets.symbol, err2 = readOffset(); err2 != nil {
		return f.fail(ErrOpenFileHeader)
	}
	if f.offsets.uel, err2 = readOffset(); err2 != nil {
		return f.fail(ErrOpenFileHeader)
	}
	if f.offsets.setText, err2 = readOffset(); err2 != nil {
		return f.fail(ErrOpenFileHeader)
	}
	if f.offsets.acronym, err2 = readOffset(); err2 != nil {
		return f.fail(ErrOpenFileHeader)
	}
	if f.offsets.nextWrite, err2 = readOffset(); err2 != nil {
		return f.fail(ErrOpenFileHeader)
	}
	if f.offsets.domainString, err2 = readOffset(); err2 != nil {
		return f.fail(ErrOpenFileHeader)
	}

	f.cfg.compress = compressFlag != 0
	f.stream = gdxio.New(f.stream.Underlying(), f.cfg.compress)
	return nil
}
