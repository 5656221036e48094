package gdx

import (
	"io"
	"path/filepath"

	"github.com/google/renameio"
	"golang.org/x/exp/mmap"
	"golang.org/x/xerrors"
)

// FileHandle wraps a *File opened against an actual filesystem path,
// tying its Close to the underlying OS resource: an atomic
// rename-into-place for a file created with CreateFile, or an mmap
// unmap for a file opened read-only with OpenFile.
type FileHandle struct {
	*File
	finalize func() error
}

// Close ends the GDX session (flushing trailers on write) and then
// finalizes the underlying OS resource.
func (h *FileHandle) Close() error {
	err := h.File.Close()
	if h.finalize == nil {
		return err
	}
	if ferr := h.finalize(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

// CreateFile creates a new GDX file at path. The file is written to a
// temporary sibling and atomically renamed into place on Close, so a
// reader can never observe a partially written file at path.
func CreateFile(path string, opts ...Option) (*FileHandle, error) {
	pf, err := renameio.TempFile("", path)
	if err != nil {
		return nil, xerrors.Errorf("gdx: creating %s: %w", path, err)
	}
	f, err := Create(pf, opts...)
	if err != nil {
		pf.Cleanup()
		return nil, err
	}
	return &FileHandle{File: f, finalize: pf.CloseAtomicallyReplace}, nil
}

// OpenFile opens an existing GDX file at path for reading, via a
// read-only memory-mapped view rather than buffered file I/O — a
// natural fit for GDX's access pattern of seeking to whatever symbol's
// fixed record-block offset a caller asks for next.
func OpenFile(path string, opts ...Option) (*FileHandle, error) {
	ra, err := mmap.Open(filepath.Clean(path))
	if err != nil {
		return nil, xerrors.Errorf("gdx: opening %s: %w", path, err)
	}
	f, err := Open(&readAtSeeker{r: ra}, opts...)
	if err != nil {
		ra.Close()
		return nil, err
	}
	return &FileHandle{File: f, finalize: ra.Close}, nil
}

// readAtSeeker adapts an *mmap.ReaderAt (io.ReaderAt + Len, no Read or
// Seek of its own) into the io.ReadWriteSeeker gdx.Open requires. Write
// always fails: an mmap.ReaderAt is inherently read-only.
type readAtSeeker struct {
	r   *mmap.ReaderAt
	pos int64
}

func (s *readAtSeeker) Read(p []byte) (int, error) {
	n, err := s.r.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (s *readAtSeeker) Write(p []byte) (int, error) {
	return 0, xerrors.New("gdx: file opened read-only via OpenFile")
}

func (s *readAtSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(s.r.Len()) + offset
	}
	return s.pos, nil
}
