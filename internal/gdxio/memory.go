package gdxio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/orcaman/writerseeker"
)

// memoryStream adapts an in-memory buffer to io.ReadWriteSeeker, the same
// role writerseeker.WriterSeeker plays for the teacher's in-memory image
// assembly. writerseeker.WriterSeeker already implements Write+Seek+Reader;
// we add the small amount of glue (wrap Reader() so repeated reads keep
// working against the accumulated bytes) needed for a read/write round trip
// in tests.
type memoryStream struct {
	ws  *writerseeker.WriterSeeker
	pos int64
}

// NewMemory returns a Stream backed entirely by memory, for tests and for
// callers that want to build a GDX file without touching a filesystem.
func NewMemory(compress bool) *Stream {
	return New(&memoryStream{ws: &writerseeker.WriterSeeker{}}, compress)
}

func (m *memoryStream) Write(p []byte) (int, error) {
	return m.ws.Write(p)
}

func (m *memoryStream) Read(p []byte) (int, error) {
	r := m.ws.Reader()
	if _, err := r.Seek(m.pos, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := r.Read(p)
	m.pos += int64(n)
	return n, err
}

func (m *memoryStream) Seek(offset int64, whence int) (int64, error) {
	off, err := m.ws.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	m.pos = off
	return off, nil
}

// Bytes returns the full contents written so far, for assertions in tests.
func (m *memoryStream) Bytes() []byte {
	r := m.ws.Reader()
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		panic(fmt.Sprintf("gdxio: reading back memory stream: %v", err))
	}
	return buf.Bytes()
}
