// Package gdxio implements the byte-granular stream that the GDX codec is
// built on: seekable reads and writes of bytes, words, ints, int64s,
// length-prefixed strings and doubles, with an optional compression toggle.
//
// This is the "external stream collaborator" spec.md describes as out of
// scope for the core; it is implemented here only so the codec has a
// concrete thing to run against. Its block framing follows the same shape
// as a SquashFS metadata chunk: a uint16 length prefix (high bit marking
// "stored uncompressed") followed by that many bytes, buffered and drained
// like internal/squashfs's blockReader/writeMetadataChunks used to be.
//
// Two I/O paths coexist. The fixed-position file header and its six
// trailer offsets are written and read through the Raw* methods, which
// hit the underlying stream directly with no block framing at all —
// they have to land at exact byte offsets so Close can seek back and
// patch them. Everything after the header (record blocks, trailer
// sections) goes through the buffered, optionally-compressed path (the
// un-prefixed methods), matching how the real format keeps its header
// uncompressed while compressing the bulk of the file.
package gdxio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// blockSize bounds how many bytes accumulate before a compressed write
// flushes a block. Chosen the same way the teacher picked metadataBlockSize:
// large enough to amortize the per-block header, small enough to keep the
// in-memory pending buffer modest. A block may overshoot blockSize by one
// write (at most a 255-byte string), which must still fit the 15-bit
// length below uncompressedBit.
const blockSize = 16 * 1024

// uncompressedBit is ORed into the stored block length when the block was
// written without running it through zlib (e.g. because compressing it
// would have made it larger, or because compression is disabled).
const uncompressedBit = 1 << 15

// Stream is a seekable reader/writer with an optional compression toggle.
// A Stream is not safe for concurrent use: GDX file handles are
// single-threaded (spec §5).
type Stream struct {
	rw       io.ReadWriteSeeker
	compress bool

	// write side: bytes accumulate here until a block is flushed.
	pending bytes.Buffer

	// read side: decoded block content not yet consumed.
	rbuf bytes.Buffer
	br   *bufio.Reader
}

// New wraps rw as a Stream. When compress is true, Flush (and the automatic
// flush that happens every blockSize bytes) compresses pending bytes with
// zlib before writing the block; when false, blocks are stored as-is.
func New(rw io.ReadWriteSeeker, compress bool) *Stream {
	return &Stream{
		rw:       rw,
		compress: compress,
		br:       bufio.NewReaderSize(asReader(rw), blockSize),
	}
}

func asReader(rw io.ReadWriteSeeker) io.Reader {
	if r, ok := rw.(io.Reader); ok {
		return r
	}
	panic("gdxio: underlying stream does not implement io.Reader")
}

// ReadWriteSeeker is the interface a Stream is built on; re-exported so
// callers don't need to import "io" just to name the type a Stream
// wraps.
type ReadWriteSeeker = io.ReadWriteSeeker

// Underlying returns the stream's underlying ReadWriteSeeker, for
// callers that need to rebuild a Stream with a different compression
// setting once they've learned it from the data (e.g. the file header's
// compression flag, known only after the header has been read through
// an initially-uncompressed Stream).
func (s *Stream) Underlying() ReadWriteSeeker { return s.rw }

// Compression reports whether this stream compresses blocks on flush.
func (s *Stream) Compression() bool { return s.compress }

// Pos returns the current write-side seek offset of the underlying stream
// (valid only after a Flush, since pending bytes are not yet written).
func (s *Stream) Pos() (int64, error) {
	return s.rw.Seek(0, io.SeekCurrent)
}

// Seek flushes any pending write buffer and seeks the underlying stream.
// It also resets the read-side decode state, since a seek invalidates
// whatever block was being decoded.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	off, err := s.rw.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	s.rbuf.Reset()
	s.br = bufio.NewReaderSize(asReader(s.rw), blockSize)
	return off, nil
}

// Flush writes any buffered bytes out as a single block, compressed if the
// stream is in compressed mode.
func (s *Stream) Flush() error {
	if s.pending.Len() == 0 {
		return nil
	}
	raw := s.pending.Bytes()
	var out []byte
	uncompressed := true
	if s.compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return fmt.Errorf("gdxio: compress block: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("gdxio: compress block: %w", err)
		}
		if buf.Len() < len(raw) {
			out = buf.Bytes()
			uncompressed = false
		}
	}
	if out == nil {
		out = raw
	}
	if len(out) > uncompressedBit-1 {
		return fmt.Errorf("gdxio: block of %d bytes exceeds maximum block size", len(out))
	}
	length := uint16(len(out))
	if uncompressed {
		length |= uncompressedBit
	}
	if err := binary.Write(s.rw, binary.LittleEndian, length); err != nil {
		return fmt.Errorf("gdxio: write block header: %w", err)
	}
	if _, err := s.rw.Write(out); err != nil {
		return fmt.Errorf("gdxio: write block: %w", err)
	}
	s.pending.Reset()
	return nil
}

func (s *Stream) writeBuffered(p []byte) error {
	if _, err := s.pending.Write(p); err != nil {
		return err
	}
	if s.pending.Len() >= blockSize {
		return s.Flush()
	}
	return nil
}

func (s *Stream) fill(n int) error {
	for s.rbuf.Len() < n {
		var length uint16
		if err := binary.Read(s.br, binary.LittleEndian, &length); err != nil {
			return err
		}
		uncompressed := length&uncompressedBit != 0
		length &^= uncompressedBit
		block := make([]byte, length)
		if _, err := io.ReadFull(s.br, block); err != nil {
			return fmt.Errorf("gdxio: short block: %w", err)
		}
		if uncompressed {
			s.rbuf.Write(block)
			continue
		}
		zr, err := zlib.NewReader(bytes.NewReader(block))
		if err != nil {
			return fmt.Errorf("gdxio: decompress block: %w", err)
		}
		if _, err := io.Copy(&s.rbuf, zr); err != nil {
			return fmt.Errorf("gdxio: decompress block: %w", err)
		}
		zr.Close()
	}
	return nil
}

func (s *Stream) readBuffered(n int) ([]byte, error) {
	if err := s.fill(n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(&s.rbuf, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteByte writes a single byte through the buffered, compressible path.
func (s *Stream) WriteByte(b byte) error { return s.writeBuffered([]byte{b}) }

// ReadByte reads a single byte through the buffered, compressible path.
func (s *Stream) ReadByte() (byte, error) {
	b, err := s.readBuffered(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteWord writes a uint16, little-endian, through the buffered path.
func (s *Stream) WriteWord(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return s.writeBuffered(buf[:])
}

// ReadWord reads a uint16, little-endian, through the buffered path.
func (s *Stream) ReadWord() (uint16, error) {
	b, err := s.readBuffered(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// WriteInt writes an int32, little-endian, through the buffered path.
func (s *Stream) WriteInt(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return s.writeBuffered(buf[:])
}

// ReadInt reads an int32, little-endian, through the buffered path.
func (s *Stream) ReadInt() (int32, error) {
	b, err := s.readBuffered(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// WriteInt64 writes an int64, little-endian, through the buffered path.
func (s *Stream) WriteInt64(v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return s.writeBuffered(buf[:])
}

// ReadInt64 reads an int64, little-endian, through the buffered path.
func (s *Stream) ReadInt64() (int64, error) {
	b, err := s.readBuffered(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// WriteDouble writes a float64 as its IEEE 754 bit pattern, little-endian,
// through the buffered path.
func (s *Stream) WriteDouble(v float64) error {
	return s.WriteInt64(int64(math.Float64bits(v)))
}

// ReadDouble reads a float64 from its IEEE 754 bit pattern, little-endian,
// through the buffered path.
func (s *Stream) ReadDouble() (float64, error) {
	bits, err := s.ReadInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

// WriteString writes a one-byte length prefix (0..255) followed by the
// string's bytes, per spec §6, through the buffered path.
func (s *Stream) WriteString(str string) error {
	if len(str) > 255 {
		return fmt.Errorf("gdxio: string of length %d exceeds maximum 255", len(str))
	}
	if err := s.WriteByte(byte(len(str))); err != nil {
		return err
	}
	return s.writeBuffered([]byte(str))
}

// ReadString reads a one-byte length prefix followed by that many bytes,
// through the buffered path.
func (s *Stream) ReadString() (string, error) {
	l, err := s.ReadByte()
	if err != nil {
		return "", err
	}
	if l == 0 {
		return "", nil
	}
	b, err := s.readBuffered(int(l))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// --- Raw, unbuffered, uncompressed path: the fixed-position file header
// and its trailer-offset table only. ---

// RawWriteByte writes b directly to the underlying stream, bypassing
// block framing.
func (s *Stream) RawWriteByte(b byte) error {
	_, err := s.rw.Write([]byte{b})
	return err
}

// RawReadByte reads one byte directly from the underlying stream.
func (s *Stream) RawReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(s.rw, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// RawWriteInt writes an int32, little-endian, directly to the underlying
// stream.
func (s *Stream) RawWriteInt(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := s.rw.Write(buf[:])
	return err
}

// RawReadInt reads an int32, little-endian, directly from the underlying
// stream.
func (s *Stream) RawReadInt() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(s.rw, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// RawWriteInt64 writes an int64, little-endian, directly to the
// underlying stream.
func (s *Stream) RawWriteInt64(v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, err := s.rw.Write(buf[:])
	return err
}

// RawReadInt64 reads an int64, little-endian, directly from the
// underlying stream.
func (s *Stream) RawReadInt64() (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(s.rw, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// RawWriteString writes a one-byte length prefix followed by str's
// bytes, directly to the underlying stream.
func (s *Stream) RawWriteString(str string) error {
	if len(str) > 255 {
		return fmt.Errorf("gdxio: string of length %d exceeds maximum 255", len(str))
	}
	if err := s.RawWriteByte(byte(len(str))); err != nil {
		return err
	}
	_, err := s.rw.Write([]byte(str))
	return err
}

// RawReadString reads a one-byte length prefix followed by that many
// bytes, directly from the underlying stream.
func (s *Stream) RawReadString() (string, error) {
	l, err := s.RawReadByte()
	if err != nil {
		return "", err
	}
	if l == 0 {
		return "", nil
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(s.rw, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
