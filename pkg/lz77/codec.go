package lz77

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/dd0wney/cluso-rlbwt/pkg/pools"
)

// RecordSize returns the encoded size of one factor at the given width.
func RecordSize(width int) int {
	return 2*width/8 + 1
}

func checkWidth(width int) error {
	if width != 32 && width != 64 {
		return fmt.Errorf("%w: got %d", ErrWidth, width)
	}
	return nil
}

// Writer encodes factors as offset||length||literal records and keeps a
// running BLAKE2b-256 digest of every byte written.
type Writer struct {
	w       *bufio.Writer
	width   int
	rec     *pools.BufferBuilder
	digest  hash.Hash
	written int64
	factors uint64
}

// NewWriter creates a Writer with the given record width (32 or 64 bits).
func NewWriter(w io.Writer, width int) (*Writer, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	digest, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	return &Writer{
		w:      bufio.NewWriterSize(w, pools.ChunkSize),
		width:  width,
		rec:    pools.NewBufferBuilder(pools.RecordSize),
		digest: digest,
	}, nil
}

// Emit writes one record. Offsets and lengths beyond the width fail with
// ErrOverflow and nothing is written.
func (w *Writer) Emit(f Factor) error {
	w.rec.Reset()
	if w.width == 32 {
		if f.Offset > math.MaxUint32 || f.Length > math.MaxUint32 {
			return fmt.Errorf("%w: %v at width 32", ErrOverflow, f)
		}
		w.rec.WriteUint32LE(uint32(f.Offset))
		w.rec.WriteUint32LE(uint32(f.Length))
	} else {
		w.rec.WriteUint64LE(f.Offset)
		w.rec.WriteUint64LE(f.Length)
	}
	w.rec.WriteByte(f.Literal)

	n, err := w.w.Write(w.rec.Bytes())
	w.written += int64(n)
	w.digest.Write(w.rec.Bytes()[:n])
	if err != nil {
		return fmt.Errorf("write factor %d: %w", w.factors, err)
	}
	w.factors++
	return nil
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and releases the record buffer. The underlying writer is
// not closed.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.rec != nil {
		w.rec.Release()
		w.rec = nil
	}
	return err
}

// Sum returns the BLAKE2b-256 digest of the records written so far.
func (w *Writer) Sum() []byte {
	return w.digest.Sum(nil)
}

// BytesWritten returns the number of encoded bytes accepted so far.
func (w *Writer) BytesWritten() int64 {
	return w.written
}

// Factors returns the number of records written.
func (w *Writer) Factors() uint64 {
	return w.factors
}

// Reader decodes records written by Writer. The stream has no count or
// terminator, so Next reads until the underlying reader is exhausted.
type Reader struct {
	r     io.Reader
	width int
	buf   []byte
	read  uint64
}

// NewReader creates a Reader with the given record width.
func NewReader(r io.Reader, width int) (*Reader, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	return &Reader{
		r:     bufio.NewReaderSize(r, pools.ChunkSize),
		width: width,
		buf:   make([]byte, RecordSize(width)),
	}, nil
}

// Next returns the next factor, io.EOF at a clean end of stream, or
// io.ErrUnexpectedEOF when the stream stops inside a record.
func (r *Reader) Next() (Factor, error) {
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Factor{}, fmt.Errorf("record %d: %w", r.read, err)
		}
		return Factor{}, err
	}
	r.read++

	var f Factor
	if r.width == 32 {
		f.Offset = uint64(binary.LittleEndian.Uint32(r.buf[0:4]))
		f.Length = uint64(binary.LittleEndian.Uint32(r.buf[4:8]))
		f.Literal = r.buf[8]
	} else {
		f.Offset = binary.LittleEndian.Uint64(r.buf[0:8])
		f.Length = binary.LittleEndian.Uint64(r.buf[8:16])
		f.Literal = r.buf[16]
	}
	return f, nil
}

// ReadAll returns every remaining factor.
func (r *Reader) ReadAll() ([]Factor, error) {
	var out []Factor
	for {
		f, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}
