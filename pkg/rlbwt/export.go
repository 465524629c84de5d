package rlbwt

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-rlbwt/pkg/dynrle"
	"github.com/dd0wney/cluso-rlbwt/pkg/pools"
)

const (
	exportVersion = 1
	headerSize    = 5
)

var (
	magicRuns   = [4]byte{'R', 'L', 'B', 'W'}
	magicSnappy = [4]byte{'R', 'L', 'B', 'S'}
)

// WriteBWT serializes the BWT to w and returns the number of bytes written.
//
// The run formats store the row count, the end-marker row and the run list,
// which is enough for Load to rebuild rank and select exactly.
func (e *Engine) WriteBWT(w io.Writer, f Format) (int64, error) {
	switch f {
	case FormatRuns:
		return e.writeRuns(w)
	case FormatRunsSnappy:
		return e.writeSnappy(w)
	case FormatExpanded:
		return e.writeExpanded(w)
	default:
		return 0, NewError("WriteBWT").Header().Context(f.String()).Cause(ErrBadFormat).Err()
	}
}

// appendBody encodes length, end marker, run count and the runs.
func (e *Engine) appendBody(b *pools.BufferBuilder) {
	b.WriteUvarint(e.tree.Len())
	b.WriteUvarint(e.em)
	b.WriteUvarint(e.tree.Runs())
	e.tree.ForEachRun(func(r dynrle.Run) bool {
		b.WriteByte(r.Sym)
		b.WriteUvarint(r.Length)
		return true
	})
}

func writeHeader(w io.Writer, magic [4]byte) (int, error) {
	hdr := [headerSize]byte{magic[0], magic[1], magic[2], magic[3], exportVersion}
	return w.Write(hdr[:])
}

func (e *Engine) writeRuns(w io.Writer) (int64, error) {
	n, err := writeHeader(w, magicRuns)
	if err != nil {
		return int64(n), NewError("WriteBWT").Header().Cause(err).Err()
	}
	total := int64(n)

	// Flush in chunks so the body never has to fit one buffer.
	b := pools.NewBufferBuilder(pools.ChunkSize)
	defer b.Release()

	b.WriteUvarint(e.tree.Len())
	b.WriteUvarint(e.em)
	b.WriteUvarint(e.tree.Runs())

	var (
		werr error
		idx  uint64
	)
	e.tree.ForEachRun(func(r dynrle.Run) bool {
		b.WriteByte(r.Sym)
		b.WriteUvarint(r.Length)
		idx++
		if b.Len() >= pools.ChunkSize-16 {
			n, err := w.Write(b.Bytes())
			total += int64(n)
			if err != nil {
				werr = NewError("WriteBWT").Run(idx).Cause(err).Err()
				return false
			}
			b.Reset()
		}
		return true
	})
	if werr != nil {
		return total, werr
	}
	n, err = w.Write(b.Bytes())
	total += int64(n)
	if err != nil {
		return total, NewError("WriteBWT").Run(idx).Cause(err).Err()
	}
	return total, nil
}

func (e *Engine) writeSnappy(w io.Writer) (int64, error) {
	b := pools.NewBufferBuilder(pools.LargeSize)
	defer b.Release()
	e.appendBody(b)

	compressed := snappy.Encode(nil, b.Bytes())

	n, err := writeHeader(w, magicSnappy)
	total := int64(n)
	if err != nil {
		return total, NewError("WriteBWT").Header().Cause(err).Err()
	}

	b.Reset()
	b.WriteUvarint(uint64(len(compressed)))
	n, err = w.Write(b.Bytes())
	total += int64(n)
	if err != nil {
		return total, NewError("WriteBWT").Header().Context("block length").Cause(err).Err()
	}
	n, err = w.Write(compressed)
	total += int64(n)
	if err != nil {
		return total, NewError("WriteBWT").Entity("snappy block").Cause(err).Err()
	}
	return total, nil
}

func (e *Engine) writeExpanded(w io.Writer) (int64, error) {
	buf := pools.GetBytes(pools.ChunkSize)
	defer func() { pools.PutBytes(buf) }()

	var (
		total int64
		pos   uint64 // stored positions emitted so far
		werr  error
	)
	flush := func() bool {
		n, err := w.Write(buf)
		total += int64(n)
		buf = buf[:0]
		if err != nil {
			werr = NewError("WriteBWT").Row(pos).Context("expanded").Cause(err).Err()
			return false
		}
		return true
	}
	emit := func(c byte) bool {
		buf = append(buf, c)
		if len(buf) == cap(buf) {
			return flush()
		}
		return true
	}

	if e.em == 0 && !emit(ExpandedEmByte) {
		return total, werr
	}
	e.tree.ForEachRun(func(r dynrle.Run) bool {
		for i := uint64(0); i < r.Length; i++ {
			if !emit(r.Sym) {
				return false
			}
			pos++
			if pos == e.em && !emit(ExpandedEmByte) {
				return false
			}
		}
		return true
	})
	if werr != nil {
		return total, werr
	}
	if len(buf) > 0 {
		flush()
	}
	return total, werr
}

// String renders the expanded BWT; meant for small engines and tests.
func (e *Engine) String() string {
	var sb strings.Builder
	if _, err := e.writeExpanded(&sb); err != nil {
		return fmt.Sprintf("rlbwt: %v", err)
	}
	return sb.String()
}
