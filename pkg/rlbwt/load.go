package rlbwt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/sampling"
)

// maxSnappyBlock bounds the compressed block accepted by Load.
const maxSnappyBlock = 1 << 34

// Load rebuilds an engine from a FormatRuns or FormatRunsSnappy export.
//
// Samples are not part of the export, so the engine uses the null sampler:
// rank, select and further Extend calls work, sampled positions do not.
func Load(r io.Reader, cfg Config, opts ...Option) (*Engine, error) {
	br := bufio.NewReader(r)

	var hdr [headerSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, NewError("Load").Header().Cause(badFormat(err)).Err()
	}
	var magic [4]byte
	copy(magic[:], hdr[:4])
	if hdr[4] != exportVersion {
		return nil, NewError("Load").Header().Context(fmt.Sprintf("version %d", hdr[4])).Cause(ErrBadFormat).Err()
	}

	var body io.ByteReader
	switch magic {
	case magicRuns:
		body = br
	case magicSnappy:
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, NewError("Load").Header().Context("block length").Cause(badFormat(err)).Err()
		}
		if n > maxSnappyBlock {
			return nil, NewError("Load").Header().Context(fmt.Sprintf("block length %d", n)).Cause(ErrBadFormat).Err()
		}
		compressed := make([]byte, n)
		if _, err := io.ReadFull(br, compressed); err != nil {
			return nil, NewError("Load").Entity("snappy block").Cause(badFormat(err)).Err()
		}
		raw, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, NewError("Load").Entity("snappy block").Cause(fmt.Errorf("%w: %v", ErrCorrupt, err)).Err()
		}
		body = bytes.NewReader(raw)
	default:
		return nil, NewError("Load").Header().Context(fmt.Sprintf("magic %q", magic[:])).Cause(ErrBadFormat).Err()
	}

	opts = append(opts, WithSampler(sampling.Null{}))
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.readBody(body); err != nil {
		return nil, err
	}
	e.logger.Debug("engine loaded",
		logging.Component("rlbwt"),
		logging.Uint64("length", e.Len()),
		logging.Runs(e.Runs()),
	)
	return e, nil
}

func (e *Engine) readBody(r io.ByteReader) error {
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return NewError("Load").Header().Context("length").Cause(badFormat(err)).Err()
	}
	em, err := binary.ReadUvarint(r)
	if err != nil {
		return NewError("Load").Header().Context("end marker").Cause(badFormat(err)).Err()
	}
	runs, err := binary.ReadUvarint(r)
	if err != nil {
		return NewError("Load").Header().Context("run count").Cause(badFormat(err)).Err()
	}
	if em > length {
		return NewError("Load").Row(em).Context("end marker past last row").Cause(ErrCorrupt).Err()
	}

	for i := uint64(0); i < runs; i++ {
		sym, err := r.ReadByte()
		if err != nil {
			return NewError("Load").Run(i).Cause(badFormat(err)).Err()
		}
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return NewError("Load").Run(i).Cause(badFormat(err)).Err()
		}
		if n == 0 {
			return NewError("Load").Run(i).Context("zero length").Cause(ErrCorrupt).Err()
		}
		e.tree.Append(sym, n, 0)
	}

	if e.tree.Runs() != runs {
		return NewError("Load").Entity("runs").Context(fmt.Sprintf("%d stored, %d after merging", runs, e.tree.Runs())).Cause(ErrCorrupt).Err()
	}
	if e.tree.Len() != length {
		return NewError("Load").Entity("runs").Context(fmt.Sprintf("sum %d, header %d", e.tree.Len(), length)).Cause(ErrCorrupt).Err()
	}
	e.em = em
	return nil
}

// badFormat turns a short read into ErrBadFormat and keeps other causes.
func badFormat(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated", ErrBadFormat)
	}
	return err
}
