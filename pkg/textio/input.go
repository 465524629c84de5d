// Package textio reads construction input: memory-mapped files, FASTA
// collections and the newline-to-sentinel remapping used for multi-record
// text.
package textio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// Input is a byte source over a memory-mapped file or an in-memory copy of
// a stream that cannot be mapped.
type Input struct {
	ra   *mmap.ReaderAt
	data []byte
	pos  int
	n    int
	path string
}

// Open maps the file at path. Non-regular files (pipes, devices) and "-"
// for stdin are read fully into memory instead.
func Open(path string) (*Input, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return FromBytes(data), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		in := FromBytes(data)
		in.path = path
		return in, nil
	}

	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap input: %w", err)
	}
	return &Input{ra: ra, n: ra.Len(), path: path}, nil
}

// FromBytes wraps data without copying it.
func FromBytes(data []byte) *Input {
	return &Input{data: data, n: len(data)}
}

// Len returns the input size in bytes.
func (in *Input) Len() int {
	return in.n
}

// Mapped reports whether the input is memory-mapped.
func (in *Input) Mapped() bool {
	return in.ra != nil
}

// ReadByte returns the next byte or io.EOF.
func (in *Input) ReadByte() (byte, error) {
	if in.pos >= in.n {
		return 0, io.EOF
	}
	var c byte
	if in.ra != nil {
		c = in.ra.At(in.pos)
	} else {
		c = in.data[in.pos]
	}
	in.pos++
	return c, nil
}

// Read implements io.Reader.
func (in *Input) Read(p []byte) (int, error) {
	if in.pos >= in.n {
		return 0, io.EOF
	}
	var n int
	if in.ra != nil {
		var err error
		n, err = in.ra.ReadAt(p, int64(in.pos))
		if err != nil && !errors.Is(err, io.EOF) {
			return n, err
		}
	} else {
		n = copy(p, in.data[in.pos:])
	}
	in.pos += n
	return n, nil
}

// Bytes returns a copy of the whole input.
func (in *Input) Bytes() ([]byte, error) {
	if in.ra == nil {
		return bytes.Clone(in.data), nil
	}
	out := make([]byte, in.n)
	if _, err := in.ra.ReadAt(out, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return out, nil
}

// Close unmaps the file.
func (in *Input) Close() error {
	if in.ra != nil {
		return in.ra.Close()
	}
	return nil
}
