package textio

import (
	"errors"
	"fmt"
)

// ErrAlphabet reports an input byte that collides with the record sentinel.
var ErrAlphabet = errors.New("input byte collides with the record sentinel")

// NewlineMode selects how line feeds are remapped before indexing.
type NewlineMode string

const (
	// NewlineNone keeps every byte as is.
	NewlineNone NewlineMode = "none"
	// NewlineZero maps '\n' to 0x00.
	NewlineZero NewlineMode = "zero"
	// NewlineOne maps '\n' to 0x01.
	NewlineOne NewlineMode = "one"
)

// ParseNewlineMode parses a mode name; "" selects NewlineNone.
func ParseNewlineMode(s string) (NewlineMode, error) {
	switch NewlineMode(s) {
	case "", NewlineNone:
		return NewlineNone, nil
	case NewlineZero, NewlineOne:
		return NewlineMode(s), nil
	default:
		return NewlineNone, fmt.Errorf("unknown newline mode %q (want none, zero or one)", s)
	}
}

// Remapper substitutes the record sentinel for line feeds.
type Remapper struct {
	mode     NewlineMode
	sentinel byte
	records  uint64
	offset   uint64
}

// NewRemapper creates a remapper for mode.
func NewRemapper(mode NewlineMode) *Remapper {
	r := &Remapper{mode: mode}
	switch mode {
	case NewlineZero:
		r.sentinel = 0
	case NewlineOne:
		r.sentinel = 1
	}
	return r
}

// Map translates one input byte. A raw byte equal to the sentinel would be
// indistinguishable from a record end and fails with ErrAlphabet.
func (r *Remapper) Map(c byte) (byte, error) {
	off := r.offset
	r.offset++
	if r.mode == NewlineNone {
		return c, nil
	}
	switch c {
	case '\n':
		r.records++
		return r.sentinel, nil
	case r.sentinel:
		return 0, fmt.Errorf("%w: byte 0x%02x at offset %d", ErrAlphabet, c, off)
	}
	return c, nil
}

// MapAll translates p in place.
func (r *Remapper) MapAll(p []byte) error {
	for i, c := range p {
		m, err := r.Map(c)
		if err != nil {
			return err
		}
		p[i] = m
	}
	return nil
}

// Records returns the number of line feeds remapped so far.
func (r *Remapper) Records() uint64 {
	return r.records
}

// Sentinel returns the record sentinel and whether remapping is on.
func (r *Remapper) Sentinel() (byte, bool) {
	return r.sentinel, r.mode != NewlineNone
}
