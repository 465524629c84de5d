package lz77

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrWidth     = errors.New("factor width must be 32 or 64")
	ErrOverflow  = errors.New("factor field does not fit the record width")
	ErrBadFactor = errors.New("factor copies from outside the decoded text")
	ErrFinished  = errors.New("factorizer already finished")
	ErrNotEmpty  = errors.New("engine already holds text")
	ErrUnsampled = errors.New("engine does not sample positions")
)

// Factor is one LZ77 phrase: copy Length bytes from Offset, then Literal.
type Factor struct {
	Offset  uint64
	Length  uint64
	Literal byte
}

func (f Factor) String() string {
	return fmt.Sprintf("(%d,%d,%q)", f.Offset, f.Length, f.Literal)
}

// Sink receives factors in emission order.
type Sink interface {
	Emit(f Factor) error
}

// Collector is an in-memory Sink.
type Collector struct {
	Factors []Factor
}

// Emit appends f.
func (c *Collector) Emit(f Factor) error {
	c.Factors = append(c.Factors, f)
	return nil
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Factor) error

// Emit calls fn(f).
func (fn SinkFunc) Emit(f Factor) error {
	return fn(f)
}

// DecodedLen returns the number of text bytes the factors expand to.
func DecodedLen(factors []Factor) uint64 {
	var n uint64
	for _, f := range factors {
		n += f.Length + 1
	}
	return n
}
