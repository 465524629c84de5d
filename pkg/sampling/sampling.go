// Package sampling decides whether BWT rows carry text positions.
//
// The run-head sampler stores, for every run of the BWT, the text position
// associated with the run's first row, plus the position of the row that
// follows the end marker. That is enough to recover the source of any match
// tracked by backward search. The null sampler stores nothing and is used
// when only the BWT itself is wanted.
package sampling

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when a sampled position is not known.
var ErrUnavailable = errors.New("sampled position unavailable")

// Names accepted by ByName.
const (
	NameRunHead = "runhead"
	NameNull    = "null"
)

// Sampler owns the end-marker successor sample and tells the index whether
// runs must carry head positions.
type Sampler interface {
	// Name identifies the sampler in configuration and logs.
	Name() string
	// Enabled reports whether run heads record text positions.
	Enabled() bool
	// Succ returns the text position of the row after the end marker.
	Succ() (uint64, error)
	// SetSucc records the text position of the row after the end marker.
	SetSucc(pos uint64)
	// ClearSucc forgets the successor sample, e.g. when the end marker is the last row.
	ClearSucc()
}

// RunHead samples the head of every run.
type RunHead struct {
	succ  uint64
	valid bool
}

// NewRunHead creates a run-head sampler.
func NewRunHead() *RunHead {
	return &RunHead{}
}

func (s *RunHead) Name() string  { return NameRunHead }
func (s *RunHead) Enabled() bool { return true }

func (s *RunHead) Succ() (uint64, error) {
	if !s.valid {
		return 0, ErrUnavailable
	}
	return s.succ, nil
}

func (s *RunHead) SetSucc(pos uint64) {
	s.succ = pos
	s.valid = true
}

func (s *RunHead) ClearSucc() {
	s.succ = 0
	s.valid = false
}

// Null records nothing.
type Null struct{}

func (Null) Name() string          { return NameNull }
func (Null) Enabled() bool         { return false }
func (Null) Succ() (uint64, error) { return 0, ErrUnavailable }
func (Null) SetSucc(uint64)        {}
func (Null) ClearSucc()            {}

// ByName returns a fresh sampler for a configuration name.
func ByName(name string) (Sampler, error) {
	switch name {
	case NameRunHead, "":
		return NewRunHead(), nil
	case NameNull:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("unknown sampler %q (want %q or %q)", name, NameRunHead, NameNull)
	}
}
