package rlbwt

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-rlbwt/pkg/dynrle"
	"github.com/dd0wney/cluso-rlbwt/pkg/sampling"
)

// Common sentinel errors
var (
	ErrUnavailable = sampling.ErrUnavailable
	ErrCorrupt     = dynrle.ErrCorrupt
	ErrBadFormat   = errors.New("unrecognized BWT export format")
	ErrConfig      = errors.New("invalid engine configuration")
)

// EngineError provides structured error information for engine operations.
type EngineError struct {
	Op      string // Operation that failed (e.g., "WriteBWT", "Load")
	Entity  string // What the operation acted on (e.g., "header", "run")
	Index   uint64 // Row or run index (if applicable)
	HasIdx  bool
	Context string // Additional context
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	switch {
	case e.HasIdx && e.Context != "":
		return fmt.Sprintf("%s %s %d (%s): %v", e.Op, e.Entity, e.Index, e.Context, e.Cause)
	case e.HasIdx:
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.Index, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *EngineError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building EngineErrors.
type ErrorBuilder struct {
	err EngineError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: EngineError{Op: op}}
}

// Header sets the entity to the export header.
func (b *ErrorBuilder) Header() *ErrorBuilder {
	b.err.Entity = "header"
	return b
}

// Run sets the entity to the run with index i.
func (b *ErrorBuilder) Run(i uint64) *ErrorBuilder {
	b.err.Entity = "run"
	b.err.Index = i
	b.err.HasIdx = true
	return b
}

// Row sets the entity to the row with index i.
func (b *ErrorBuilder) Row(i uint64) *ErrorBuilder {
	b.err.Entity = "row"
	b.err.Index = i
	b.err.HasIdx = true
	return b
}

// Entity sets a free-form entity name.
func (b *ErrorBuilder) Entity(name string) *ErrorBuilder {
	b.err.Entity = name
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed EngineError.
func (b *ErrorBuilder) Build() *EngineError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// InvariantError reports a broken structural invariant. It is raised with
// panic: output produced past this point would be silently wrong.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("rlbwt: invariant violated in %s: %s", e.Op, e.Detail)
}

func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// IsBadFormat returns true if the error reports an unreadable export.
func IsBadFormat(err error) bool {
	return errors.Is(err, ErrBadFormat) || errors.Is(err, ErrCorrupt)
}
