package lz77

import (
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/metrics"
	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
)

// Stats summarizes a factorization.
type Stats struct {
	Input   uint64 `json:"input_bytes"`
	Factors uint64 `json:"factors"`
	Longest uint64 `json:"longest_factor"`
}

// Option customizes a Factorizer.
type Option func(*Factorizer)

// WithLogger sets the logger used for per-factor debug events.
func WithLogger(l logging.Logger) Option {
	return func(f *Factorizer) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics publishes factor metrics to r.
func WithMetrics(r *metrics.Registry) Option {
	return func(f *Factorizer) {
		f.metrics = r
	}
}

// Factorizer emits the LZ77 factorization of the bytes fed to it while
// growing the engine's BWT. It is not safe for concurrent use.
type Factorizer struct {
	eng  *rlbwt.Engine
	sink Sink

	tr      rlbwt.Tracker
	matched uint64 // length of the phrase in progress
	last    byte

	stats    Stats
	finished bool
	err      error // sticky sink error

	logger  logging.Logger
	metrics *metrics.Registry
}

// New creates a factorizer over an empty, sampled engine.
func New(eng *rlbwt.Engine, sink Sink, opts ...Option) (*Factorizer, error) {
	if eng.Len() != 0 {
		return nil, ErrNotEmpty
	}
	if !eng.Sampler().Enabled() {
		return nil, ErrUnsampled
	}
	f := &Factorizer{
		eng:    eng,
		sink:   sink,
		tr:     rlbwt.NewTracker(),
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Feed consumes one byte.
func (f *Factorizer) Feed(ch byte) error {
	if f.err != nil {
		return f.err
	}
	if f.finished {
		return ErrFinished
	}

	if f.tr.TryExtend(f.eng, ch) {
		f.matched++
	} else {
		f.metrics.RecordLFMapFailure()
		if err := f.emit(f.source(), f.matched, ch); err != nil {
			return err
		}
		f.tr.Reset(f.eng.LenWithEm())
		f.matched = 0
	}

	f.eng.Extend(ch)
	f.tr.Refresh(f.eng)
	if err := f.tr.Validate(f.eng); err != nil {
		panic(err)
	}

	f.last = ch
	f.stats.Input++
	f.metrics.RecordInput(1)
	return nil
}

// FeedAll consumes every byte of p.
func (f *Factorizer) FeedAll(p []byte) error {
	for _, c := range p {
		if err := f.Feed(c); err != nil {
			return err
		}
	}
	return nil
}

// Finish emits the trailing factor of a phrase still matching at the end of
// input and flushes the sink when it buffers. Calling it again is a no-op.
func (f *Factorizer) Finish() error {
	if f.err != nil {
		return f.err
	}
	if f.finished {
		return nil
	}
	f.finished = true

	if f.matched > 0 {
		if err := f.emit(f.source(), f.matched-1, f.last); err != nil {
			return err
		}
	}
	if fl, ok := f.sink.(interface{ Flush() error }); ok {
		if err := fl.Flush(); err != nil {
			f.err = err
			return err
		}
	}
	f.logger.Debug("factorization finished",
		logging.Component("lz77"),
		logging.Uint64("input", f.stats.Input),
		logging.Factors(f.stats.Factors),
	)
	return nil
}

// Stats returns counters for the bytes consumed so far.
func (f *Factorizer) Stats() Stats {
	return f.stats
}

// Tracker returns the current match interval.
func (f *Factorizer) Tracker() rlbwt.Tracker {
	return f.tr
}

// source returns the start of the earlier occurrence of the current phrase.
func (f *Factorizer) source() uint64 {
	if f.tr.SamplePos < f.matched {
		panic(&rlbwt.InvariantError{Op: "Factorizer", Detail: "sample precedes match start"})
	}
	return f.tr.SamplePos - f.matched
}

func (f *Factorizer) emit(offset, length uint64, lit byte) error {
	fac := Factor{Offset: offset, Length: length, Literal: lit}
	if err := f.sink.Emit(fac); err != nil {
		f.err = err
		return err
	}
	f.stats.Factors++
	if length > f.stats.Longest {
		f.stats.Longest = length
	}
	f.metrics.RecordFactor(length)

	if f.logger.Enabled(logging.DebugLevel) {
		f.logger.Debug("factor",
			logging.Uint64("offset", offset),
			logging.Uint64("length", length),
			logging.Symbol(lit),
		)
	}
	return nil
}
