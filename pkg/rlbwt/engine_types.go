package rlbwt

import (
	"fmt"

	"github.com/dd0wney/cluso-rlbwt/pkg/dynrle"
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/metrics"
	"github.com/dd0wney/cluso-rlbwt/pkg/sampling"
)

// Config selects the sampler and the shape of the underlying run store.
type Config struct {
	// Sampler is "runhead" (default) or "null".
	Sampler string `yaml:"sampler" validate:"omitempty,oneof=runhead null"`
	// Tree is the shape of the run store. The zero value selects the defaults.
	Tree dynrle.Options `yaml:"tree"`
}

// DefaultConfig returns a run-head sampled engine with the default tree shape.
func DefaultConfig() Config {
	return Config{
		Sampler: sampling.NameRunHead,
		Tree:    dynrle.DefaultOptions(),
	}
}

// resolve fills defaults and checks the tree shape.
func (c Config) resolve() (dynrle.Options, error) {
	opts := c.Tree
	if opts.BlockCapacity == 0 && opts.BottomFanout == 0 && opts.NodeFanout == 0 {
		opts = dynrle.DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return opts, nil
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for lifecycle and debug events.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics publishes build metrics to r.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithSampler overrides the sampler named in the configuration.
func WithSampler(s sampling.Sampler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sampler = s
		}
	}
}

// Engine is a dynamic run-length BWT. It is not safe for concurrent use.
type Engine struct {
	tree    *dynrle.Tree
	sampler sampling.Sampler
	em      uint64 // end-marker row

	logger  logging.Logger
	metrics *metrics.Registry

	// split counters already published to metrics
	publishedBlockSplits uint64
	publishedNodeSplits  uint64
}

// Stats summarizes an engine.
type Stats struct {
	Length    uint64       `json:"length"`
	LenWithEm uint64       `json:"len_with_em"`
	EmPos     uint64       `json:"em_pos"`
	Runs      uint64       `json:"runs"`
	Sampler   string       `json:"sampler"`
	Tree      dynrle.Stats `json:"tree"`
	MemBytes  uint64       `json:"mem_bytes"`
}

// Format selects a WriteBWT encoding.
type Format int

const (
	// FormatRuns is the binary run list: header, then (symbol, uvarint length) pairs.
	FormatRuns Format = iota
	// FormatRunsSnappy is FormatRuns with the run list compressed as one snappy block.
	FormatRunsSnappy
	// FormatExpanded writes one byte per row with ExpandedEmByte at the end-marker row.
	FormatExpanded
)

// ExpandedEmByte stands for the end marker in FormatExpanded output.
const ExpandedEmByte = '$'

// ParseFormat parses a format name ("runs", "snappy", "expanded").
func ParseFormat(s string) (Format, error) {
	switch s {
	case "runs", "":
		return FormatRuns, nil
	case "snappy":
		return FormatRunsSnappy, nil
	case "expanded":
		return FormatExpanded, nil
	default:
		return FormatRuns, fmt.Errorf("%w: format %q", ErrBadFormat, s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatRuns:
		return "runs"
	case FormatRunsSnappy:
		return "snappy"
	case FormatExpanded:
		return "expanded"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}
