package dynrle

import "fmt"

// Default shape parameters.
const (
	DefaultBlockCapacity = 32 // runs per leaf block
	DefaultBottomFanout  = 16 // blocks per bottom node
	DefaultNodeFanout    = 32 // children per internal node

	minShape = 4
)

// Options configures the shape of a Tree.
type Options struct {
	// BlockCapacity is the maximum number of runs in a leaf block before it splits.
	BlockCapacity int `yaml:"block_capacity" validate:"gte=4,lte=4096"`
	// BottomFanout is the maximum number of blocks under one bottom node.
	BottomFanout int `yaml:"bottom_fanout" validate:"gte=4,lte=1024"`
	// NodeFanout is the maximum number of children of an internal node.
	NodeFanout int `yaml:"node_fanout" validate:"gte=4,lte=1024"`
	// Tags enables one head tag per run (used for text position sampling).
	Tags bool `yaml:"-"`
}

// DefaultOptions returns the default tree shape with tags enabled.
func DefaultOptions() Options {
	return Options{
		BlockCapacity: DefaultBlockCapacity,
		BottomFanout:  DefaultBottomFanout,
		NodeFanout:    DefaultNodeFanout,
		Tags:          true,
	}
}

// Validate checks the shape parameters.
func (o Options) Validate() error {
	if o.BlockCapacity < minShape {
		return fmt.Errorf("dynrle: block capacity %d is below minimum %d", o.BlockCapacity, minShape)
	}
	if o.BottomFanout < minShape {
		return fmt.Errorf("dynrle: bottom fanout %d is below minimum %d", o.BottomFanout, minShape)
	}
	if o.NodeFanout < minShape {
		return fmt.Errorf("dynrle: node fanout %d is below minimum %d", o.NodeFanout, minShape)
	}
	return nil
}

// node is a bottom node (children are blocks) or an internal node
// (children are nodes). Both cache their subtree length and per-symbol counts.
type node struct {
	parent   int32
	bottom   bool
	children []int32
	weight   uint64
	counts   [256]uint64
}

// Tree is a dynamic run-length encoded sequence.
type Tree struct {
	opts   Options
	blocks []Block
	nodes  []node
	root   int32 // -1 while empty
	last   int32 // last block in sequence order
	runs   uint64
	height int // number of node levels, 0 while empty

	blockSplits uint64
	nodeSplits  uint64
}

// Stats describes the shape and size of a Tree.
type Stats struct {
	Length        uint64 `json:"length"`
	Runs          uint64 `json:"runs"`
	Blocks        int    `json:"blocks"`
	BottomNodes   int    `json:"bottom_nodes"`
	InternalNodes int    `json:"internal_nodes"`
	Height        int    `json:"height"`
	BlockSplits   uint64 `json:"block_splits"`
	NodeSplits    uint64 `json:"node_splits"`
	MemBytes      uint64 `json:"mem_bytes"`
}

// Run is one (symbol, length) pair.
type Run struct {
	Sym    byte
	Length uint64
	Tag    uint64
}
