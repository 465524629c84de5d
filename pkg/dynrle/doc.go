// Package dynrle provides a dynamic run-length encoded sequence over a byte
// alphabet.
//
// The sequence is stored as maximal runs of one symbol. Runs live in
// fixed-capacity leaf blocks whose run lengths are bit-packed at the width of
// the longest run in the block. Blocks are grouped under bottom nodes, and
// bottom nodes hang off a B-tree of internal nodes. Every node caches its
// subtree length and a per-symbol count, so positional lookups, rank and
// select descend in time logarithmic in the number of runs.
//
// All nodes and blocks live in arenas addressed by int32 indices. Parent links
// are indices too, which keeps split propagation cheap and cycle free.
//
// A Tree is not safe for concurrent use.
package dynrle
