package dynrle

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrCorrupt is returned by Check when a structural invariant does not hold.
var ErrCorrupt = errors.New("dynrle: corrupt structure")

// MemBytes returns the approximate number of heap bytes held by the tree.
func (t *Tree) MemBytes() uint64 {
	total := uint64(unsafe.Sizeof(*t))
	for i := range t.blocks {
		blk := &t.blocks[i]
		total += uint64(unsafe.Sizeof(*blk))
		total += uint64(cap(blk.syms))
		total += uint64(cap(blk.words)) * 8
		total += uint64(cap(blk.tags)) * 8
	}
	for i := range t.nodes {
		total += uint64(unsafe.Sizeof(t.nodes[i]))
		total += uint64(cap(t.nodes[i].children)) * 4
	}
	return total
}

// Stats reports the shape of the tree.
func (t *Tree) Stats() Stats {
	s := Stats{
		Length:      t.Len(),
		Runs:        t.runs,
		Blocks:      len(t.blocks),
		Height:      t.height,
		BlockSplits: t.blockSplits,
		NodeSplits:  t.nodeSplits,
		MemBytes:    t.MemBytes(),
	}
	for i := range t.nodes {
		if t.nodes[i].bottom {
			s.BottomNodes++
		} else {
			s.InternalNodes++
		}
	}
	return s
}

// Check audits every cached aggregate, parent link and run against the
// stored blocks. It is linear in the size of the tree and meant for tests.
func (t *Tree) Check() error {
	if t.root < 0 {
		if len(t.blocks) != 0 || len(t.nodes) != 0 {
			return fmt.Errorf("%w: empty root with %d blocks", ErrCorrupt, len(t.blocks))
		}
		return nil
	}
	if t.nodes[t.root].parent != -1 {
		return fmt.Errorf("%w: root has parent %d", ErrCorrupt, t.nodes[t.root].parent)
	}
	if _, err := t.checkNode(t.root, 1); err != nil {
		return err
	}

	var (
		runs    uint64
		prevSym = -1
		prev    = int32(-1)
		seen    int
	)
	for b := int32(0); b >= 0; b = t.blocks[b].next {
		blk := &t.blocks[b]
		seen++
		if blk.prev != prev {
			return fmt.Errorf("%w: block %d prev link %d, want %d", ErrCorrupt, b, blk.prev, prev)
		}
		if blk.NumRuns() == 0 {
			return fmt.Errorf("%w: block %d is empty", ErrCorrupt, b)
		}
		if blk.NumRuns() > t.opts.BlockCapacity {
			return fmt.Errorf("%w: block %d holds %d runs", ErrCorrupt, b, blk.NumRuns())
		}
		var w uint64
		for i, s := range blk.syms {
			l := blk.RunLen(i)
			if l == 0 {
				return fmt.Errorf("%w: block %d run %d is empty", ErrCorrupt, b, i)
			}
			if int(s) == prevSym {
				return fmt.Errorf("%w: block %d run %d is not maximal", ErrCorrupt, b, i)
			}
			prevSym = int(s)
			w += l
			runs++
		}
		if w != blk.weight {
			return fmt.Errorf("%w: block %d weight %d, runs sum to %d", ErrCorrupt, b, blk.weight, w)
		}
		prev = b
	}
	if seen != len(t.blocks) {
		return fmt.Errorf("%w: block list reaches %d of %d blocks", ErrCorrupt, seen, len(t.blocks))
	}
	if prev != t.last {
		return fmt.Errorf("%w: last block %d, list ends at %d", ErrCorrupt, t.last, prev)
	}
	if runs != t.runs {
		return fmt.Errorf("%w: run count %d, stored %d", ErrCorrupt, runs, t.runs)
	}
	return nil
}

// checkNode verifies node x and returns its depth below x.
func (t *Tree) checkNode(x int32, depth int) (int, error) {
	n := &t.nodes[x]
	if len(n.children) == 0 {
		return 0, fmt.Errorf("%w: node %d has no children", ErrCorrupt, x)
	}

	var (
		weight uint64
		counts [256]uint64
	)
	if n.bottom {
		if len(n.children) > t.opts.BottomFanout {
			return 0, fmt.Errorf("%w: bottom node %d has %d blocks", ErrCorrupt, x, len(n.children))
		}
		for _, c := range n.children {
			blk := &t.blocks[c]
			if blk.parent != x {
				return 0, fmt.Errorf("%w: block %d parent %d, want %d", ErrCorrupt, c, blk.parent, x)
			}
			weight += blk.weight
			blk.addCounts(&counts)
		}
		if depth != t.height {
			return 0, fmt.Errorf("%w: bottom node %d at depth %d, height %d", ErrCorrupt, x, depth, t.height)
		}
	} else {
		if len(n.children) > t.opts.NodeFanout {
			return 0, fmt.Errorf("%w: node %d has %d children", ErrCorrupt, x, len(n.children))
		}
		for _, c := range n.children {
			child := &t.nodes[c]
			if child.parent != x {
				return 0, fmt.Errorf("%w: node %d parent %d, want %d", ErrCorrupt, c, child.parent, x)
			}
			if _, err := t.checkNode(c, depth+1); err != nil {
				return 0, err
			}
			weight += child.weight
			for s, v := range child.counts {
				counts[s] += v
			}
		}
	}

	if weight != n.weight {
		return 0, fmt.Errorf("%w: node %d weight %d, children sum to %d", ErrCorrupt, x, n.weight, weight)
	}
	if counts != n.counts {
		return 0, fmt.Errorf("%w: node %d symbol counts disagree with children", ErrCorrupt, x)
	}
	return depth, nil
}
