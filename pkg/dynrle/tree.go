package dynrle

import "fmt"

// New creates an empty tree. Invalid shape parameters fall back to the defaults.
func New(opts Options) *Tree {
	if opts.Validate() != nil {
		tags := opts.Tags
		opts = DefaultOptions()
		opts.Tags = tags
	}
	return &Tree{
		opts: opts,
		root: -1,
		last: -1,
	}
}

// Options returns the shape the tree was created with.
func (t *Tree) Options() Options {
	return t.opts
}

// Len returns the number of symbols in the sequence.
func (t *Tree) Len() uint64 {
	if t.root < 0 {
		return 0
	}
	return t.nodes[t.root].weight
}

// Runs returns the number of runs in the sequence.
func (t *Tree) Runs() uint64 {
	return t.runs
}

// Count returns the total number of occurrences of sym.
func (t *Tree) Count(sym byte) uint64 {
	if t.root < 0 {
		return 0
	}
	return t.nodes[t.root].counts[sym]
}

// CountLess returns the number of symbols strictly smaller than sym.
func (t *Tree) CountLess(sym byte) uint64 {
	if t.root < 0 {
		return 0
	}
	var total uint64
	counts := &t.nodes[t.root].counts
	for c := 0; c < int(sym); c++ {
		total += counts[c]
	}
	return total
}

// Tags reports whether runs carry head tags.
func (t *Tree) Tags() bool {
	return t.opts.Tags
}

// seed creates the first block and bottom node holding a single run.
func (t *Tree) seed(sym byte, length, tag uint64) {
	blk := newBlock(t.opts.BlockCapacity, t.opts.Tags)
	blk.insertRun(0, sym, length, tag)
	blk.parent = 0
	t.blocks = append(t.blocks, blk)

	n := node{parent: -1, bottom: true, children: make([]int32, 0, t.opts.BottomFanout+1)}
	n.children = append(n.children, 0)
	n.weight = length
	n.counts[sym] = length
	t.nodes = append(t.nodes, n)

	t.root = 0
	t.last = 0
	t.runs = 1
	t.height = 1
}

// Insert inserts sym at position pos (0 <= pos <= Len()).
//
// Inside a run of a different symbol the run is split and the right part
// takes splitTag as its head tag. At a run boundary sym joins the preceding
// run when it matches, otherwise the following run (which then takes tag as
// its head tag), otherwise a new run headed by tag is created.
func (t *Tree) Insert(pos uint64, sym byte, tag, splitTag uint64) {
	if t.root < 0 {
		if pos != 0 {
			panic(fmt.Sprintf("dynrle: insert at %d into empty tree", pos))
		}
		t.seed(sym, 1, tag)
		return
	}
	if pos > t.Len() {
		panic(fmt.Sprintf("dynrle: insert at %d beyond length %d", pos, t.Len()))
	}

	b, off := t.locate(pos)
	blk := &t.blocks[b]
	ri, ro := blk.locate(off)
	target := b

	switch {
	case ro > 0:
		// Strictly inside run ri.
		if blk.syms[ri] == sym {
			blk.growRun(ri, 1)
			break
		}
		old := blk.syms[ri]
		right := blk.RunLen(ri) - ro
		blk.setRunLen(ri, ro)
		blk.weight -= right
		blk.insertRun(ri+1, sym, 1, tag)
		blk.insertRun(ri+2, old, right, splitTag)
		t.runs += 2

	default:
		lb, li := b, ri-1
		if ri == 0 {
			lb = blk.prev
			if lb >= 0 {
				li = t.blocks[lb].NumRuns() - 1
			}
		}
		switch {
		case lb >= 0 && t.blocks[lb].syms[li] == sym:
			t.blocks[lb].growRun(li, 1)
			target = lb
		case ri < blk.NumRuns() && blk.syms[ri] == sym:
			blk.growRun(ri, 1)
			blk.setTag(ri, tag)
		default:
			blk.insertRun(ri, sym, 1, tag)
			t.runs++
		}
	}

	t.addUp(target, sym, 1)
	if t.blocks[target].NumRuns() > t.opts.BlockCapacity {
		t.splitBlock(target)
	}
}

// Append adds length copies of sym at the end of the sequence. A new run is
// headed by tag; extending the last run keeps its tag.
func (t *Tree) Append(sym byte, length, tag uint64) {
	if length == 0 {
		return
	}
	if t.root < 0 {
		t.seed(sym, length, tag)
		return
	}
	b := t.last
	blk := &t.blocks[b]
	if i := blk.NumRuns() - 1; blk.syms[i] == sym {
		blk.growRun(i, length)
	} else {
		blk.insertRun(i+1, sym, length, tag)
		t.runs++
	}
	t.addUp(b, sym, length)
	if t.blocks[b].NumRuns() > t.opts.BlockCapacity {
		t.splitBlock(b)
	}
}

// addUp adds delta occurrences of sym to every node above block b.
func (t *Tree) addUp(b int32, sym byte, delta uint64) {
	for x := t.blocks[b].parent; x >= 0; x = t.nodes[x].parent {
		t.nodes[x].weight += delta
		t.nodes[x].counts[sym] += delta
	}
}

// splitBlock moves the upper half of block b into a new sibling block.
func (t *Tree) splitBlock(b int32) {
	nb := t.blocks[b].splitOff(t.blocks[b].NumRuns()/2, t.opts.BlockCapacity)
	idx := int32(len(t.blocks))
	parent := t.blocks[b].parent

	nb.parent = parent
	nb.prev = b
	nb.next = t.blocks[b].next
	t.blocks = append(t.blocks, nb)
	if next := t.blocks[idx].next; next >= 0 {
		t.blocks[next].prev = idx
	} else {
		t.last = idx
	}
	t.blocks[b].next = idx
	t.blockSplits++

	t.nodes[parent].children = insertAfter(t.nodes[parent].children, b, idx)
	if len(t.nodes[parent].children) > t.opts.BottomFanout {
		t.splitNode(parent)
	}
}

// splitNode moves the upper half of node x's children into a new sibling,
// growing a new root when x is the root.
func (t *Tree) splitNode(x int32) {
	children := t.nodes[x].children
	half := len(children) / 2
	fanout := t.opts.NodeFanout
	if t.nodes[x].bottom {
		fanout = t.opts.BottomFanout
	}

	moved := make([]int32, len(children)-half, fanout+1)
	copy(moved, children[half:])
	y := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{
		parent:   t.nodes[x].parent,
		bottom:   t.nodes[x].bottom,
		children: moved,
	})
	t.nodes[x].children = children[:half]
	t.nodeSplits++

	for _, c := range moved {
		if t.nodes[y].bottom {
			t.blocks[c].parent = y
		} else {
			t.nodes[c].parent = y
		}
	}
	t.recompute(x)
	t.recompute(y)

	p := t.nodes[x].parent
	if p < 0 {
		r := int32(len(t.nodes))
		rootChildren := make([]int32, 0, t.opts.NodeFanout+1)
		rootChildren = append(rootChildren, x, y)
		t.nodes = append(t.nodes, node{parent: -1, children: rootChildren})
		t.nodes[x].parent = r
		t.nodes[y].parent = r
		t.recompute(r)
		t.root = r
		t.height++
		return
	}

	t.nodes[p].children = insertAfter(t.nodes[p].children, x, y)
	if len(t.nodes[p].children) > t.opts.NodeFanout {
		t.splitNode(p)
	}
}

// recompute rebuilds the cached aggregates of node x from its children.
func (t *Tree) recompute(x int32) {
	n := &t.nodes[x]
	n.weight = 0
	n.counts = [256]uint64{}
	if n.bottom {
		for _, c := range n.children {
			blk := &t.blocks[c]
			n.weight += blk.weight
			blk.addCounts(&n.counts)
		}
		return
	}
	for _, c := range n.children {
		child := &t.nodes[c]
		n.weight += child.weight
		for s, v := range child.counts {
			n.counts[s] += v
		}
	}
}

func insertAfter(s []int32, after, v int32) []int32 {
	for i, e := range s {
		if e == after {
			s = append(s, 0)
			copy(s[i+2:], s[i+1:])
			s[i+1] = v
			return s
		}
	}
	panic(fmt.Sprintf("dynrle: child %d not found", after))
}

// Splits returns the number of block and node splits performed so far.
func (t *Tree) Splits() (blocks, nodes uint64) {
	return t.blockSplits, t.nodeSplits
}
