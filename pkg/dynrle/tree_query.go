package dynrle

// locate descends to the block holding position pos and returns the block
// index and the offset inside it. pos == Len() maps to the end of the last
// block.
func (t *Tree) locate(pos uint64) (int32, uint64) {
	x := t.root
	for {
		n := &t.nodes[x]
		last := len(n.children) - 1
		if n.bottom {
			for i, c := range n.children {
				w := t.blocks[c].weight
				if pos < w || i == last {
					return c, pos
				}
				pos -= w
			}
			return n.children[last], pos
		}
		for i, c := range n.children {
			w := t.nodes[c].weight
			if pos < w || i == last {
				x = c
				break
			}
			pos -= w
		}
	}
}

// Rank returns the number of occurrences of sym in positions [0, pos).
func (t *Tree) Rank(sym byte, pos uint64) uint64 {
	if t.root < 0 || pos == 0 {
		return 0
	}
	if pos >= t.Len() {
		return t.Count(sym)
	}

	var cnt uint64
	x := t.root
	for {
		n := &t.nodes[x]
		if n.bottom {
			for _, c := range n.children {
				blk := &t.blocks[c]
				if pos < blk.weight {
					return cnt + blk.rank(sym, pos)
				}
				cnt += blk.count(sym)
				pos -= blk.weight
			}
			return cnt
		}
		next := n.children[len(n.children)-1]
		for _, c := range n.children {
			child := &t.nodes[c]
			if pos < child.weight {
				next = c
				break
			}
			cnt += child.counts[sym]
			pos -= child.weight
		}
		x = next
	}
}

// Select returns the position of the k'th (1-based) occurrence of sym.
// It reports false when k is zero or exceeds Count(sym).
func (t *Tree) Select(sym byte, k uint64) (uint64, bool) {
	if k == 0 || k > t.Count(sym) {
		return 0, false
	}

	var pos uint64
	x := t.root
	for {
		n := &t.nodes[x]
		if n.bottom {
			for _, c := range n.children {
				blk := &t.blocks[c]
				cnt := blk.count(sym)
				if k <= cnt {
					off, ok := blk.selectOff(sym, k)
					return pos + off, ok
				}
				k -= cnt
				pos += blk.weight
			}
			return 0, false
		}
		next := int32(-1)
		for _, c := range n.children {
			child := &t.nodes[c]
			if cnt := child.counts[sym]; k <= cnt {
				next = c
				break
			} else {
				k -= cnt
			}
			pos += child.weight
		}
		if next < 0 {
			return 0, false
		}
		x = next
	}
}

// RunAt returns the run covering position pos and the offset of pos inside it.
func (t *Tree) RunAt(pos uint64) (Run, uint64, bool) {
	if pos >= t.Len() {
		return Run{}, 0, false
	}
	b, off := t.locate(pos)
	blk := &t.blocks[b]
	ri, ro := blk.locate(off)
	return Run{Sym: blk.syms[ri], Length: blk.RunLen(ri), Tag: blk.Tag(ri)}, ro, true
}

// Access returns the symbol at position pos.
func (t *Tree) Access(pos uint64) (byte, bool) {
	r, _, ok := t.RunAt(pos)
	return r.Sym, ok
}

// HeadTag returns the head tag of the run covering pos.
func (t *Tree) HeadTag(pos uint64) (uint64, bool) {
	r, _, ok := t.RunAt(pos)
	if !ok || !t.opts.Tags {
		return 0, false
	}
	return r.Tag, true
}

// ForEachRun calls fn for every run in sequence order until fn returns false.
func (t *Tree) ForEachRun(fn func(r Run) bool) {
	if t.root < 0 {
		return
	}
	for b := int32(0); b >= 0; b = t.blocks[b].next {
		blk := &t.blocks[b]
		for i := range blk.syms {
			if !fn(Run{Sym: blk.syms[i], Length: blk.RunLen(i), Tag: blk.Tag(i)}) {
				return
			}
		}
	}
}

// RunList returns a copy of every run in sequence order.
func (t *Tree) RunList() []Run {
	out := make([]Run, 0, t.runs)
	t.ForEachRun(func(r Run) bool {
		out = append(out, r)
		return true
	})
	return out
}
