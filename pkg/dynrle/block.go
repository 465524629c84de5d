package dynrle

// Block is a leaf of the run store. It holds consecutive runs, with run
// lengths bit-packed at the width of the longest run currently stored.
type Block struct {
	syms   []byte   // run symbols
	words  []uint64 // packed run lengths
	width  uint8    // bits per packed length
	tags   []uint64 // head tag per run, nil when tags are disabled
	weight uint64   // sum of run lengths

	parent     int32 // owning bottom node
	prev, next int32 // neighbouring blocks in sequence order, -1 at the ends
}

func newBlock(capacity int, withTags bool) Block {
	b := Block{
		syms:   make([]byte, 0, capacity+2),
		width:  1,
		parent: -1,
		prev:   -1,
		next:   -1,
	}
	b.words = make([]uint64, wordsFor(capacity+2, b.width))
	if withTags {
		b.tags = make([]uint64, 0, capacity+2)
	}
	return b
}

// NumRuns returns the number of runs in the block.
func (b *Block) NumRuns() int {
	return len(b.syms)
}

// Weight returns the number of symbols in the block.
func (b *Block) Weight() uint64 {
	return b.weight
}

// Sym returns the symbol of run i.
func (b *Block) Sym(i int) byte {
	return b.syms[i]
}

// RunLen returns the length of run i.
func (b *Block) RunLen(i int) uint64 {
	return getPacked(b.words, i, b.width)
}

// Tag returns the head tag of run i, or 0 when tags are disabled.
func (b *Block) Tag(i int) uint64 {
	if b.tags == nil {
		return 0
	}
	return b.tags[i]
}

func (b *Block) setTag(i int, tag uint64) {
	if b.tags != nil {
		b.tags[i] = tag
	}
}

// repack rewrites every packed length at width w.
func (b *Block) repack(w uint8) {
	n := len(b.syms)
	lengths := make([]uint64, n)
	for i := range lengths {
		lengths[i] = getPacked(b.words, i, b.width)
	}
	need := wordsFor(cap(b.syms), w)
	if need < wordsFor(n, w) {
		need = wordsFor(n, w)
	}
	b.words = make([]uint64, need)
	b.width = w
	for i, l := range lengths {
		setPacked(b.words, i, w, l)
	}
}

// ensureWords grows the packed array so that n lengths fit.
func (b *Block) ensureWords(n int) {
	if need := wordsFor(n, b.width); need > len(b.words) {
		b.words = append(b.words, make([]uint64, need-len(b.words))...)
	}
}

// setRunLen stores length l for run i, widening the block if needed.
// It does not touch weight.
func (b *Block) setRunLen(i int, l uint64) {
	if w := bitWidth(l); w > b.width {
		b.repack(w)
	}
	setPacked(b.words, i, b.width, l)
}

// growRun adds delta symbols to run i.
func (b *Block) growRun(i int, delta uint64) {
	b.setRunLen(i, b.RunLen(i)+delta)
	b.weight += delta
}

// insertRun inserts a new run at index i, shifting later runs right.
func (b *Block) insertRun(i int, sym byte, length, tag uint64) {
	n := len(b.syms)
	if w := bitWidth(length); w > b.width {
		b.repack(w)
	}
	b.ensureWords(n + 1)
	for j := n; j > i; j-- {
		setPacked(b.words, j, b.width, getPacked(b.words, j-1, b.width))
	}
	setPacked(b.words, i, b.width, length)

	b.syms = append(b.syms, 0)
	copy(b.syms[i+1:], b.syms[i:n])
	b.syms[i] = sym

	if b.tags != nil {
		b.tags = append(b.tags, 0)
		copy(b.tags[i+1:], b.tags[i:n])
		b.tags[i] = tag
	}
	b.weight += length
}

// splitOff moves runs [from, n) into a new block and returns it. Both
// blocks are repacked at the narrowest width that fits their runs.
func (b *Block) splitOff(from, capacity int) Block {
	nb := newBlock(capacity, b.tags != nil)
	n := len(b.syms)
	for i := from; i < n; i++ {
		nb.insertRun(nb.NumRuns(), b.syms[i], b.RunLen(i), b.Tag(i))
	}

	b.syms = b.syms[:from]
	if b.tags != nil {
		b.tags = b.tags[:from]
	}
	b.weight -= nb.weight
	b.shrink()
	nb.shrink()
	return nb
}

// shrink repacks the block at the smallest width that holds its longest run.
func (b *Block) shrink() {
	var maxLen uint64
	for i := range b.syms {
		if l := b.RunLen(i); l > maxLen {
			maxLen = l
		}
	}
	if w := bitWidth(maxLen); w < b.width {
		b.repack(w)
	}
}

// locate maps an offset within the block to a run index and an offset
// inside that run. An offset equal to the block weight maps to
// (NumRuns(), 0).
func (b *Block) locate(off uint64) (int, uint64) {
	for i := range b.syms {
		l := b.RunLen(i)
		if off < l {
			return i, off
		}
		off -= l
	}
	return len(b.syms), 0
}

// rank counts sym in the first off symbols of the block.
func (b *Block) rank(sym byte, off uint64) uint64 {
	var cnt uint64
	for i, s := range b.syms {
		l := b.RunLen(i)
		if off <= l {
			if s == sym {
				cnt += off
			}
			return cnt
		}
		if s == sym {
			cnt += l
		}
		off -= l
	}
	return cnt
}

// count returns the number of occurrences of sym in the block.
func (b *Block) count(sym byte) uint64 {
	var cnt uint64
	for i, s := range b.syms {
		if s == sym {
			cnt += b.RunLen(i)
		}
	}
	return cnt
}

// selectOff returns the offset of the k'th (1-based) sym in the block.
func (b *Block) selectOff(sym byte, k uint64) (uint64, bool) {
	var off uint64
	for i, s := range b.syms {
		l := b.RunLen(i)
		if s == sym {
			if k <= l {
				return off + k - 1, true
			}
			k -= l
		}
		off += l
	}
	return 0, false
}

// addCounts adds the per-symbol totals of the block into counts.
func (b *Block) addCounts(counts *[256]uint64) {
	for i, s := range b.syms {
		counts[s] += b.RunLen(i)
	}
}
