package rlbwt

import (
	"unsafe"

	"github.com/dd0wney/cluso-rlbwt/pkg/dynrle"
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/sampling"
)

// New creates an empty engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	treeOpts, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	e := &Engine{logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.sampler == nil {
		s, err := sampling.ByName(cfg.Sampler)
		if err != nil {
			return nil, NewError("New").Entity("sampler").Cause(ErrConfig).Context(err.Error()).Err()
		}
		e.sampler = s
	}

	treeOpts.Tags = e.sampler.Enabled()
	e.tree = dynrle.New(treeOpts)

	e.logger.Debug("engine created",
		logging.Component("rlbwt"),
		logging.String("sampler", e.sampler.Name()),
		logging.Int("block_capacity", treeOpts.BlockCapacity),
		logging.Int("bottom_fanout", treeOpts.BottomFanout),
		logging.Int("node_fanout", treeOpts.NodeFanout),
	)
	return e, nil
}

// Len returns the number of stored symbols, which is the length of the text
// consumed so far.
func (e *Engine) Len() uint64 {
	return e.tree.Len()
}

// LenWithEm returns the number of rows, the end-marker row included.
func (e *Engine) LenWithEm() uint64 {
	return e.tree.Len() + 1
}

// EmPos returns the end-marker row.
func (e *Engine) EmPos() uint64 {
	return e.em
}

// Runs returns the number of runs of the BWT (the end marker is not a run).
func (e *Engine) Runs() uint64 {
	return e.tree.Runs()
}

// Sampler returns the engine's sampler.
func (e *Engine) Sampler() sampling.Sampler {
	return e.sampler
}

// SuccSamplePos returns the text position sampled for the row that follows
// the end marker. It fails with ErrUnavailable when sampling is off or the
// end marker is the last row.
func (e *Engine) SuccSamplePos() (uint64, error) {
	return e.sampler.Succ()
}

// toStore maps a row boundary to a position in the stored sequence, which
// skips the end-marker row.
func (e *Engine) toStore(row uint64) uint64 {
	if row <= e.em {
		return row
	}
	return row - 1
}

// toRow maps a stored position back to its row.
func (e *Engine) toRow(pos uint64) uint64 {
	if pos < e.em {
		return pos
	}
	return pos + 1
}

// Rank returns the number of rows in [0, row) holding sym.
func (e *Engine) Rank(sym byte, row uint64) uint64 {
	if row > e.LenWithEm() {
		row = e.LenWithEm()
	}
	return e.tree.Rank(sym, e.toStore(row))
}

// Select returns the row of the k'th (1-based) occurrence of sym.
func (e *Engine) Select(sym byte, k uint64) (uint64, bool) {
	pos, ok := e.tree.Select(sym, k)
	if !ok {
		return 0, false
	}
	return e.toRow(pos), true
}

// Access returns the symbol stored at row. The end-marker row and rows past
// the end report false.
func (e *Engine) Access(row uint64) (byte, bool) {
	if row == e.em || row >= e.LenWithEm() {
		return 0, false
	}
	return e.tree.Access(e.toStore(row))
}

// Count returns the number of occurrences of sym.
func (e *Engine) Count(sym byte) uint64 {
	return e.tree.Count(sym)
}

// Extend appends sym to the text. The symbol lands at the end-marker row and
// the marker moves to the row of the new reversed text.
func (e *Engine) Extend(sym byte) {
	p := e.em
	tag := e.tree.Len()

	oldSucc, succErr := e.sampler.Succ()
	hasSucc := succErr == nil

	// A split can only happen strictly inside a run, so the row after the
	// marker exists and its sample is the split run's new head.
	e.tree.Insert(p, sym, tag, oldSucc)
	e.em = 1 + e.tree.CountLess(sym) + e.tree.Rank(sym, p)

	if e.sampler.Enabled() {
		e.updateSucc(sym, p, oldSucc, hasSucc)
	}
	e.metrics.RecordInsert()

	if e.logger.Enabled(logging.DebugLevel) {
		e.logger.Debug("extend",
			logging.Symbol(sym),
			logging.Position(tag),
			logging.Row(e.em),
			logging.Runs(e.tree.Runs()),
		)
	}
}

// updateSucc recomputes the sample of the row after the end marker once sym
// has been stored at position p.
//
// That row is the LF image of the next sym after p or, when there is none,
// of the first occurrence of the next larger symbol.
func (e *Engine) updateSucc(sym byte, p, oldSucc uint64, hasSucc bool) {
	k := e.tree.Rank(sym, p+1)
	if j, ok := e.tree.Select(sym, k+1); ok {
		var pl uint64
		if j == p+1 {
			// The old successor row, possibly in the same run as p.
			if !hasSucc {
				invariant("Extend", "successor sample missing for stored row %d", j)
			}
			pl = oldSucc
		} else {
			pl = e.headTag(j)
		}
		e.sampler.SetSucc(pl + 1)
		return
	}

	for c := int(sym) + 1; c < 256; c++ {
		if e.tree.Count(byte(c)) == 0 {
			continue
		}
		j, _ := e.tree.Select(byte(c), 1)
		e.sampler.SetSucc(e.headTag(j) + 1)
		return
	}
	e.sampler.ClearSucc()
}

// headTag returns the sample of stored position j, which must head a run.
func (e *Engine) headTag(j uint64) uint64 {
	tag, ok := e.tree.HeadTag(j)
	if !ok {
		invariant("headTag", "no sample for stored position %d", j)
	}
	return tag
}

// LFMap extends the suffix matched by tr one symbol to the left.
//
// The returned interval is expressed in the row space that Extend(sym) will
// produce and counts only rows already holding sym; the pending symbol at
// the end marker is added by Tracker.TryExtend. It reports false, leaving
// the engine untouched, when no stored row of the interval holds sym.
func (e *Engine) LFMap(tr Tracker, sym byte) (Tracker, bool) {
	if tr.Size == 0 {
		invariant("LFMap", "empty tracker at row %d", tr.Row)
	}
	bd := e.toStore(tr.Row)
	ed := e.toStore(tr.Row + tr.Size)
	rb := e.tree.Rank(sym, bd)
	re := e.tree.Rank(sym, ed)
	if rb == re {
		return tr, false
	}

	var pl uint64
	if e.sampler.Enabled() {
		j, _ := e.tree.Select(sym, rb+1)
		if j == bd {
			// First stored row of the interval: its sample is the tracker's.
			pl = tr.SamplePos
		} else {
			pl = e.headTag(j)
		}
	}
	return Tracker{
		Row:       1 + e.tree.CountLess(sym) + rb,
		Size:      re - rb,
		SamplePos: pl + 1,
	}, true
}

// MemBytes returns the approximate heap bytes held by the engine.
func (e *Engine) MemBytes() uint64 {
	return uint64(unsafe.Sizeof(*e)) + e.tree.MemBytes()
}

// Stats reports the size and shape of the engine.
func (e *Engine) Stats() Stats {
	ts := e.tree.Stats()
	return Stats{
		Length:    ts.Length,
		LenWithEm: ts.Length + 1,
		EmPos:     e.em,
		Runs:      ts.Runs,
		Sampler:   e.sampler.Name(),
		Tree:      ts,
		MemBytes:  uint64(unsafe.Sizeof(*e)) + ts.MemBytes,
	}
}

// Check audits the run store. It is linear in the number of runs.
func (e *Engine) Check() error {
	if err := e.tree.Check(); err != nil {
		return err
	}
	if e.em > e.tree.Len() {
		return NewError("Check").Row(e.em).Context("end marker past last row").Cause(ErrCorrupt).Err()
	}
	return nil
}

// PublishMetrics pushes structure gauges and split counters to the registry.
func (e *Engine) PublishMetrics() {
	if e.metrics == nil {
		return
	}
	blocks, nodes := e.tree.Splits()
	e.metrics.RecordSplits("block", blocks-e.publishedBlockSplits)
	e.metrics.RecordSplits("node", nodes-e.publishedNodeSplits)
	e.publishedBlockSplits, e.publishedNodeSplits = blocks, nodes
	e.metrics.UpdateStructure(e.tree.Len(), e.tree.Runs(), e.MemBytes())
}
