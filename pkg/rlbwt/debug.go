package rlbwt

import (
	"fmt"
	"io"

	"github.com/dd0wney/cluso-rlbwt/pkg/dynrle"
)

// RunSpan is one run of the stored BWT together with the rows it covers.
// FirstRow and LastRow count the end-marker row, so a run the marker splits
// spans one more row than its length.
type RunSpan struct {
	Sym      byte
	Length   uint64
	FirstRow uint64
	LastRow  uint64
	Head     uint64
	HasHead  bool
}

// ForEachRun calls fn for every run in row order until fn returns false.
func (e *Engine) ForEachRun(fn func(RunSpan) bool) {
	var pos uint64
	tags := e.tree.Tags()
	e.tree.ForEachRun(func(r dynrle.Run) bool {
		span := RunSpan{
			Sym:      r.Sym,
			Length:   r.Length,
			FirstRow: e.toRow(pos),
			LastRow:  e.toRow(pos + r.Length - 1),
			Head:     r.Tag,
			HasHead:  tags,
		}
		pos += r.Length
		return fn(span)
	})
}

// WriteDebug dumps the end marker, the successor sample and every run.
func (e *Engine) WriteDebug(w io.Writer) error {
	succ := "-"
	if pos, err := e.sampler.Succ(); err == nil {
		succ = fmt.Sprint(pos)
	}
	if _, err := fmt.Fprintf(w, "len=%d em=%d succ=%s runs=%d\n", e.Len(), e.em, succ, e.Runs()); err != nil {
		return err
	}

	var werr error
	e.ForEachRun(func(r RunSpan) bool {
		head := "-"
		if r.HasHead {
			head = fmt.Sprint(r.Head)
		}
		_, werr = fmt.Fprintf(w, "  %s x%d rows [%d,%d] head=%s\n", SymbolName(r.Sym), r.Length, r.FirstRow, r.LastRow, head)
		return werr == nil
	})
	return werr
}

// SymbolName renders printable ASCII quoted and anything else as hex.
func SymbolName(c byte) string {
	if c >= 0x21 && c < 0x7f {
		return fmt.Sprintf("'%c'", c)
	}
	return fmt.Sprintf("0x%02x", c)
}
