package rlbwt

import "fmt"

// Tracker is the interval of rows whose suffixes start with the reversed
// match in progress.
//
// Row is the first row of the interval and Size its number of rows. The end
// marker always lies inside the interval because the match is a suffix of
// the text read so far. SamplePos is the end position in the text of the
// occurrence witnessed by the first stored row of the interval, so
// SamplePos minus the match length is the source offset.
type Tracker struct {
	Row       uint64
	Size      uint64
	SamplePos uint64
}

// NewTracker returns the tracker of the empty match over an empty engine.
func NewTracker() Tracker {
	return Tracker{Row: 0, Size: 1, SamplePos: 0}
}

// Reset makes t the empty-match interval over every row, including the row
// the pending insertion will add.
func (t *Tracker) Reset(lenWithEm uint64) {
	*t = Tracker{Row: 0, Size: lenWithEm + 1, SamplePos: 0}
}

// TryExtend extends the match by sym ahead of ix.Extend(sym). On failure t
// is unchanged and false is returned.
func (t *Tracker) TryExtend(ix *Engine, sym byte) bool {
	next, ok := ix.LFMap(*t, sym)
	if !ok {
		return false
	}
	next.Size++
	*t = next
	return true
}

// Refresh takes the successor sample when the end marker sits on the first
// row of the interval, so the first stored row is the one after the marker.
// It reports whether the sample changed.
func (t *Tracker) Refresh(ix *Engine) bool {
	if ix.EmPos() != t.Row {
		return false
	}
	pos, err := ix.SuccSamplePos()
	if err != nil || pos == t.SamplePos {
		return false
	}
	t.SamplePos = pos
	return true
}

// Validate checks that t is non-empty and holds the end marker.
func (t Tracker) Validate(ix *Engine) error {
	em := ix.EmPos()
	switch {
	case t.Size == 0:
		return &InvariantError{Op: "Tracker", Detail: fmt.Sprintf("empty interval at row %d", t.Row)}
	case em < t.Row || em >= t.Row+t.Size:
		return &InvariantError{Op: "Tracker", Detail: fmt.Sprintf("end marker %d outside [%d, %d)", em, t.Row, t.Row+t.Size)}
	case t.Row+t.Size > ix.LenWithEm():
		return &InvariantError{Op: "Tracker", Detail: fmt.Sprintf("interval [%d, %d) past %d rows", t.Row, t.Row+t.Size, ix.LenWithEm())}
	}
	return nil
}

func (t Tracker) String() string {
	return fmt.Sprintf("[%d+%d @%d]", t.Row, t.Size, t.SamplePos)
}
