package rlbwt

import (
	"bytes"
	"sort"
)

// refRow is one row of the BWT of reverse(text)+"$" computed by sorting.
type refRow struct {
	prev int // preceding symbol, -1 for the end marker
	pl   int // length of the text prefix the row stands for
}

// referenceRows sorts the suffixes of the reversed text. The marker is the
// smallest symbol, so a proper prefix sorts first and bytes.Compare suffices.
func referenceRows(text []byte) []refRow {
	n := len(text)
	rev := make([]byte, n)
	for i, c := range text {
		rev[n-1-i] = c
	}
	idx := make([]int, n+1)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return bytes.Compare(rev[idx[a]:], rev[idx[b]:]) < 0
	})

	rows := make([]refRow, n+1)
	for r, i := range idx {
		prev := -1
		if i > 0 {
			prev = int(rev[i-1])
		}
		rows[r] = refRow{prev: prev, pl: n - i}
	}
	return rows
}

func referenceBWT(text []byte) []int {
	rows := referenceRows(text)
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.prev
	}
	return out
}

// engineBWT expands the engine row by row, -1 at the end marker.
func engineBWT(e *Engine) []int {
	out := make([]int, e.LenWithEm())
	for row := range out {
		if c, ok := e.Access(uint64(row)); ok {
			out[row] = int(c)
		} else {
			out[row] = -1
		}
	}
	return out
}

func build(t interface{ Fatalf(string, ...any) }, text []byte) *Engine {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, c := range text {
		e.Extend(c)
	}
	return e
}
