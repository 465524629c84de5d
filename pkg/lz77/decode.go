package lz77

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-rlbwt/pkg/pools"
	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
)

// appendFactor expands f onto out. The copy may overlap the bytes it
// produces, so it runs one byte at a time.
func appendFactor(out []byte, f Factor) ([]byte, error) {
	if f.Length > 0 && f.Offset >= uint64(len(out)) {
		return out, fmt.Errorf("%w: %v with %d bytes decoded", ErrBadFactor, f, len(out))
	}
	for k := uint64(0); k < f.Length; k++ {
		out = append(out, out[f.Offset+k])
	}
	return append(out, f.Literal), nil
}

// Decode expands factors left to right.
func Decode(factors []Factor) ([]byte, error) {
	out := make([]byte, 0, DecodedLen(factors))
	var err error
	for i, f := range factors {
		if out, err = appendFactor(out, f); err != nil {
			return out, fmt.Errorf("factor %d: %w", i, err)
		}
	}
	return out, nil
}

// DecodeStream decodes a factor stream of the given width from r and writes
// the text to w. The whole text is kept in memory because any earlier byte
// may be a copy source.
func DecodeStream(r io.Reader, w io.Writer, width int) (int64, error) {
	fr, err := NewReader(r, width)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(w, pools.ChunkSize)

	var (
		out     []byte
		flushed int
		i       int
	)
	for ; ; i++ {
		f, err := fr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return int64(flushed), err
		}
		if out, err = appendFactor(out, f); err != nil {
			return int64(flushed), fmt.Errorf("factor %d: %w", i, err)
		}
		if len(out)-flushed >= pools.ChunkSize {
			n, err := bw.Write(out[flushed:])
			flushed += n
			if err != nil {
				return int64(flushed), err
			}
		}
	}
	n, err := bw.Write(out[flushed:])
	flushed += n
	if err != nil {
		return int64(flushed), err
	}
	return int64(flushed), bw.Flush()
}

// Factorize builds a fresh run-head sampled engine over text and returns
// its factors.
func Factorize(text []byte, cfg rlbwt.Config, opts ...Option) ([]Factor, error) {
	var c Collector
	if _, err := factorizeInto(text, cfg, &c, opts...); err != nil {
		return nil, err
	}
	return c.Factors, nil
}

// FactorizeTo factorizes text with the default engine configuration into sink.
func FactorizeTo(text []byte, sink Sink, opts ...Option) (Stats, error) {
	return factorizeInto(text, rlbwt.DefaultConfig(), sink, opts...)
}

func factorizeInto(text []byte, cfg rlbwt.Config, sink Sink, opts ...Option) (Stats, error) {
	eng, err := rlbwt.New(cfg)
	if err != nil {
		return Stats{}, err
	}
	fz, err := New(eng, sink, opts...)
	if err != nil {
		return Stats{}, err
	}
	if err := fz.FeedAll(text); err != nil {
		return fz.Stats(), err
	}
	return fz.Stats(), fz.Finish()
}
