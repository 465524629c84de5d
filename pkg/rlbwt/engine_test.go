package rlbwt

import (
	"bytes"
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rlbwt/pkg/dynrle"
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/metrics"
	"github.com/dd0wney/cluso-rlbwt/pkg/sampling"
)

func TestEngine_Empty(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, uint64(0), e.Len())
	assert.Equal(t, uint64(1), e.LenWithEm())
	assert.Equal(t, uint64(0), e.EmPos())
	assert.Equal(t, uint64(0), e.Runs())
	assert.Equal(t, "$", e.String())

	_, err = e.SuccSamplePos()
	assert.ErrorIs(t, err, ErrUnavailable)

	_, ok := e.Access(0)
	assert.False(t, ok)
	_, ok = e.Select('a', 1)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), e.Rank('a', 1))
	require.NoError(t, e.Check())
}

func TestEngine_BWTMatchesReference(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"single", "a"},
		{"pair", "aa"},
		{"banana", "banana"},
		{"mississippi", "mississippi"},
		{"abracadabra", "abracadabra"},
		{"runs", "aaaabbbbaaaacccc"},
		{"binary", "\x00\xff\x00\x00\xff\x01"},
		{"newlines", "ac\ngt\nac\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := build(t, []byte(tt.text))
			require.NoError(t, e.Check())
			assert.Equal(t, referenceBWT([]byte(tt.text)), engineBWT(e))
			assert.Equal(t, uint64(len(tt.text)), e.Len())
		})
	}
}

func TestEngine_ExpandedString(t *testing.T) {
	// reverse("banana") = "ananab"; its BWT with the marker is "bnn$aaa".
	e := build(t, []byte("banana"))
	assert.Equal(t, "bnn$aaa", e.String())
	assert.Equal(t, uint64(3), e.EmPos())
}

// TestEngine_SamplesMatchPrefixLengths checks every run head and the
// successor sample against the prefix lengths of a sorted reference.
func TestEngine_SamplesMatchPrefixLengths(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 40; trial++ {
		text := make([]byte, rng.Intn(300))
		for i := range text {
			text[i] = byte('a' + rng.Intn(3))
		}

		e, err := New(Config{Tree: dynrle.Options{BlockCapacity: 4, BottomFanout: 4, NodeFanout: 4}})
		require.NoError(t, err)
		for i, c := range text {
			e.Extend(c)
			ref := referenceRows(text[:i+1])

			succ, err := e.SuccSamplePos()
			if int(e.EmPos())+1 < len(ref) {
				require.NoError(t, err, "text %q", text[:i+1])
				require.Equal(t, uint64(ref[e.EmPos()+1].pl), succ, "succ of %q", text[:i+1])
			} else {
				require.ErrorIs(t, err, ErrUnavailable)
			}
		}

		ref := referenceRows(text)
		var pos uint64
		e.tree.ForEachRun(func(r dynrle.Run) bool {
			row := e.toRow(pos)
			require.Equal(t, uint64(ref[row].pl), r.Tag, "head of row %d in %q", row, text)
			pos += r.Length
			return true
		})
		require.NoError(t, e.Check())
	}
}

func TestEngine_RankSelectOverRows(t *testing.T) {
	text := []byte("abracadabra_alakazam")
	e := build(t, text)
	bwt := engineBWT(e)

	for _, c := range []byte("abrz_") {
		var seen uint64
		for row := 0; row <= len(bwt); row++ {
			assert.Equal(t, seen, e.Rank(c, uint64(row)), "rank(%c, %d)", c, row)
			if row < len(bwt) && bwt[row] == int(c) {
				seen++
				got, ok := e.Select(c, seen)
				require.True(t, ok)
				assert.Equal(t, uint64(row), got, "select(%c, %d)", c, seen)
			}
		}
		assert.Equal(t, seen, e.Count(c))
		_, ok := e.Select(c, seen+1)
		assert.False(t, ok)
	}

	// Ranks past the last row clamp.
	assert.Equal(t, e.Count('a'), e.Rank('a', 1<<40))
}

func TestEngine_NullSamplerBuildsSameBWT(t *testing.T) {
	text := []byte("the quick brown fox jumps over the lazy dog")
	e, err := New(Config{Sampler: sampling.NameNull})
	require.NoError(t, err)
	for _, c := range text {
		e.Extend(c)
	}

	assert.Equal(t, referenceBWT(text), engineBWT(e))
	assert.False(t, e.tree.Tags())
	_, err = e.SuccSamplePos()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEngine_ConfigErrors(t *testing.T) {
	_, err := New(Config{Sampler: "every-other"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(Config{Tree: dynrle.Options{BlockCapacity: 2, BottomFanout: 8, NodeFanout: 8}})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestEngine_WithSamplerOverridesConfig(t *testing.T) {
	e, err := New(Config{Sampler: "bogus"}, WithSampler(sampling.Null{}))
	require.NoError(t, err)
	assert.Equal(t, sampling.NameNull, e.Sampler().Name())
}

func TestEngine_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	e, err := New(DefaultConfig(), WithLogger(logger))
	require.NoError(t, err)
	e.Extend('x')

	out := buf.String()
	assert.Contains(t, out, `"msg":"engine created"`)
	assert.Contains(t, out, `"msg":"extend"`)
	assert.Contains(t, out, `"symbol":120`)
}

func TestEngine_PublishMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	e, err := New(Config{Tree: dynrle.Options{BlockCapacity: 4, BottomFanout: 4, NodeFanout: 4}}, WithMetrics(reg))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		e.Extend(byte('a' + rng.Intn(4)))
	}
	e.PublishMetrics()
	e.PublishMetrics()

	var out bytes.Buffer
	require.NoError(t, reg.WriteText(&out))
	assert.Contains(t, out.String(), "rlbwt_symbols_inserted_total 500")
	assert.Contains(t, out.String(), "rlbwt_length_symbols 500")

	blocks, _ := e.tree.Splits()
	assert.Contains(t, out.String(), `rlbwt_splits_total{kind="block"} `+strconv.FormatUint(blocks, 10))
}

func TestEngine_StatsAndMemory(t *testing.T) {
	e := build(t, bytes.Repeat([]byte("acgt"), 200))
	st := e.Stats()

	assert.Equal(t, uint64(800), st.Length)
	assert.Equal(t, uint64(801), st.LenWithEm)
	assert.Equal(t, e.Runs(), st.Runs)
	assert.Equal(t, sampling.NameRunHead, st.Sampler)
	assert.Equal(t, e.MemBytes(), st.MemBytes)
	assert.Greater(t, st.MemBytes, uint64(0))
}

func TestEngine_WriteDebug(t *testing.T) {
	e := build(t, []byte("aab"))
	var buf bytes.Buffer
	require.NoError(t, e.WriteDebug(&buf))

	out := buf.String()
	assert.Contains(t, out, "len=3 em=")
	assert.Contains(t, out, "'a'")
	assert.Contains(t, out, "head=")
}

func TestEngineError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "with index and context",
			err:      NewError("Load").Run(4).Context("zero length").Cause(ErrCorrupt).Err(),
			expected: "Load run 4 (zero length): dynrle: corrupt structure",
		},
		{
			name:     "with index",
			err:      NewError("WriteBWT").Row(9).Cause(errors.New("disk full")).Err(),
			expected: "WriteBWT row 9: disk full",
		},
		{
			name:     "with context",
			err:      NewError("Load").Header().Context("length").Cause(ErrBadFormat).Err(),
			expected: "Load header (length): unrecognized BWT export format",
		},
		{
			name:     "minimal",
			err:      NewError("WriteBWT").Entity("snappy block").Cause(errors.New("closed")).Err(),
			expected: "WriteBWT snappy block: closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}

	err := NewError("Load").Header().Cause(ErrBadFormat).Build()
	assert.True(t, errors.Is(err, ErrBadFormat))
	assert.True(t, IsBadFormat(err))
	assert.False(t, err.Is(nil))
	assert.Equal(t, ErrBadFormat, errors.Unwrap(err))
}

func TestEngine_ForEachRunCountsMarkerRow(t *testing.T) {
	e := build(t, []byte("banana"))

	var spans []RunSpan
	e.ForEachRun(func(r RunSpan) bool {
		spans = append(spans, r)
		return true
	})
	require.Len(t, spans, 3)
	assert.Equal(t, [3]uint64{'b', 0, 0}, [3]uint64{uint64(spans[0].Sym), spans[0].FirstRow, spans[0].LastRow})
	assert.Equal(t, [3]uint64{'n', 1, 2}, [3]uint64{uint64(spans[1].Sym), spans[1].FirstRow, spans[1].LastRow})
	assert.Equal(t, [3]uint64{'a', 4, 6}, [3]uint64{uint64(spans[2].Sym), spans[2].FirstRow, spans[2].LastRow})
	assert.True(t, spans[0].HasHead)

	var seen int
	e.ForEachRun(func(RunSpan) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)

	assert.Equal(t, "'a'", SymbolName('a'))
	assert.Equal(t, "0x01", SymbolName(1))
}
