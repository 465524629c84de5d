package rlbwt

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rlbwt/pkg/sampling"
)

func randomText(rng *rand.Rand, n, alphabet int) []byte {
	text := make([]byte, n)
	for i := range text {
		text[i] = byte('a' + rng.Intn(alphabet))
	}
	return text
}

func TestWriteBWT_Expanded(t *testing.T) {
	e := build(t, []byte("banana"))
	var buf bytes.Buffer
	n, err := e.WriteBWT(&buf, FormatExpanded)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "bnn$aaa", buf.String())
}

func TestWriteBWT_ExpandedLarge(t *testing.T) {
	// Longer than one pooled chunk.
	rng := rand.New(rand.NewSource(5))
	text := randomText(rng, 10000, 4)
	e := build(t, text)

	var buf bytes.Buffer
	n, err := e.WriteBWT(&buf, FormatExpanded)
	require.NoError(t, err)
	assert.Equal(t, int64(len(text)+1), n)

	want := referenceBWT(text)
	got := buf.Bytes()
	require.Len(t, got, len(want))
	for i, c := range want {
		if c < 0 {
			require.Equal(t, byte(ExpandedEmByte), got[i], "row %d", i)
			continue
		}
		require.Equal(t, byte(c), got[i], "row %d", i)
	}
}

func TestWriteBWT_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	texts := [][]byte{
		nil,
		[]byte("a"),
		[]byte("mississippi"),
		randomText(rng, 5000, 3),
		bytes.Repeat([]byte{0, 255}, 700),
	}

	for _, format := range []Format{FormatRuns, FormatRunsSnappy} {
		for _, text := range texts {
			t.Run(format.String(), func(t *testing.T) {
				e := build(t, text)
				var buf bytes.Buffer
				n, err := e.WriteBWT(&buf, format)
				require.NoError(t, err)
				assert.Equal(t, int64(buf.Len()), n)

				loaded, err := Load(&buf, DefaultConfig())
				require.NoError(t, err)
				require.NoError(t, loaded.Check())

				assert.Equal(t, e.Len(), loaded.Len())
				assert.Equal(t, e.EmPos(), loaded.EmPos())
				assert.Equal(t, e.Runs(), loaded.Runs())
				assert.Equal(t, engineBWT(e), engineBWT(loaded))
				assert.Equal(t, sampling.NameNull, loaded.Sampler().Name())

				// A loaded engine keeps growing as a plain BWT.
				loaded.Extend('q')
				assert.Equal(t, referenceBWT(append(append([]byte{}, text...), 'q')), engineBWT(loaded))
			})
		}
	}
}

func TestWriteBWT_UnknownFormat(t *testing.T) {
	e := build(t, []byte("x"))
	_, err := e.WriteBWT(&bytes.Buffer{}, Format(42))
	assert.ErrorIs(t, err, ErrBadFormat)
}

type failingWriter struct{ after int }

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("sink closed")
	}
	f.after--
	return len(p), nil
}

func TestWriteBWT_WriterErrors(t *testing.T) {
	e := build(t, []byte("abcabcabc"))
	for _, format := range []Format{FormatRuns, FormatRunsSnappy, FormatExpanded} {
		_, err := e.WriteBWT(&failingWriter{}, format)
		require.Error(t, err, format.String())
		var ee *EngineError
		assert.ErrorAs(t, err, &ee)
		assert.Equal(t, "WriteBWT", ee.Op)
	}
}

func TestLoad_Rejects(t *testing.T) {
	e := build(t, []byte("abracadabra"))
	var good bytes.Buffer
	_, err := e.WriteBWT(&good, FormatRuns)
	require.NoError(t, err)
	raw := good.Bytes()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrBadFormat},
		{"magic", append([]byte("NOPE"), raw[4:]...), ErrBadFormat},
		{"version", append(append([]byte{}, raw[:4]...), append([]byte{9}, raw[5:]...)...), ErrBadFormat},
		{"truncated", raw[:len(raw)-1], ErrBadFormat},
		{"zero run", []byte{'R', 'L', 'B', 'W', 1, 1, 0, 1, 'a', 0}, ErrCorrupt},
		{"marker past end", []byte{'R', 'L', 'B', 'W', 1, 1, 2, 1, 'a', 1}, ErrCorrupt},
		{"length mismatch", []byte{'R', 'L', 'B', 'W', 1, 3, 0, 1, 'a', 2}, ErrCorrupt},
		{"adjacent runs merge", []byte{'R', 'L', 'B', 'W', 1, 2, 0, 2, 'a', 1, 'a', 1}, ErrCorrupt},
		{"snappy garbage", []byte{'R', 'L', 'B', 'S', 1, 3, 0xff, 0xff, 0xff}, ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(bytes.NewReader(tt.data), DefaultConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsBadFormat(err))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"runs", "snappy", "expanded"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.String())
	}
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatRuns, f)

	_, err = ParseFormat("tar")
	assert.ErrorIs(t, err, ErrBadFormat)
}
