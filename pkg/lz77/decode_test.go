package lz77

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_OverlappingCopy(t *testing.T) {
	out, err := Decode([]Factor{{0, 0, 'a'}, {0, 0, 'b'}, {0, 5, 'c'}})
	require.NoError(t, err)
	assert.Equal(t, "abababac", string(out))
}

func TestDecode_RejectsBadSource(t *testing.T) {
	_, err := Decode([]Factor{{0, 0, 'a'}, {1, 1, 'b'}})
	assert.ErrorIs(t, err, ErrBadFactor)

	_, err = Decode([]Factor{{3, 2, 'a'}})
	assert.ErrorIs(t, err, ErrBadFactor)

	// A zero-length copy never reads its offset.
	out, err := Decode([]Factor{{99, 0, 'a'}})
	require.NoError(t, err)
	assert.Equal(t, "a", string(out))
}

func TestDecodeStream_Large(t *testing.T) {
	text := bytes.Repeat([]byte("online lz77 over a run-length bwt\n"), 600)

	var enc bytes.Buffer
	w, err := NewWriter(&enc, 64)
	require.NoError(t, err)
	st, err := FactorizeTo(text, w)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, uint64(len(text)), st.Input)

	var out bytes.Buffer
	n, err := DecodeStream(&enc, &out, 64)
	require.NoError(t, err)
	assert.Equal(t, int64(len(text)), n)
	assert.True(t, bytes.Equal(text, out.Bytes()))
}

func TestDecodeStream_Errors(t *testing.T) {
	_, err := DecodeStream(bytes.NewReader(nil), &bytes.Buffer{}, 12)
	assert.ErrorIs(t, err, ErrWidth)

	var enc bytes.Buffer
	w, err := NewWriter(&enc, 32)
	require.NoError(t, err)
	require.NoError(t, w.Emit(Factor{4, 4, 'x'}))
	require.NoError(t, w.Close())
	_, err = DecodeStream(&enc, &bytes.Buffer{}, 32)
	assert.ErrorIs(t, err, ErrBadFactor)
}
