package textio

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllBytes(t *testing.T, in *Input) []byte {
	t.Helper()
	var out []byte
	for {
		c, err := in.ReadByte()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, c)
	}
}

func TestOpen_MappedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("mississippi\n"), 0o600))

	in, err := Open(path)
	require.NoError(t, err)
	defer in.Close()

	assert.True(t, in.Mapped())
	assert.Equal(t, 12, in.Len())
	assert.Equal(t, "mississippi\n", string(readAllBytes(t, in)))

	all, err := in.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mississippi\n", string(all))
}

func TestOpen_EmptyFileIsNotMapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	in, err := Open(path)
	require.NoError(t, err)
	defer in.Close()

	assert.False(t, in.Mapped())
	assert.Equal(t, 0, in.Len())
	_, err = in.ReadByte()
	assert.Equal(t, io.EOF, err)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInput_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.bin")
	data := []byte(strings.Repeat("acgt", 3000))
	require.NoError(t, os.WriteFile(path, data, 0o600))

	for _, open := range []func() (*Input, error){
		func() (*Input, error) { return Open(path) },
		func() (*Input, error) { return FromBytes(data), nil },
	} {
		in, err := open()
		require.NoError(t, err)
		got, err := io.ReadAll(in)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		require.NoError(t, in.Close())
	}
}

func TestRemapper(t *testing.T) {
	tests := []struct {
		name    string
		mode    NewlineMode
		in      string
		want    string
		records uint64
		err     error
	}{
		{"none keeps newlines", NewlineNone, "a\nb\n\x00", "a\nb\n\x00", 0, nil},
		{"zero", NewlineZero, "ab\ncd\n", "ab\x00cd\x00", 2, nil},
		{"one", NewlineOne, "ab\ncd\n", "ab\x01cd\x01", 2, nil},
		{"zero collides", NewlineZero, "a\x00b", "", 0, ErrAlphabet},
		{"one collides", NewlineOne, "a\nb\x01", "", 1, ErrAlphabet},
		{"one accepts zero bytes", NewlineOne, "\x00\n", "\x00\x01", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRemapper(tt.mode)
			buf := []byte(tt.in)
			err := r.MapAll(buf)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, tt.records, r.Records())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(buf))
			assert.Equal(t, tt.records, r.Records())
		})
	}
}

func TestRemapper_ErrorOffset(t *testing.T) {
	r := NewRemapper(NewlineZero)
	err := r.MapAll([]byte("abc\x00"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 3")
}

func TestParseNewlineMode(t *testing.T) {
	for in, want := range map[string]NewlineMode{"": NewlineNone, "none": NewlineNone, "zero": NewlineZero, "one": NewlineOne} {
		got, err := ParseNewlineMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseNewlineMode("crlf")
	assert.Error(t, err)

	s, on := NewRemapper(NewlineOne).Sentinel()
	assert.Equal(t, byte(1), s)
	assert.True(t, on)
	_, on = NewRemapper(NewlineNone).Sentinel()
	assert.False(t, on)
}

func TestLoadFASTA(t *testing.T) {
	in := ">seq1 first\nACGT\nAC\n\n>seq2\r\n  GGTT  \r\n; comment\n>empty\n"
	f, err := LoadFASTA(strings.NewReader(in), DefaultTerminator)
	require.NoError(t, err)

	assert.Equal(t, 3, f.Records)
	assert.Equal(t, "ACGTAC\x01GGTT\x01\x01", string(f.Text))
	assert.Equal(t, len(f.Text), f.Symbols())
	assert.Equal(t, byte(DefaultTerminator), f.Terminator)
}

func TestLoadFASTA_Errors(t *testing.T) {
	_, err := LoadFASTA(strings.NewReader("ACGT\n>x\nAC\n"), DefaultTerminator)
	assert.ErrorIs(t, err, ErrFASTA)

	_, err = LoadFASTA(strings.NewReader(">x\nAC\x01GT\n"), DefaultTerminator)
	assert.ErrorIs(t, err, ErrAlphabet)

	f, err := LoadFASTA(strings.NewReader(""), DefaultTerminator)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Records)
	assert.Empty(t, f.Text)
}
