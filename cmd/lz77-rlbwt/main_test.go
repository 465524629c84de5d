package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rlbwt/pkg/driver"
	"github.com/dd0wney/cluso-rlbwt/pkg/lz77"
)

func TestRun_RequiresInputAndOutput(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"--input", "x"},
		{"--output", "y"},
	} {
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), args, &stdout, &stderr)
		assert.ErrorIs(t, err, driver.ErrUsage, "%v", args)
		assert.Empty(t, stdout.String())
	}
}

func TestRun_FactorizesFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	output := filepath.Join(dir, "out.lz")
	metricsOut := filepath.Join(dir, "metrics.prom")
	text := []byte("abcabcabcx")
	require.NoError(t, os.WriteFile(input, text, 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"--input", input, "--output", output, "--width", "32", "--metrics-out", metricsOut,
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Number of factors z = 4")
	assert.Contains(t, stdout.String(), "Size of the structures (bits):")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	r, err := lz77.NewReader(f, 32)
	require.NoError(t, err)
	factors, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, lz77.Factor{Offset: 0, Length: 6, Literal: 'x'}, factors[3])

	decoded, err := lz77.Decode(factors)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)

	prom, err := os.ReadFile(metricsOut)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "lz77_factors_total 4")
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	err := run(context.Background(), []string{
		"--input", filepath.Join(dir, "missing"), "--output", filepath.Join(dir, "out"),
	}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
