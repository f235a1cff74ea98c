package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/isomodel/pkg/epw/epwtest"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"building.ism", "defaults.ism"} {
		b, err := os.ReadFile(filepath.Join("..", "..", "pkg", "isomodel", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
	epwtest.Write(t, filepath.Join(dir, "synthetic.epw"))

	var out bytes.Buffer
	require.NoError(t, run(&out, filepath.Join(dir, "building.ism"), filepath.Join(dir, "defaults.ism")))

	// Monthly electric cooling and total, then the hourly-by-month ones.
	want := []float64{
		0.000315, 0.000896, 0.010904, 0.231906, 1.386344, 2.261904,
		2.669732, 2.324759, 1.280941, 0.161851, 0.004806, 0.000510,
		139.283613,
		0, 0, 0, 0.188849, 1.776686, 3.020252,
		3.516996, 3.215447, 1.783618, 0.299527, 0, 0,
		160.899928,
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(want))
	for i, l := range lines {
		v, err := strconv.ParseFloat(l, 64)
		require.NoError(t, err, l)
		assert.InDelta(t, want[i], v, 1e-3, "line %d", i+1)
	}
}

func TestRunMissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(&out, filepath.Join(t.TempDir(), "none.ism"), "defaults.ism"))
	assert.Empty(t, out.String())
}
