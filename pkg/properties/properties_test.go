package properties

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `# comment line
weatherFilePath = ORD.epw
terrainClass = 0.8

	buildingHeight=6.33
occupancyHourLast = 17
wallU = 2.1, 234.3, 12.3
`

func TestReadFixture(t *testing.T) {
	p := New()
	require.NoError(t, p.Read(strings.NewReader(fixture), "fixture.ism"))

	assert.Equal(t, 5, p.Len())

	v, ok := p.Get("weatherFilePath")
	require.True(t, ok)
	assert.Equal(t, "ORD.epw", v)

	f, err := p.Float("TERRAINCLASS")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, f, 1e-12)

	f, err = p.Float("buildingheight")
	require.NoError(t, err)
	assert.InDelta(t, 6.33, f, 1e-12)

	n, err := p.Int("occupancyHourLast")
	require.NoError(t, err)
	assert.Equal(t, 17, n)

	vec, err := p.FloatSlice("wallU")
	require.NoError(t, err)
	assert.Equal(t, []float64{2.1, 234.3, 12.3}, vec)
}

func TestFirstValueWins(t *testing.T) {
	dir := t.TempDir()
	building := filepath.Join(dir, "building.ism")
	defaults := filepath.Join(dir, "defaults.ism")
	require.NoError(t, os.WriteFile(building, []byte("terrainClass = 0.9\nterrainclass = 0.1\n"), 0o644))
	require.NoError(t, os.WriteFile(defaults, []byte("TerrainClass = 0.5\nfloorArea = 100\n"), 0o644))

	p, err := Load(building, defaults)
	require.NoError(t, err)

	f, err := p.Float("terrainClass")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, f, 1e-12)
	assert.True(t, p.Contains("FLOORAREA"))
	assert.Equal(t, []string{"floorarea", "terrainclass"}, p.Keys())
}

func TestPutOverwrites(t *testing.T) {
	p := New()
	p.Put("Key", "a")
	p.Put("KEY", "b")
	v, _ := p.Get("key")
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, p.Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		msg   string
	}{
		{name: "no equals", input: "a = 1\njunk\n", line: 2, msg: "Invalid format"},
		{name: "empty key", input: " = 1\n", line: 1, msg: "Missing property key"},
		{name: "empty value", input: "# c\n\nkey =  \t\n", line: 3, msg: "Missing property value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Read(strings.NewReader(tt.input), "bad.ism")
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, "bad.ism", perr.File)
			assert.Equal(t, tt.msg, perr.Msg)
		})
	}
}

func TestTypedGetterErrors(t *testing.T) {
	p := New()
	p.Put("notanumber", "abc")
	p.Put("flag", "Yes")
	p.Put("badvec", "1, x, 3")

	_, err := p.Float("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = p.Float("notanumber")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notanumber cannot be converted to a double")

	b, err := p.Bool("flag")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = p.Bool("notanumber")
	assert.Error(t, err)

	_, err = p.FloatSlice("badvec")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ism"))
	assert.Error(t, err)
}
