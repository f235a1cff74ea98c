package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/isomodel/internal/constants"
	"github.com/chrissnell/isomodel/pkg/epw/epwtest"
)

func fixtures(t *testing.T) (dir, building, defaults string) {
	t.Helper()
	dir = t.TempDir()
	for _, name := range []string{"building.ism", "defaults.ism"} {
		b, err := os.ReadFile(filepath.Join("..", "..", "pkg", "isomodel", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
	epwtest.Write(t, filepath.Join(dir, "synthetic.epw"))
	return dir, filepath.Join(dir, "building.ism"), filepath.Join(dir, "defaults.ism")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulateModes(t *testing.T) {
	_, building, defaults := fixtures(t)

	tests := []struct {
		name      string
		args      []string
		wantTitle []string
		wantLines int
	}{
		{"default monthly", []string{"-i", building, "-d", defaults}, []string{"Monthly Results:"}, 14},
		{"positional", []string{building, defaults}, []string{"Monthly Results:"}, 14},
		{"hourly by month", []string{"-i", building, "-d", defaults, "-b"}, []string{"Hourly results by month:"}, 14},
		{"monthly and hourly by month", []string{"-i", building, "-d", defaults, "-m", "-b"},
			[]string{"Monthly Results:", "Hourly results by month:"}, 28},
		{"hourly", []string{"-i", building, "-d", defaults, "-H"}, []string{"Hourly results by hour:"}, 8762},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			assert.Len(t, lines, tt.wantLines)
			for _, title := range tt.wantTitle {
				assert.Contains(t, lines, title)
			}
			assert.True(t, strings.HasPrefix(lines[1], "Month,ElecHeat") || strings.HasPrefix(lines[1], "Hour,ElecHeat"), lines[1])
		})
	}
}

func TestCompare(t *testing.T) {
	_, building, defaults := fixtures(t)

	out, err := execute(t, "-i", building, "-d", defaults, "-c", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Month,EndUse,Monthly,Hourly,Difference\n"))
	assert.NotContains(t, out, "Monthly Results:")

	out, err = execute(t, "-i", building, "-d", defaults, "-c", "md")
	require.NoError(t, err)
	assert.Contains(t, out, "## ElecCool")

	_, err = execute(t, "-i", building, "-d", defaults, "-c", "html")
	assert.Error(t, err)
}

func TestSimulateErrors(t *testing.T) {
	_, err := execute(t)
	assert.ErrorContains(t, err, "ism file is required")

	_, err = execute(t, "-i", filepath.Join(t.TempDir(), "absent.ism"))
	assert.Error(t, err)

	_, building, defaults := fixtures(t)
	_, err = execute(t, "-i", building, "-d", defaults, "--store", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("storage:\n  sqlite:\n    path: %s\n", filepath.Join(dir, "runs.db"))
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestStoreAndRuns(t *testing.T) {
	dir, building, defaults := fixtures(t)
	cfg := writeConfig(t, dir)

	_, err := execute(t, "--config", cfg, "-i", building, "-d", defaults, "--store")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "runs", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	id := regexp.MustCompile(`^[0-9a-f-]{36}`).FindString(lines[1])
	require.NotEmpty(t, id)

	out, err = execute(t, "--config", cfg, "runs", "show", id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Monthly Results:\nMonth,ElecHeat"))

	out, err = execute(t, "--config", cfg, "runs", "show", "--json", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+id+`"`)

	_, err = execute(t, "--config", cfg, "runs", "show", "missing")
	assert.Error(t, err)
}

func TestRunsWithoutStore(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("simulation:\n  mode: monthly\n"), 0o644))

	_, err := execute(t, "--config", cfg, "runs", "list")
	assert.ErrorIs(t, err, errNoStore)
}

func TestWeatherCommand(t *testing.T) {
	dir, _, _ := fixtures(t)

	out, err := execute(t, "weather", filepath.Join(dir, "synthetic.epw"))
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = execute(t, "weather")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "isomodel "+constants.Version+"\n", out)
}

func TestBadConfigBackend(t *testing.T) {
	_, building, defaults := fixtures(t)
	_, err := execute(t, "--config", "x", "--config-backend", "toml", "-i", building, "-d", defaults)
	assert.ErrorContains(t, err, "unsupported configuration backend")
}
