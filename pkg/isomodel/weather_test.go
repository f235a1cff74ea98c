package isomodel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chrissnell/isomodel/pkg/epw"
	"github.com/chrissnell/isomodel/pkg/epw/epwtest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func syntheticWeather(t *testing.T) *WeatherData {
	t.Helper()
	data, err := epw.FromBlock(epwtest.Block())
	require.NoError(t, err)
	return NewWeatherData(data)
}

func TestISODataRoundTrip(t *testing.T) {
	w := syntheticWeather(t)

	var buf bytes.Buffer
	require.NoError(t, w.WriteISOData(&buf))

	got, err := ParseISOData(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(w.Mdbt, got.Mdbt); diff != "" {
		t.Errorf("mdbt mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(w.Mwind, got.Mwind); diff != "" {
		t.Errorf("mwind mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(w.MEgh, got.MEgh); diff != "" {
		t.Errorf("mEgh mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, mat.Equal(w.MHdbt, got.MHdbt), "hdbt")
	assert.True(t, mat.Equal(w.MHEgh, got.MHEgh), "hEgh")
	assert.True(t, mat.Equal(w.MSolar, got.MSolar), "solar")
}

func TestParseISODataLenient(t *testing.T) {
	in := strings.Join([]string{
		"# generated by hand",
		"mdbt",
		"0,-3.5",
		"1,-1.25",
		"",
		"pressure",
		"0,101325",
		"solar",
		"0,1,2,3",
	}, "\n")

	w, err := ParseISOData(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, -3.5, w.Mdbt[0])
	assert.Equal(t, -1.25, w.Mdbt[1])
	assert.Equal(t, 0.0, w.Mdbt[2])
	assert.Equal(t, []float64{1, 2, 3, 0, 0, 0, 0, 0}, w.MSolar.RawRowView(0))
}

func TestParseISODataBadNumber(t *testing.T) {
	_, err := ParseISOData(strings.NewReader("mdbt\n0,warm\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
