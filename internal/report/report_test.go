package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/chrissnell/isomodel/pkg/isomodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(scale float64) []isomodel.EndUses {
	out := make([]isomodel.EndUses, 12)
	for i := range out {
		out[i].Set(isomodel.ElecCool, scale*float64(i))
		out[i].Set(isomodel.GasHeat, scale*float64(12-i))
	}
	return out
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "Month", sample(1)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Equal(t, "Month", records[0][0])
	assert.Equal(t, "ElecHeat", records[0][1])
	assert.Equal(t, "GasDHW", records[0][13])
	assert.Equal(t, "3", records[3][0])
	assert.Equal(t, "2.000000", records[3][2])
}

func TestWriteScript(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScript(&buf, sample(1), isomodel.ElecCool))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "0", lines[0])
	assert.Equal(t, "11", lines[11])
	// 66 cooling plus 78 heating.
	assert.Equal(t, "144", lines[12])
}

func TestWriteComparison(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{FormatCSV, []string{"Month,EndUse,Monthly,Hourly,Difference", "2,ElecCool,1.000000,2.000000,-1.000000"}},
		{FormatMarkdown, []string{"## ElecCool", "| 2 | 1.000000 | 2.000000 | -1.000000 |", "| **Total** | 66.000000 | 132.000000 | -66.000000 |"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteComparison(&buf, tt.format, sample(1), sample(2)))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}

	var buf bytes.Buffer
	assert.Error(t, WriteComparison(&buf, "html", sample(1), sample(1)))
	assert.Error(t, WriteComparison(&buf, FormatCSV, sample(1), sample(1)[:3]))
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(sample(1), sample(2))
	require.NoError(t, err)
	require.Len(t, s, int(isomodel.NumEndUses))

	cool := s[isomodel.ElecCool]
	assert.Equal(t, 66.0, cool.MonthlyTotal)
	assert.Equal(t, 132.0, cool.HourlyTotal)
	assert.Equal(t, 11.0, cool.MaxAbsDiff)
	assert.InDelta(t, 5.5, cool.MeanAbsDiff, 1e-12)
	assert.Equal(t, 0.0, s[isomodel.ElecHeat].MaxAbsDiff)
}
