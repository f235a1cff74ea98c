package database

import (
	"testing"
	"time"

	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/isomodel"
	"github.com/google/go-cmp/cmp"
)

func TestRunRecordRoundTrip(t *testing.T) {
	results := make([]isomodel.EndUses, 3)
	for i := range results {
		for j := range results[i] {
			results[i][j] = float64(i*100 + j)
		}
	}
	run := &types.Run{
		ID:        "abc",
		CreatedAt: time.Date(2026, time.March, 4, 5, 6, 7, 0, time.UTC),
		Duration:  42 * time.Millisecond,
		Mode:      types.ModeHourly,
		Building:  "b.ism",
		Location:  "Somewhere",
		Results:   results,
		Total:     isomodel.TotalEnergyUse(results),
	}

	rec := NewRunRecord(run)
	if len(rec.Periods) != 3 {
		t.Fatalf("got %d periods, want 3", len(rec.Periods))
	}
	if want := time.Date(2026, time.January, 1, 2, 0, 0, 0, time.UTC); !rec.Periods[2].Time.Equal(want) {
		t.Errorf("period 2 starts %v, want %v", rec.Periods[2].Time, want)
	}
	if got := rec.Periods[1].GasDHW; got != 112 {
		t.Errorf("GasDHW = %v, want 112", got)
	}

	if diff := cmp.Diff(run, rec.Run()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
