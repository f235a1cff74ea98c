package timeframe

import "testing"

func TestFrameLookups(t *testing.T) {
	f := New()

	tests := []struct {
		name       string
		hour       int
		wantHour   int
		wantYTD    int
		wantDOW    int
		wantMonth  int
		wantDayMon int
	}{
		{"first hour", 0, 0, 0, 0, 1, 1},
		{"end of first day", 23, 23, 0, 0, 1, 1},
		{"start of day two", 24, 0, 1, 1, 1, 2},
		{"last hour of January", 743, 23, 30, 2, 1, 31},
		{"first hour of February", 744, 0, 31, 3, 2, 1},
		{"last day of February", 1415, 23, 58, 2, 2, 28},
		{"first of March", 1416, 0, 59, 3, 3, 1},
		{"mid year", 4344, 0, 181, 6, 7, 1},
		{"last hour of the year", 8759, 23, 364, 0, 12, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Hour[tt.hour]; got != tt.wantHour {
				t.Errorf("Hour[%d] = %d, want %d", tt.hour, got, tt.wantHour)
			}
			if got := f.YTD[tt.hour]; got != tt.wantYTD {
				t.Errorf("YTD[%d] = %d, want %d", tt.hour, got, tt.wantYTD)
			}
			if got := f.DayOfWeek[tt.hour]; got != tt.wantDOW {
				t.Errorf("DayOfWeek[%d] = %d, want %d", tt.hour, got, tt.wantDOW)
			}
			if got := f.Month[tt.hour]; got != tt.wantMonth {
				t.Errorf("Month[%d] = %d, want %d", tt.hour, got, tt.wantMonth)
			}
			if got := f.DayOfMonth[tt.hour]; got != tt.wantDayMon {
				t.Errorf("DayOfMonth[%d] = %d, want %d", tt.hour, got, tt.wantDayMon)
			}
		})
	}
}

func TestMonthStartHourMatchesFrame(t *testing.T) {
	f := New()
	for m := 0; m < Months; m++ {
		start := MonthStartHour[m]
		if f.Month[start] != m+1 {
			t.Errorf("hour %d is in month %d, want %d", start, f.Month[start], m+1)
		}
		if start > 0 && f.Month[start-1] != m {
			t.Errorf("hour %d is in month %d, want %d", start-1, f.Month[start-1], m)
		}
		if got := (MonthStartHour[m+1] - start) / HoursPerDay; got != MonthLength(m+1) {
			t.Errorf("month %d spans %d days, want %d", m+1, got, MonthLength(m+1))
		}
	}
}

func TestMonthLength(t *testing.T) {
	total := 0
	for m := 1; m <= Months; m++ {
		total += MonthLength(m)
	}
	if total != DaysPerYear {
		t.Errorf("month lengths sum to %d, want %d", total, DaysPerYear)
	}
	if MonthLength(0) != 0 || MonthLength(13) != 0 {
		t.Error("expected zero for out-of-range months")
	}
}
