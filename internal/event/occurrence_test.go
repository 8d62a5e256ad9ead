package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

func day(y int, m time.Month, d int) timekey.DayKey {
	return timekey.DayKey{Year: y, Month: m, Day: d}
}

func TestRangeOccurrence_InclusiveBothEnds(t *testing.T) {
	t.Parallel()

	start := day(2025, time.March, 10)
	end := day(2025, time.March, 12)
	rng, err := RangeOccurrence(start, end)
	if err != nil {
		t.Fatalf("range: %v", err)
	}

	if rng.OccursOn(start.AddDays(-1)) {
		t.Fatalf("day before start should not occur")
	}
	for d := start; !d.After(end); d = d.AddDays(1) {
		if !rng.OccursOn(d) {
			t.Fatalf("day %v inside range should occur", d)
		}
	}
	if rng.OccursOn(end.AddDays(1)) {
		t.Fatalf("day after end should not occur")
	}
}

func TestRangeOccurrence_RejectsInverted(t *testing.T) {
	t.Parallel()

	if _, err := RangeOccurrence(day(2025, time.March, 12), day(2025, time.March, 10)); err == nil {
		t.Fatalf("inverted range must be rejected, not repaired")
	}
}

func TestPeriodOccurrence_NeverAnswersDayQueries(t *testing.T) {
	t.Parallel()

	period := PeriodOccurrence(2025, time.March)
	if period.OccursOn(day(2025, time.March, 15)) {
		t.Fatalf("period must not occur on any day")
	}
	if !period.OccursInMonth(timekey.MonthKey{Year: 2025, Month: time.March}) {
		t.Fatalf("period should match its own month")
	}
	if period.OccursInMonth(timekey.MonthKey{Year: 2025, Month: time.April}) {
		t.Fatalf("period should not match another month")
	}
}

func TestOccursInMonth_RangeSpanningBoundary(t *testing.T) {
	t.Parallel()

	rng, err := RangeOccurrence(day(2025, time.March, 30), day(2025, time.April, 2))
	if err != nil {
		t.Fatalf("range: %v", err)
	}

	tests := []struct {
		month timekey.MonthKey
		want  bool
	}{
		{timekey.MonthKey{Year: 2025, Month: time.February}, false},
		{timekey.MonthKey{Year: 2025, Month: time.March}, true},
		{timekey.MonthKey{Year: 2025, Month: time.April}, true},
		{timekey.MonthKey{Year: 2025, Month: time.May}, false},
	}
	for _, tc := range tests {
		if got := rng.OccursInMonth(tc.month); got != tc.want {
			t.Fatalf("OccursInMonth(%v) = %v, want %v", tc.month, got, tc.want)
		}
	}
}

func TestOccurrence_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	rng, _ := RangeOccurrence(day(2025, time.March, 30), day(2025, time.April, 2))
	occurrences := []Occurrence{
		DayOccurrence(day(2025, time.March, 15)),
		rng,
		PeriodOccurrence(2025, time.June),
	}

	for _, original := range occurrences {
		encoded, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("marshal %v: %v", original.Kind, err)
		}
		var decoded Occurrence
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			t.Fatalf("unmarshal %v: %v", original.Kind, err)
		}
		if decoded != original {
			t.Fatalf("round trip mismatch: %+v != %+v", decoded, original)
		}
	}
}
