package engine

import (
	"testing"
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

func TestPlanWindow(t *testing.T) {
	t.Parallel()

	window := planWindow(march(), 2)
	if window.From != (timekey.MonthKey{Year: 2025, Month: time.January}) {
		t.Fatalf("window from = %v", window.From)
	}
	if window.To != (timekey.MonthKey{Year: 2025, Month: time.May}) {
		t.Fatalf("window to = %v", window.To)
	}
	if months := window.Months(); len(months) != 5 {
		t.Fatalf("window covers %d months, want 5", len(months))
	}

	start, end := window.Bounds()
	if start.Month() != time.January || start.Day() != 1 || start.Hour() != 0 {
		t.Fatalf("window start = %v", start)
	}
	if end.Month() != time.May || end.Day() != 31 {
		t.Fatalf("window end = %v", end)
	}
}

func TestPlanWindow_CrossesYear(t *testing.T) {
	t.Parallel()

	window := planWindow(timekey.MonthKey{Year: 2025, Month: time.January}, 2)
	if window.From != (timekey.MonthKey{Year: 2024, Month: time.November}) {
		t.Fatalf("window from = %v", window.From)
	}
	if window.To != (timekey.MonthKey{Year: 2025, Month: time.March}) {
		t.Fatalf("window to = %v", window.To)
	}
}

func TestMonthCache_NeedsFetchAndRecordLoaded(t *testing.T) {
	t.Parallel()

	cache := newMonthCache()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	if !cache.needsFetch(march(), false) {
		t.Fatalf("fresh cache must need a fetch")
	}

	cache.recordLoaded(planWindow(march(), 2), now)
	for offset := -2; offset <= 2; offset++ {
		if cache.needsFetch(march().Add(offset), false) {
			t.Fatalf("month %v should be loaded", march().Add(offset))
		}
	}
	if !cache.needsFetch(march().Add(3), false) {
		t.Fatalf("month outside the window should still need a fetch")
	}
	if !cache.needsFetch(march(), true) {
		t.Fatalf("force always fetches")
	}
}

func TestMonthCache_Cooldown(t *testing.T) {
	t.Parallel()

	cache := newMonthCache()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	cooldown := 3 * time.Second

	if !cache.cooldownAllows(march(), now, cooldown, false) {
		t.Fatalf("first attempt is always allowed")
	}
	cache.markAttempt(march(), now)

	if cache.cooldownAllows(march(), now.Add(time.Second), cooldown, false) {
		t.Fatalf("attempt inside cooldown must be gated")
	}
	if !cache.cooldownAllows(march(), now.Add(cooldown), cooldown, false) {
		t.Fatalf("attempt at cooldown boundary is allowed")
	}
	if !cache.cooldownAllows(march(), now.Add(time.Second), cooldown, true) {
		t.Fatalf("force bypasses the cooldown")
	}
}

func TestMonthCache_Invalidate(t *testing.T) {
	t.Parallel()

	cache := newMonthCache()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	cache.recordLoaded(planWindow(march(), 0), now)

	cache.invalidate()
	if !cache.needsFetch(march(), false) {
		t.Fatalf("invalidated bucket must fetch again")
	}
	if cache.cooldownAllows(march(), now.Add(time.Second), 3*time.Second, false) {
		t.Fatalf("attempt timestamps survive invalidation")
	}
}
