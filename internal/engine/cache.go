package engine

import (
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

// Window is the contiguous month span a single fetch covers.
type Window struct {
	From timekey.MonthKey
	To   timekey.MonthKey
}

// Bounds returns the instants a calendar query for the window spans:
// midnight on the first day of From through the end of the last day of To,
// in the administrative timezone.
func (w Window) Bounds() (start, end time.Time) {
	start = w.From.FirstDay().Time()
	end = w.To.Add(1).FirstDay().Time().Add(-time.Second)
	return start, end
}

// Months enumerates every month key the window covers, ascending.
func (w Window) Months() []timekey.MonthKey {
	months := make([]timekey.MonthKey, 0, 8)
	for m := w.From; m.Compare(w.To) <= 0; m = m.Add(1) {
		months = append(months, m)
	}
	return months
}

// planWindow buffers the target month on both sides so adjacent-month
// navigation is normally servable from cache without a new round trip.
func planWindow(target timekey.MonthKey, bufferMonths int) Window {
	if bufferMonths < 0 {
		bufferMonths = 0
	}
	return Window{From: target.Add(-bufferMonths), To: target.Add(bufferMonths)}
}

type bucket struct {
	loaded      bool
	lastFetchAt time.Time
}

// monthCache tracks which (year, month) buckets already have data. Buckets
// are created on the first fetch attempt and never deleted during a
// session.
type monthCache struct {
	buckets map[timekey.MonthKey]*bucket
}

func newMonthCache() *monthCache {
	return &monthCache{buckets: make(map[timekey.MonthKey]*bucket)}
}

func (c *monthCache) bucketFor(key timekey.MonthKey) *bucket {
	b, ok := c.buckets[key]
	if !ok {
		b = &bucket{}
		c.buckets[key] = b
	}
	return b
}

// needsFetch is false only for an unforced request against an
// already-loaded bucket.
func (c *monthCache) needsFetch(target timekey.MonthKey, force bool) bool {
	if force {
		return true
	}
	b, ok := c.buckets[target]
	return !ok || !b.loaded
}

// cooldownAllows gates repeated refreshes of the same bucket: a fetch is
// allowed when forced, on the first attempt, or once the cooldown has
// elapsed since the last attempt.
func (c *monthCache) cooldownAllows(target timekey.MonthKey, now time.Time, cooldown time.Duration, force bool) bool {
	if force {
		return true
	}
	b, ok := c.buckets[target]
	if !ok || b.lastFetchAt.IsZero() {
		return true
	}
	return now.Sub(b.lastFetchAt) >= cooldown
}

// markAttempt stamps the fetch attempt, creating the bucket if needed.
func (c *monthCache) markAttempt(target timekey.MonthKey, now time.Time) {
	c.bucketFor(target).lastFetchAt = now
}

// recordLoaded marks every bucket the window covers as loaded.
func (c *monthCache) recordLoaded(w Window, now time.Time) {
	for _, key := range w.Months() {
		b := c.bucketFor(key)
		b.loaded = true
		if b.lastFetchAt.IsZero() {
			b.lastFetchAt = now
		}
	}
}

// invalidate clears the loaded flags so every month is refetched on next
// request. Attempt timestamps survive so the cooldown still applies.
func (c *monthCache) invalidate() {
	for _, b := range c.buckets {
		b.loaded = false
	}
}
