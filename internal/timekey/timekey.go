// Package timekey normalizes arbitrary date inputs into date-only keys
// under the administrative timezone, so that "today" and "this day" do not
// shift with the device's locale.
package timekey

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const adminZoneName = "Asia/Manila"

var (
	adminOnce sync.Once
	adminLoc  *time.Location
)

// AdminLocation returns the fixed administrative timezone. Falls back to a
// fixed +08:00 offset when the host has no tzdata, which keeps day keys
// deterministic either way.
func AdminLocation() *time.Location {
	adminOnce.Do(func() {
		loc, err := time.LoadLocation(adminZoneName)
		if err != nil {
			loc = time.FixedZone("PHT", 8*60*60)
		}
		adminLoc = loc
	})
	return adminLoc
}

// DayKey identifies a single calendar day in the administrative timezone.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime resolves an instant to the wall-clock date it falls on in the
// administrative timezone.
func FromTime(t time.Time) DayKey {
	local := t.In(AdminLocation())
	return DayKey{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// Time returns midnight of the day in the administrative timezone.
func (k DayKey) Time() time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, AdminLocation())
}

// Compare orders day keys chronologically: -1, 0, or 1.
func (k DayKey) Compare(other DayKey) int {
	switch {
	case k.Year != other.Year:
		return sign(k.Year - other.Year)
	case k.Month != other.Month:
		return sign(int(k.Month) - int(other.Month))
	default:
		return sign(k.Day - other.Day)
	}
}

func (k DayKey) Before(other DayKey) bool { return k.Compare(other) < 0 }

func (k DayKey) After(other DayKey) bool { return k.Compare(other) > 0 }

func (k DayKey) IsZero() bool { return k == DayKey{} }

// AddDays returns the key n days later, normalizing across month and year
// boundaries.
func (k DayKey) AddDays(n int) DayKey {
	t := time.Date(k.Year, k.Month, k.Day+n, 0, 0, 0, 0, time.UTC)
	return DayKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// MonthOf projects the day key onto its (year, month) bucket.
func (k DayKey) MonthOf() MonthKey {
	return MonthKey{Year: k.Year, Month: k.Month}
}

func (k DayKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *DayKey) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	parsed, err := time.Parse("2006-01-02", text)
	if err != nil {
		return fmt.Errorf("parse day key %q: %w", text, err)
	}
	*k = DayKey{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}
	return nil
}

// MonthKey identifies a (year, month) cache bucket.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Add returns the month key n months away, normalizing across years.
func (m MonthKey) Add(n int) MonthKey {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// FirstDay returns the first-of-month day key.
func (m MonthKey) FirstDay() DayKey {
	return DayKey{Year: m.Year, Month: m.Month, Day: 1}
}

// LastDay returns the last-of-month day key.
func (m MonthKey) LastDay() DayKey {
	return m.Add(1).FirstDay().AddDays(-1)
}

func (m MonthKey) Compare(other MonthKey) int {
	if m.Year != other.Year {
		return sign(m.Year - other.Year)
	}
	return sign(int(m.Month) - int(other.Month))
}

// ParseMonthKey accepts "2006-01" style input.
func ParseMonthKey(raw string) (MonthKey, error) {
	parsed, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return MonthKey{}, fmt.Errorf("parse month %q: %w", raw, err)
	}
	return MonthKey{Year: parsed.Year(), Month: parsed.Month()}, nil
}

// zonedLayouts carry timezone information, so the instant is resolved into
// the administrative timezone before taking its date. dateLayouts are naive
// wall dates and are taken literally.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// Parse resolves a loosely formatted date string into a day key. Accepted
// shapes: ISO-8601 (with or without zone), dd/mm/yyyy, and "<Month> d, yyyy"
// with an optional comma. Returns false for anything else; callers must
// exclude such records from date-based queries rather than substitute today.
func Parse(raw string) (DayKey, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return DayKey{}, false
	}

	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return FromTime(parsed), true
		}
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return DayKey{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}, true
		}
	}

	// Bare "Z" datetimes without offset digits slip through RFC3339 when
	// fractional seconds are malformed; one best-effort UTC pass.
	if strings.HasSuffix(text, "Z") {
		trimmed := strings.TrimSuffix(text, "Z")
		if parsed, err := time.Parse("2006-01-02T15:04:05.999999999", trimmed); err == nil {
			return FromTime(parsed.UTC()), true
		}
	}

	return DayKey{}, false
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
