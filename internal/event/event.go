// Package event holds the unified event model shared by both backend
// sources, plus the normalization and merge steps that produce it.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

// SourceKind records which backend pipeline produced an event. It resolves
// back-references for detail views and contributes to identity; it never
// implies ownership.
type SourceKind string

const (
	SourcePost     SourceKind = "post"
	SourceCalendar SourceKind = "calendar"
)

// OccurrenceKind discriminates the temporal shape of an event.
type OccurrenceKind string

const (
	// OccurrenceDay is a single calendar day.
	OccurrenceDay OccurrenceKind = "day"
	// OccurrenceRange is an inclusive day range.
	OccurrenceRange OccurrenceKind = "range"
	// OccurrencePeriod is a coarse week/month placeholder. Periods never
	// answer day-level queries; they only contribute to month listings.
	OccurrencePeriod OccurrenceKind = "period"
)

// Occurrence is the tagged temporal shape of an event. Exactly the fields
// for its Kind are meaningful.
type Occurrence struct {
	Kind OccurrenceKind

	Day timekey.DayKey // Kind == OccurrenceDay

	Start timekey.DayKey // Kind == OccurrenceRange, inclusive
	End   timekey.DayKey // Kind == OccurrenceRange, inclusive

	Year  int        // Kind == OccurrencePeriod
	Month time.Month // Kind == OccurrencePeriod
}

// DayOccurrence builds a single-day occurrence.
func DayOccurrence(day timekey.DayKey) Occurrence {
	return Occurrence{Kind: OccurrenceDay, Day: day}
}

// RangeOccurrence builds an inclusive day range. A start after end is
// rejected rather than silently inverted.
func RangeOccurrence(start, end timekey.DayKey) (Occurrence, error) {
	if start.After(end) {
		return Occurrence{}, fmt.Errorf("range start %s after end %s", start, end)
	}
	return Occurrence{Kind: OccurrenceRange, Start: start, End: end}, nil
}

// PeriodOccurrence builds a month-granular placeholder.
func PeriodOccurrence(year int, month time.Month) Occurrence {
	return Occurrence{Kind: OccurrencePeriod, Year: year, Month: month}
}

// OccursOn reports whether the occurrence covers the given day. Periods are
// always false here; they are month-level only.
func (o Occurrence) OccursOn(day timekey.DayKey) bool {
	switch o.Kind {
	case OccurrenceDay:
		return o.Day == day
	case OccurrenceRange:
		return !day.Before(o.Start) && !day.After(o.End)
	default:
		return false
	}
}

// OccursInMonth reports whether any day of the occurrence falls in the
// given month, or for periods, whether the period is that month.
func (o Occurrence) OccursInMonth(month timekey.MonthKey) bool {
	switch o.Kind {
	case OccurrenceDay:
		return o.Day.MonthOf() == month
	case OccurrenceRange:
		return o.Start.MonthOf().Compare(month) <= 0 && o.End.MonthOf().Compare(month) >= 0
	case OccurrencePeriod:
		return o.Year == month.Year && o.Month == month.Month
	default:
		return false
	}
}

// StartDay returns the day the occurrence is listed under in grouped views:
// its own day for single days, the range start for ranges. Periods have no
// start day and return false.
func (o Occurrence) StartDay() (timekey.DayKey, bool) {
	switch o.Kind {
	case OccurrenceDay:
		return o.Day, true
	case OccurrenceRange:
		return o.Start, true
	default:
		return timekey.DayKey{}, false
	}
}

type occurrenceJSON struct {
	Kind  OccurrenceKind  `json:"kind"`
	Day   *timekey.DayKey `json:"day,omitempty"`
	Start *timekey.DayKey `json:"start,omitempty"`
	End   *timekey.DayKey `json:"end,omitempty"`
	Year  int             `json:"year,omitempty"`
	Month int             `json:"month,omitempty"`
}

func (o Occurrence) MarshalJSON() ([]byte, error) {
	out := occurrenceJSON{Kind: o.Kind}
	switch o.Kind {
	case OccurrenceDay:
		day := o.Day
		out.Day = &day
	case OccurrenceRange:
		start, end := o.Start, o.End
		out.Start = &start
		out.End = &end
	case OccurrencePeriod:
		out.Year = o.Year
		out.Month = int(o.Month)
	}
	return json.Marshal(out)
}

func (o *Occurrence) UnmarshalJSON(data []byte) error {
	var in occurrenceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	decoded := Occurrence{Kind: in.Kind}
	switch in.Kind {
	case OccurrenceDay:
		if in.Day == nil {
			return fmt.Errorf("day occurrence without day")
		}
		decoded.Day = *in.Day
	case OccurrenceRange:
		if in.Start == nil || in.End == nil {
			return fmt.Errorf("range occurrence without bounds")
		}
		decoded.Start = *in.Start
		decoded.End = *in.End
	case OccurrencePeriod:
		decoded.Year = in.Year
		decoded.Month = time.Month(in.Month)
	default:
		return fmt.Errorf("unknown occurrence kind %q", in.Kind)
	}
	*o = decoded
	return nil
}

// Unified is the engine's source-agnostic event representation.
type Unified struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Category   Category   `json:"category"`
	Occurrence Occurrence `json:"occurrence"`
	Source     SourceKind `json:"source"`

	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
	Pinned      bool   `json:"pinned,omitempty"`
	Urgent      bool   `json:"urgent,omitempty"`
}

// Identity is the merge key. No two events in the merged store share it.
func (e Unified) Identity() string {
	return string(e.Source) + "|" + e.ID
}
