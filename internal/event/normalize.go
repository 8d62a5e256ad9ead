package event

import (
	"strings"
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

const untitled = "Untitled"

const (
	dateTypeSingle = "single"
	dateTypeRange  = "date_range"
	dateTypeWeek   = "week"
	dateTypeMonth  = "month"
)

// importedPostSources are Source values that mark a post as a bulk/offline
// mirror of a calendar record.
var importedPostSources = map[string]struct{}{
	"calendar": {},
	"import":   {},
	"offline":  {},
}

// NormalizePost maps a raw announcement post onto the unified model.
// Returns false for records with no resolvable date and for posts that
// arrived through a bulk import pipeline.
func NormalizePost(raw RawPostEvent) (Unified, bool) {
	source := strings.ToLower(strings.TrimSpace(raw.Source))
	if _, imported := importedPostSources[source]; imported {
		return Unified{}, false
	}

	day, ok := firstParsableDate(raw.ISODate, raw.Date)
	if !ok {
		return Unified{}, false
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = derivedID(day, raw.Title)
	}

	return Unified{
		ID:          id,
		Title:       cleanTitle(raw.Title),
		Category:    ParseCategory(raw.Category),
		Occurrence:  DayOccurrence(day),
		Source:      SourcePost,
		Time:        strings.TrimSpace(raw.Time),
		Description: strings.TrimSpace(raw.Description),
		Pinned:      raw.IsPinned,
		Urgent:      raw.IsUrgent,
	}, true
}

// NormalizeCalendar maps a raw calendar-service record onto the unified
// model. Returns false when the record has no resolvable date and is not a
// valid period placeholder. Inverted ranges are dropped, not repaired.
func NormalizeCalendar(raw RawCalendarEvent) (Unified, bool) {
	occurrence, ok := calendarOccurrence(raw)
	if !ok {
		return Unified{}, false
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = strings.TrimSpace(raw.MongoID)
	}
	if id == "" {
		if start, hasStart := occurrence.StartDay(); hasStart {
			id = derivedID(start, raw.Title)
		} else {
			id = timekey.MonthKey{Year: occurrence.Year, Month: occurrence.Month}.String() + "|" + cleanTitle(raw.Title)
		}
	}

	return Unified{
		ID:          id,
		Title:       cleanTitle(raw.Title),
		Category:    ParseCategory(raw.Category),
		Occurrence:  occurrence,
		Source:      SourceCalendar,
		Time:        strings.TrimSpace(raw.Time),
		Description: strings.TrimSpace(raw.Description),
	}, true
}

func calendarOccurrence(raw RawCalendarEvent) (Occurrence, bool) {
	switch strings.ToLower(strings.TrimSpace(raw.DateType)) {
	case dateTypeRange:
		start, okStart := timekey.Parse(raw.StartDate)
		end, okEnd := timekey.Parse(raw.EndDate)
		if !okStart || !okEnd {
			return Occurrence{}, false
		}
		rng, err := RangeOccurrence(start, end)
		if err != nil {
			return Occurrence{}, false
		}
		return rng, true

	case dateTypeWeek, dateTypeMonth:
		// Week placeholders carry a week-of-month but still resolve at
		// month granularity for querying.
		if raw.Year <= 0 || raw.Month < 1 || raw.Month > 12 {
			return Occurrence{}, false
		}
		return PeriodOccurrence(raw.Year, time.Month(raw.Month)), true

	case "", dateTypeSingle:
		// Absent dateType means single date. Inferred from observed data,
		// not a confirmed backend contract.
		day, ok := firstParsableDate(raw.ISODate, raw.Date)
		if !ok {
			return Occurrence{}, false
		}
		return DayOccurrence(day), true

	default:
		return Occurrence{}, false
	}
}

func firstParsableDate(candidates ...string) (timekey.DayKey, bool) {
	for _, candidate := range candidates {
		if day, ok := timekey.Parse(candidate); ok {
			return day, true
		}
	}
	return timekey.DayKey{}, false
}

func cleanTitle(raw string) string {
	title := strings.Join(strings.Fields(strings.TrimSpace(raw)), " ")
	if title == "" {
		return untitled
	}
	return title
}

func derivedID(day timekey.DayKey, title string) string {
	return day.String() + "|" + cleanTitle(title)
}
