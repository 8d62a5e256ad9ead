package engine

import (
	"sort"

	"github.com/Ivevan/dorsu-connect-calendar/internal/event"
	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

// DayGroup is one day's events in a grouped listing.
type DayGroup struct {
	Day    timekey.DayKey  `json:"day"`
	Events []event.Unified `json:"events"`
}

// YearGroup is one year's day groups, ascending by day.
type YearGroup struct {
	Year int        `json:"year"`
	Days []DayGroup `json:"days"`
}

// DayCell is the per-day summary a month grid renders.
type DayCell struct {
	Day   timekey.DayKey `json:"day"`
	Count int            `json:"count"`
	Color string         `json:"color,omitempty"`
}

// EventsOnDay returns the events occurring on the given day under the
// active category filter, in source-arrival order. Period placeholders
// never appear here.
func (e *Engine) EventsOnDay(day timekey.DayKey) []event.Unified {
	e.mu.Lock()
	defer e.mu.Unlock()
	store, filter := e.snapshotLocked()
	return eventsOnDay(store, day, filter)
}

// MonthCount returns how many filtered events touch the given month,
// including period placeholders whose own (year, month) matches.
func (e *Engine) MonthCount(month timekey.MonthKey) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	store, filter := e.snapshotLocked()
	return monthCount(store, month, filter)
}

// CellColor returns the grid cell color for the given day: the color of the
// highest-priority category among the day's events, or false when the day
// is empty.
func (e *Engine) CellColor(day timekey.DayKey) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	store, filter := e.snapshotLocked()
	return PriorityColor(eventsOnDay(store, day, filter))
}

// MonthGrid returns a cell summary for every day of the given month.
func (e *Engine) MonthGrid(month timekey.MonthKey) []DayCell {
	e.mu.Lock()
	defer e.mu.Unlock()
	store, filter := e.snapshotLocked()

	last := month.LastDay()
	cells := make([]DayCell, 0, last.Day)
	for day := month.FirstDay(); !day.After(last); day = day.AddDays(1) {
		onDay := eventsOnDay(store, day, filter)
		cell := DayCell{Day: day, Count: len(onDay)}
		if color, ok := PriorityColor(onDay); ok {
			cell.Color = color
		}
		cells = append(cells, cell)
	}
	return cells
}

// GroupedByYearThenDay returns a stable ascending year-then-day grouping
// for list-style views. Ranges are bucketed once under their start day,
// never duplicated across the days they span. Period placeholders carry no
// day and are excluded.
func (e *Engine) GroupedByYearThenDay() []YearGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	store, filter := e.snapshotLocked()
	return groupByYearThenDay(store, filter)
}

func eventsOnDay(store []event.Unified, day timekey.DayKey, filter event.CategorySet) []event.Unified {
	var matched []event.Unified
	for _, item := range store {
		if !filter.Contains(item.Category) {
			continue
		}
		if item.Occurrence.OccursOn(day) {
			matched = append(matched, item)
		}
	}
	return matched
}

func monthCount(store []event.Unified, month timekey.MonthKey, filter event.CategorySet) int {
	count := 0
	for _, item := range store {
		if !filter.Contains(item.Category) {
			continue
		}
		if item.Occurrence.OccursInMonth(month) {
			count++
		}
	}
	return count
}

// PriorityColor picks the color of the highest-priority category present,
// independent of how many events share it and of slice order.
func PriorityColor(events []event.Unified) (string, bool) {
	if len(events) == 0 {
		return "", false
	}
	best := events[0].Category
	for _, item := range events[1:] {
		if item.Category.Priority() > best.Priority() {
			best = item.Category
		}
	}
	return best.Color(), true
}

func groupByYearThenDay(store []event.Unified, filter event.CategorySet) []YearGroup {
	byDay := make(map[timekey.DayKey][]event.Unified)
	for _, item := range store {
		if !filter.Contains(item.Category) {
			continue
		}
		day, ok := item.Occurrence.StartDay()
		if !ok {
			continue
		}
		byDay[day] = append(byDay[day], item)
	}
	if len(byDay) == 0 {
		return nil
	}

	days := make([]timekey.DayKey, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	var groups []YearGroup
	for _, day := range days {
		if len(groups) == 0 || groups[len(groups)-1].Year != day.Year {
			groups = append(groups, YearGroup{Year: day.Year})
		}
		last := &groups[len(groups)-1]
		last.Days = append(last.Days, DayGroup{Day: day, Events: byDay[day]})
	}
	return groups
}
