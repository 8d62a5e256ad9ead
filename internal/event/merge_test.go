package event

import (
	"sort"
	"testing"
	"time"
)

func mergedIdentities(items []Unified) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Identity())
	}
	sort.Strings(ids)
	return ids
}

func sampleEvents(prefix string, n int) []Unified {
	events := make([]Unified, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, Unified{
			ID:         prefix + string(rune('a'+i)),
			Title:      "Event " + prefix,
			Category:   CategoryNews,
			Occurrence: DayOccurrence(day(2025, time.March, 10+i)),
			Source:     SourcePost,
		})
	}
	return events
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	a := sampleEvents("a", 3)
	b := sampleEvents("b", 2)

	once := Merge(a, b)
	twice := Merge(once, b)

	if len(twice) != len(once) {
		t.Fatalf("second merge changed size: %d != %d", len(twice), len(once))
	}
}

func TestMerge_CommutativeAsIdentitySet(t *testing.T) {
	t.Parallel()

	a := sampleEvents("a", 3)
	b := sampleEvents("b", 2)

	ab := Merge(Merge(nil, a), b)
	ba := Merge(Merge(nil, b), a)

	gotAB := mergedIdentities(ab)
	gotBA := mergedIdentities(ba)
	if len(gotAB) != len(gotBA) {
		t.Fatalf("identity sets differ in size: %d != %d", len(gotAB), len(gotBA))
	}
	for i := range gotAB {
		if gotAB[i] != gotBA[i] {
			t.Fatalf("identity sets differ at %d: %q != %q", i, gotAB[i], gotBA[i])
		}
	}
}

func TestMerge_CollisionKeepsExisting(t *testing.T) {
	t.Parallel()

	existing := []Unified{{
		ID:          "e1",
		Title:       "Rich title",
		Description: "full description from first fetch",
		Category:    CategoryAcademic,
		Occurrence:  DayOccurrence(day(2025, time.March, 10)),
		Source:      SourceCalendar,
	}}
	incoming := []Unified{{
		ID:         "e1",
		Title:      "partial refetch",
		Category:   CategoryAcademic,
		Occurrence: DayOccurrence(day(2025, time.March, 10)),
		Source:     SourceCalendar,
	}}

	merged := Merge(existing, incoming)
	if len(merged) != 1 {
		t.Fatalf("expected 1 event, got %d", len(merged))
	}
	if merged[0].Description == "" {
		t.Fatalf("collision must keep the existing richer entry")
	}
}

func TestMerge_SameIDDifferentSourceStaysDistinct(t *testing.T) {
	t.Parallel()

	post := Unified{ID: "x", Source: SourcePost, Occurrence: DayOccurrence(day(2025, time.March, 10))}
	calendar := Unified{ID: "x", Source: SourceCalendar, Occurrence: DayOccurrence(day(2025, time.March, 10))}

	merged := Merge([]Unified{post}, []Unified{calendar})
	if len(merged) != 2 {
		t.Fatalf("identity is (id, source); expected 2 events, got %d", len(merged))
	}
}

func TestMerge_PreservesArrivalOrder(t *testing.T) {
	t.Parallel()

	a := sampleEvents("a", 2)
	b := sampleEvents("b", 2)
	merged := Merge(a, b)

	want := []string{"aa", "ab", "ba", "bb"}
	for i, item := range merged {
		if item.ID != want[i] {
			t.Fatalf("order broken at %d: %q != %q", i, item.ID, want[i])
		}
	}
}
