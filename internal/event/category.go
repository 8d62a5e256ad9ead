package event

import "strings"

// Category classifies an event for filtering and cell coloring. The set is
// closed; anything unrecognized is folded into the default announcement
// category.
type Category string

const (
	CategoryInstitutional Category = "institutional"
	CategoryAcademic      Category = "academic"
	CategoryEvent         Category = "event"
	CategoryNews          Category = "news"
	CategoryAnnouncement  Category = "announcement"
)

// categoryRank is the total order used for cell coloring. Higher wins.
var categoryRank = map[Category]int{
	CategoryInstitutional: 5,
	CategoryAcademic:      4,
	CategoryEvent:         3,
	CategoryNews:          2,
	CategoryAnnouncement:  1,
}

var categoryColor = map[Category]string{
	CategoryInstitutional: "#7B1FA2",
	CategoryAcademic:      "#1565C0",
	CategoryEvent:         "#2E7D32",
	CategoryNews:          "#EF6C00",
	CategoryAnnouncement:  "#546E7A",
}

// ParseCategory lower-cases and trims raw input; unknown or empty values
// resolve to the announcement default.
func ParseCategory(raw string) Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, known := categoryRank[normalized]; !known {
		return CategoryAnnouncement
	}
	return normalized
}

// Priority returns the coloring rank of the category. Unrecognized values
// rank the same as announcement.
func (c Category) Priority() int {
	if rank, ok := categoryRank[c]; ok {
		return rank
	}
	return categoryRank[CategoryAnnouncement]
}

// Color returns the display color for the category.
func (c Category) Color() string {
	if color, ok := categoryColor[c]; ok {
		return color
	}
	return categoryColor[CategoryAnnouncement]
}

// CategorySet restricts queries to a subset of categories. A nil set means
// "all categories".
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from raw category names; nil input yields a
// nil set (no restriction).
func NewCategorySet(names []string) CategorySet {
	if names == nil {
		return nil
	}
	set := make(CategorySet, len(names))
	for _, name := range names {
		set[ParseCategory(name)] = struct{}{}
	}
	return set
}

func (s CategorySet) Contains(c Category) bool {
	if s == nil {
		return true
	}
	_, ok := s[c]
	return ok
}
