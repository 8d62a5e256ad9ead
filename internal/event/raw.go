package event

// RawPostEvent is the lightweight announcement-feed record. Always a single
// day per record.
type RawPostEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	ISODate     string `json:"isoDate"`
	Time        string `json:"time"`
	Description string `json:"description"`
	IsPinned    bool   `json:"isPinned"`
	IsUrgent    bool   `json:"isUrgent"`

	// Source marks the pipeline a post came through. Bulk/offline import
	// values are mirrors of calendar records and are dropped at this
	// boundary so the same logical event never arrives twice.
	Source string `json:"source"`
}

// RawCalendarEvent is the richer calendar-service record. DateType selects
// which shape fields are meaningful; an absent DateType means single date.
type RawCalendarEvent struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`

	Title    string `json:"title"`
	Category string `json:"category"`

	// DateType is one of "", "single", "date_range", "week", "month".
	DateType string `json:"dateType"`

	ISODate string `json:"isoDate"`
	Date    string `json:"date"`

	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	WeekOfMonth int `json:"weekOfMonth"`
	Month       int `json:"month"`
	Year        int `json:"year"`

	Time        string `json:"time"`
	Description string `json:"description"`
}
