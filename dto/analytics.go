package dto

// DayBucket is one entry of the day-bucketed view series.
type DayBucket struct {
	Date  string `json:"date"` // local calendar date, YYYY-MM-DD
	Count int    `json:"count"`
}

type TopDemo struct {
	DemoID string `json:"demo_id"`
	Title  string `json:"title"`
	Views  int    `json:"views"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// AnalyticsSummary is a read-time projection over view records. It has
// no persistence of its own.
type AnalyticsSummary struct {
	TotalViews     int             `json:"total_views"`
	UniqueViewers  int             `json:"unique_viewers"`
	AvgTimeSpent   float64         `json:"avg_time_spent"`  // seconds
	CompletionRate float64         `json:"completion_rate"` // percent
	ViewsByDay     []DayBucket     `json:"views_by_day"`
	TopDemos       []TopDemo       `json:"top_demos"`
	Locations      []LocationCount `json:"locations,omitempty"`
}
