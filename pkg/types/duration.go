package types

// Duration stores a coarse content length as the frontend expects it.
// Seconds is only populated for individual media materials.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds,omitempty"`
}

// TotalMinutes flattens the duration for aggregation across lessons.
func (d Duration) TotalMinutes() int {
	return d.Hours*60 + d.Minutes
}

// FromMinutes rebuilds an hours/minutes pair from a minute total.
func FromMinutes(total int) Duration {
	if total < 0 {
		total = 0
	}
	return Duration{Hours: total / 60, Minutes: total % 60}
}
