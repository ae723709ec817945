package model

import "time"

// IntervalRecord holds the reconciled activity of one fixed time bucket.
type IntervalRecord struct {
	Start      time.Time `json:"start"`
	Arrivals   int       `json:"arrivals"`
	Departures int       `json:"departures"`
	Month      int       `json:"month"`
	Hour       int       `json:"hour"`
	Weekday    bool      `json:"is_weekday"`
}

// IsWeekday reports whether t falls on Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
