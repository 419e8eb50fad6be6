package energy

import "time"

// Store persists daily energy records.
type Store interface {
	Add(Record) error
	Query(runID string, start, end time.Time) ([]Record, error)
}

// Day aligns t to the start of its UTC day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
