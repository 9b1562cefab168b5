package model

import "time"

// TimeEntry is a tracked interval of work on a project
type TimeEntry struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"` // nil while open
	Duration  int64      `json:"duration"`           // seconds
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsOpen returns true if the entry has no end time yet
func (e TimeEntry) IsOpen() bool {
	return e.EndTime == nil
}

// Hours returns the duration in fractional hours
func (e TimeEntry) Hours() float64 {
	return float64(e.Duration) / 3600
}

// Clone returns a deep copy that shares no pointers with e
func (e TimeEntry) Clone() TimeEntry {
	if e.EndTime != nil {
		end := *e.EndTime
		e.EndTime = &end
	}
	return e
}
