package model

import "time"

// ActiveTimer is the single in-progress work session
type ActiveTimer struct {
	ProjectID   string     `json:"project_id"`
	StartTime   time.Time  `json:"start_time"` // start of the current running segment
	IsRunning   bool       `json:"is_running"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	ElapsedTime int64      `json:"elapsed_time"` // milliseconds accumulated before the current segment
	Notes       string     `json:"notes,omitempty"`
}

// Clone returns a deep copy of the timer
func (t ActiveTimer) Clone() ActiveTimer {
	if t.PausedAt != nil {
		p := *t.PausedAt
		t.PausedAt = &p
	}
	return t
}
