package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
)

// TimerState is the state of the single work session
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
)

// String returns the display name of the state
func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	default:
		return "idle"
	}
}

// Timer tracks at most one work session and turns it into a time entry on Stop.
//
// Paused time is never counted: Pause folds the running segment into
// ElapsedTime and Resume restarts StartTime, so the billed duration is always
// ElapsedTime plus the open segment, if any.
type Timer struct {
	t *Tracker
}

// State returns the current timer state
func (tm *Timer) State() TimerState {
	a := tm.t.state.Timer
	switch {
	case a == nil:
		return TimerIdle
	case a.IsRunning:
		return TimerRunning
	default:
		return TimerPaused
	}
}

// Active returns a copy of the running or paused session, or nil when idle
func (tm *Timer) Active() *model.ActiveTimer {
	if tm.t.state.Timer == nil {
		return nil
	}
	a := tm.t.state.Timer.Clone()
	return &a
}

// Elapsed returns the billable time of the current session as of now.
// It is a read-only projection and may be polled as often as needed.
func (tm *Timer) Elapsed() time.Duration {
	a := tm.t.state.Timer
	if a == nil {
		return 0
	}
	total := time.Duration(a.ElapsedTime) * time.Millisecond
	if a.IsRunning {
		total += segment(a.StartTime, tm.t.now())
	}
	return total
}

// Start begins a session on an existing project. Only valid when idle.
func (tm *Timer) Start(ctx context.Context, projectID string) (model.ActiveTimer, error) {
	if tm.State() != TimerIdle {
		return model.ActiveTimer{}, fmt.Errorf("%w: timer already %s", ErrInvalidState, tm.State())
	}
	if _, err := tm.t.Entities.GetProject(projectID); err != nil {
		return model.ActiveTimer{}, err
	}

	tm.t.state.Timer = &model.ActiveTimer{
		ProjectID: projectID,
		StartTime: tm.t.now(),
		IsRunning: true,
	}

	logger.Info("Timer started", logger.F("project", projectID))
	return tm.t.state.Timer.Clone(), tm.t.persist(ctx, CollectionTimer)
}

// Pause folds the running segment into the accumulated time. Only valid while running.
func (tm *Timer) Pause(ctx context.Context) (model.ActiveTimer, error) {
	if tm.State() != TimerRunning {
		return model.ActiveTimer{}, fmt.Errorf("%w: cannot pause, timer %s", ErrInvalidState, tm.State())
	}

	a := tm.t.state.Timer
	now := tm.t.now()
	a.ElapsedTime += segment(a.StartTime, now).Milliseconds()
	a.PausedAt = &now
	a.IsRunning = false

	logger.Info("Timer paused", logger.F("project", a.ProjectID), logger.F("elapsed_ms", a.ElapsedTime))
	return a.Clone(), tm.t.persist(ctx, CollectionTimer)
}

// Resume starts a new running segment. Only valid while paused.
func (tm *Timer) Resume(ctx context.Context) (model.ActiveTimer, error) {
	if tm.State() != TimerPaused {
		return model.ActiveTimer{}, fmt.Errorf("%w: cannot resume, timer %s", ErrInvalidState, tm.State())
	}

	a := tm.t.state.Timer
	a.StartTime = tm.t.now()
	a.IsRunning = true
	a.PausedAt = nil

	logger.Info("Timer resumed", logger.F("project", a.ProjectID))
	return a.Clone(), tm.t.persist(ctx, CollectionTimer)
}

// SetNotes attaches notes to the current session
func (tm *Timer) SetNotes(ctx context.Context, notes string) error {
	if tm.State() == TimerIdle {
		return fmt.Errorf("%w: no active timer", ErrInvalidState)
	}
	tm.t.state.Timer.Notes = notes
	return tm.t.persist(ctx, CollectionTimer)
}

// Stop ends the session and records it as a single time entry ending now.
// The entry's start is reconstructed as now minus the billed duration;
// the individual pause segments are not kept.
func (tm *Timer) Stop(ctx context.Context) (model.TimeEntry, error) {
	if tm.State() == TimerIdle {
		return model.TimeEntry{}, fmt.Errorf("%w: no active timer", ErrInvalidState)
	}

	a := tm.t.state.Timer
	now := tm.t.now()
	elapsed := time.Duration(a.ElapsedTime) * time.Millisecond
	if a.IsRunning {
		elapsed += segment(a.StartTime, now)
	}
	seconds := int64(elapsed / time.Second)

	entry, err := tm.t.Entries.insert(model.TimeEntry{
		ProjectID: a.ProjectID,
		StartTime: now.Add(-time.Duration(seconds) * time.Second),
		EndTime:   &now,
		Duration:  seconds,
		Notes:     a.Notes,
	})
	if err != nil {
		return model.TimeEntry{}, err
	}
	tm.t.state.Timer = nil

	logger.Info("Timer stopped",
		logger.F("project", entry.ProjectID),
		logger.F("entry", entry.ID),
		logger.F("duration", entry.Duration))
	return entry.Clone(), tm.t.persist(ctx, CollectionEntries, CollectionTimer)
}

// AddManualEntry records a finished interval directly, bypassing the timer
func (tm *Timer) AddManualEntry(ctx context.Context, projectID string, start, end time.Time, notes string) (model.TimeEntry, error) {
	if !end.After(start) {
		return model.TimeEntry{}, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	return tm.t.Entries.Add(ctx, model.TimeEntry{
		ProjectID: projectID,
		StartTime: start,
		EndTime:   &end,
		Notes:     notes,
	})
}

// segment returns the running time between from and to, never negative
func segment(from, to time.Time) time.Duration {
	if d := to.Sub(from); d > 0 {
		return d
	}
	return 0
}
