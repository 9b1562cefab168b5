package billing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
	"github.com/google/uuid"
)

// EntryPatch holds the time entry fields to change; nil fields are left alone.
// Setting StartTime or EndTime recomputes the duration.
type EntryPatch struct {
	ProjectID *string
	StartTime *time.Time
	EndTime   *time.Time
	Notes     *string
}

// TimeEntries stores completed work intervals
type TimeEntries struct {
	t *Tracker
}

// Add stores a new entry under a fresh id. A closed entry always takes its
// duration from its start and end; any duration it carries is ignored.
func (s *TimeEntries) Add(ctx context.Context, e model.TimeEntry) (model.TimeEntry, error) {
	e, err := s.insert(e)
	if err != nil {
		return model.TimeEntry{}, err
	}
	return e.Clone(), s.t.persist(ctx, CollectionEntries)
}

// insert validates and appends an entry without saving
func (s *TimeEntries) insert(e model.TimeEntry) (model.TimeEntry, error) {
	if _, err := s.t.Entities.GetProject(e.ProjectID); err != nil {
		return model.TimeEntry{}, err
	}
	if e.StartTime.IsZero() {
		return model.TimeEntry{}, fmt.Errorf("%w: start time required", ErrValidation)
	}
	if e.Duration < 0 {
		return model.TimeEntry{}, fmt.Errorf("%w: negative duration", ErrValidation)
	}
	if e.EndTime != nil {
		if e.EndTime.Before(e.StartTime) {
			return model.TimeEntry{}, fmt.Errorf("%w: end time before start time", ErrValidation)
		}
		e.Duration = durationSeconds(e.StartTime, *e.EndTime)
	}

	e = e.Clone()
	e.ID = uuid.New().String()
	e.CreatedAt = s.t.now()
	s.t.state.Entries = append(s.t.state.Entries, e)

	logger.Info("Time entry added",
		logger.F("id", e.ID),
		logger.F("project", e.ProjectID),
		logger.F("duration", e.Duration))
	return e, nil
}

// Update applies patch to the entry with the given id
func (s *TimeEntries) Update(ctx context.Context, id string, patch EntryPatch) (model.TimeEntry, error) {
	i := s.index(id)
	if i < 0 {
		return model.TimeEntry{}, fmt.Errorf("%w: time entry %s", ErrNotFound, id)
	}

	e := s.t.state.Entries[i].Clone()
	if patch.ProjectID != nil {
		if _, err := s.t.Entities.GetProject(*patch.ProjectID); err != nil {
			return model.TimeEntry{}, err
		}
		e.ProjectID = *patch.ProjectID
	}
	if patch.Notes != nil {
		e.Notes = *patch.Notes
	}
	if patch.StartTime != nil || patch.EndTime != nil {
		if patch.StartTime != nil {
			e.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			end := *patch.EndTime
			e.EndTime = &end
		}
		if e.EndTime == nil {
			e.Duration = 0
		} else {
			if e.EndTime.Before(e.StartTime) {
				return model.TimeEntry{}, fmt.Errorf("%w: end time before start time", ErrValidation)
			}
			e.Duration = durationSeconds(e.StartTime, *e.EndTime)
		}
	}
	s.t.state.Entries[i] = e

	logger.Info("Time entry updated", logger.F("id", id), logger.F("duration", e.Duration))
	return e.Clone(), s.t.persist(ctx, CollectionEntries)
}

// Delete removes an entry. Invoices keep their own copies, so nothing blocks it.
func (s *TimeEntries) Delete(ctx context.Context, id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: time entry %s", ErrNotFound, id)
	}
	s.t.state.Entries = append(s.t.state.Entries[:i:i], s.t.state.Entries[i+1:]...)

	logger.Info("Time entry deleted", logger.F("id", id))
	return s.t.persist(ctx, CollectionEntries)
}

// Get returns the entry with the given id
func (s *TimeEntries) Get(id string) (model.TimeEntry, error) {
	i := s.index(id)
	if i < 0 {
		return model.TimeEntry{}, fmt.Errorf("%w: time entry %s", ErrNotFound, id)
	}
	return s.t.state.Entries[i].Clone(), nil
}

// Find resolves an entry by exact id or unique id prefix
func (s *TimeEntries) Find(ref string) (model.TimeEntry, error) {
	ids := make([]string, len(s.t.state.Entries))
	for i, e := range s.t.state.Entries {
		ids[i] = e.ID
	}
	i, err := resolveRef(ref, ids, nil)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("time entry %s: %w", ref, err)
	}
	return s.t.state.Entries[i].Clone(), nil
}

// List returns every entry ordered by start time
func (s *TimeEntries) List() []model.TimeEntry {
	return s.filter(func(model.TimeEntry) bool { return true })
}

// ListByProject returns the entries of one project ordered by start time
func (s *TimeEntries) ListByProject(projectID string) []model.TimeEntry {
	return s.filter(func(e model.TimeEntry) bool {
		return e.ProjectID == projectID
	})
}

// ListByDateRange returns entries whose start time lies in [start, end]
func (s *TimeEntries) ListByDateRange(start, end time.Time) []model.TimeEntry {
	return s.filter(func(e model.TimeEntry) bool {
		return inRange(e.StartTime, start, end)
	})
}

func (s *TimeEntries) filter(keep func(model.TimeEntry) bool) []model.TimeEntry {
	var out []model.TimeEntry
	for _, e := range s.t.state.Entries {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (s *TimeEntries) index(id string) int {
	for i, e := range s.t.state.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// durationSeconds returns whole seconds between start and end
func durationSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
