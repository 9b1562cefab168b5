package billing

import (
	"sort"
	"time"

	"github.com/existflow/ironbill/internal/model"
)

// Granularity selects how a report buckets its time
type Granularity int

const (
	GroupDaily Granularity = iota
	GroupMonthly
)

// ReportFilter narrows the entries a report covers. Empty fields match everything;
// a zero Start or End leaves that side of the range open.
type ReportFilter struct {
	ProjectID   string
	ClientID    string
	Start       time.Time
	End         time.Time // inclusive through 23:59:59 of this day
	Granularity Granularity
}

// Bucket is the time tracked in one day or month
type Bucket struct {
	Label    string
	Start    time.Time
	Hours    float64
	Earnings float64
}

// ProjectShare is one project's part of a report
type ProjectShare struct {
	ProjectID string
	Name      string
	Hours     float64
	Earnings  float64
}

// Summary aggregates tracked time for reporting. Earnings use each project's
// current rate; invoices are the place where rates are frozen.
type Summary struct {
	EntryCount     int
	TotalHours     float64
	TotalEarnings  float64
	AvgHoursPerDay float64 // zero unless both ends of the range are set
	Projects       []ProjectShare
	Buckets        []Bucket
}

// Summarize builds a report over the tracked entries matching f
func (t *Tracker) Summarize(f ReportFilter) Summary {
	projects := make(map[string]model.Project, len(t.state.Projects))
	for _, p := range t.state.Projects {
		projects[p.ID] = p
	}

	end := f.End
	if !end.IsZero() {
		end = EndOfDay(end)
	}

	var entries []model.TimeEntry
	for _, e := range t.Entries.List() {
		if f.ProjectID != "" && e.ProjectID != f.ProjectID {
			continue
		}
		if f.ClientID != "" && projects[e.ProjectID].ClientID != f.ClientID {
			continue
		}
		if !f.Start.IsZero() && e.StartTime.Before(f.Start) {
			continue
		}
		if !end.IsZero() && e.StartTime.After(end) {
			continue
		}
		entries = append(entries, e)
	}

	var s Summary
	s.EntryCount = len(entries)
	s.Buckets = makeBuckets(f.Start, end, f.Granularity)

	shares := make(map[string]*ProjectShare)
	for _, e := range entries {
		hours := e.Hours()
		p := projects[e.ProjectID]
		earnings := hours * p.HourlyRate

		s.TotalHours += hours
		s.TotalEarnings += earnings

		share, ok := shares[e.ProjectID]
		if !ok {
			name := p.Name
			if name == "" {
				name = "Unknown Project"
			}
			share = &ProjectShare{ProjectID: e.ProjectID, Name: name}
			shares[e.ProjectID] = share
		}
		share.Hours += hours
		share.Earnings += earnings

		if b := findBucket(s.Buckets, e.StartTime, f.Granularity); b != nil {
			b.Hours += hours
			b.Earnings += earnings
		}
	}

	for _, share := range shares {
		s.Projects = append(s.Projects, *share)
	}
	sort.SliceStable(s.Projects, func(i, j int) bool {
		if s.Projects[i].Hours != s.Projects[j].Hours {
			return s.Projects[i].Hours > s.Projects[j].Hours
		}
		return s.Projects[i].Name < s.Projects[j].Name
	})

	if !f.Start.IsZero() && !end.IsZero() {
		if days := daysBetween(f.Start, end); days > 0 {
			s.AvgHoursPerDay = s.TotalHours / float64(days)
		}
	}
	return s
}

// MonthRange returns the first and last calendar day of t's month
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

func makeBuckets(start, end time.Time, g Granularity) []Bucket {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil
	}

	var buckets []Bucket
	switch g {
	case GroupMonthly:
		first, _ := MonthRange(start)
		for cur := first; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
			buckets = append(buckets, Bucket{Label: cur.Format("Jan 2006"), Start: cur})
		}
	default:
		for cur := StartOfDay(start); !cur.After(end); cur = cur.AddDate(0, 0, 1) {
			buckets = append(buckets, Bucket{Label: cur.Format("Jan 02"), Start: cur})
		}
	}
	return buckets
}

func findBucket(buckets []Bucket, t time.Time, g Granularity) *Bucket {
	for i := range buckets {
		b := &buckets[i]
		switch g {
		case GroupMonthly:
			if b.Start.Year() == t.Year() && b.Start.Month() == t.Month() {
				return b
			}
		default:
			y, m, d := t.Date()
			by, bm, bd := b.Start.Date()
			if y == by && m == bm && d == bd {
				return b
			}
		}
	}
	return nil
}

// daysBetween counts calendar days in [start, end], both inclusive
func daysBetween(start, end time.Time) int {
	days := 0
	for cur := StartOfDay(start); !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		days++
	}
	return days
}
