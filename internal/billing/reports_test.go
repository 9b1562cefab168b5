package billing

import (
	"testing"

	"github.com/existflow/ironbill/internal/model"
)

func TestSummarizeMonth(t *testing.T) {
	f := newFixture(t)
	logo, err := f.tracker.Entities.AddProject(f.ctx, model.Project{ClientID: f.client.ID, Name: "Logo", HourlyRate: 100})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	f.manual(t, date(2024, 1, 2, 9, 0), date(2024, 1, 2, 13, 0))
	f.manual(t, date(2024, 1, 3, 9, 0), date(2024, 1, 3, 11, 0))
	if _, err := f.tracker.Timer.AddManualEntry(f.ctx, logo.ID, date(2024, 1, 3, 14, 0), date(2024, 1, 3, 15, 0), ""); err != nil {
		t.Fatalf("AddManualEntry: %v", err)
	}
	f.manual(t, date(2024, 2, 1, 9, 0), date(2024, 2, 1, 10, 0))

	start, end := MonthRange(date(2024, 1, 15, 0, 0))
	s := f.tracker.Summarize(ReportFilter{Start: start, End: end})

	if s.EntryCount != 3 {
		t.Errorf("EntryCount = %d, want 3", s.EntryCount)
	}
	if !approx(s.TotalHours, 7) {
		t.Errorf("TotalHours = %v, want 7", s.TotalHours)
	}
	if !approx(s.TotalEarnings, 6*75+100) {
		t.Errorf("TotalEarnings = %v, want 550", s.TotalEarnings)
	}
	if !approx(s.AvgHoursPerDay, 7.0/31) {
		t.Errorf("AvgHoursPerDay = %v", s.AvgHoursPerDay)
	}
	if len(s.Buckets) != 31 {
		t.Fatalf("Buckets = %d, want 31", len(s.Buckets))
	}
	if !approx(s.Buckets[2].Hours, 3) || s.Buckets[2].Label != "Jan 03" {
		t.Errorf("Jan 03 bucket = %+v", s.Buckets[2])
	}
	if len(s.Projects) != 2 || s.Projects[0].Name != "Website Redesign" {
		t.Errorf("Projects = %+v", s.Projects)
	}
}

func TestSummarizeFilters(t *testing.T) {
	f := newFixture(t)
	other, _ := f.tracker.Entities.AddClient(f.ctx, model.Client{Name: "Globex"})
	p, _ := f.tracker.Entities.AddProject(f.ctx, model.Project{ClientID: other.ID, Name: "Audit", HourlyRate: 50})
	f.manual(t, date(2024, 1, 2, 9, 0), date(2024, 1, 2, 10, 0))
	if _, err := f.tracker.Timer.AddManualEntry(f.ctx, p.ID, date(2024, 1, 2, 11, 0), date(2024, 1, 2, 13, 0), ""); err != nil {
		t.Fatalf("AddManualEntry: %v", err)
	}

	if s := f.tracker.Summarize(ReportFilter{ClientID: other.ID}); !approx(s.TotalHours, 2) {
		t.Errorf("client filter hours = %v, want 2", s.TotalHours)
	}
	if s := f.tracker.Summarize(ReportFilter{ProjectID: f.project.ID}); !approx(s.TotalEarnings, 75) {
		t.Errorf("project filter earnings = %v, want 75", s.TotalEarnings)
	}
	s := f.tracker.Summarize(ReportFilter{})
	if s.EntryCount != 2 || s.Buckets != nil || s.AvgHoursPerDay != 0 {
		t.Errorf("open summary = %+v", s)
	}
}

func TestSummarizeMonthly(t *testing.T) {
	f := newFixture(t)
	f.manual(t, date(2024, 1, 2, 9, 0), date(2024, 1, 2, 10, 0))
	f.manual(t, date(2024, 3, 2, 9, 0), date(2024, 3, 2, 12, 0))

	s := f.tracker.Summarize(ReportFilter{
		Start:       date(2024, 1, 1, 0, 0),
		End:         date(2024, 12, 31, 0, 0),
		Granularity: GroupMonthly,
	})
	if len(s.Buckets) != 12 {
		t.Fatalf("Buckets = %d, want 12", len(s.Buckets))
	}
	if !approx(s.Buckets[0].Hours, 1) || !approx(s.Buckets[2].Hours, 3) || s.Buckets[1].Hours != 0 {
		t.Errorf("monthly buckets = %+v", s.Buckets[:3])
	}
	if s.Buckets[2].Label != "Mar 2024" {
		t.Errorf("label = %q", s.Buckets[2].Label)
	}
}
