package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/existflow/ironbill/internal/model"
)

func TestGenerateInvoiceExample(t *testing.T) {
	f := newFixture(t)
	f.manual(t, date(2024, 1, 10, 9, 0), date(2024, 1, 10, 17, 0))

	inv, err := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
		ClientID:  f.client.ID,
		ProjectID: f.project.ID,
		StartDate: date(2024, 1, 1, 0, 0),
		EndDate:   date(2024, 1, 31, 0, 0),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !approx(inv.TotalHours, 8) {
		t.Errorf("TotalHours = %v, want 8", inv.TotalHours)
	}
	if !approx(inv.TotalAmount, 600) {
		t.Errorf("TotalAmount = %v, want 600", inv.TotalAmount)
	}
	if inv.HourlyRate != 75 {
		t.Errorf("HourlyRate = %v, want 75", inv.HourlyRate)
	}
	if inv.Status != model.InvoiceDraft {
		t.Errorf("Status = %q, want draft", inv.Status)
	}
	if !inv.CreatedAt.Equal(f.clock.Now()) {
		t.Errorf("CreatedAt = %v, want %v", inv.CreatedAt, f.clock.Now())
	}
	if len(inv.Entries) != 1 {
		t.Errorf("Entries = %d, want 1", len(inv.Entries))
	}
}

func TestGenerateInvoiceNoEntries(t *testing.T) {
	f := newFixture(t)
	f.manual(t, date(2024, 3, 5, 9, 0), date(2024, 3, 5, 10, 0))

	inv, err := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
		ClientID:  f.client.ID,
		ProjectID: f.project.ID,
		StartDate: date(2024, 1, 1, 0, 0),
		EndDate:   date(2024, 1, 31, 0, 0),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if inv.TotalHours != 0 || inv.TotalAmount != 0 {
		t.Errorf("totals = %v h / %v, want zero", inv.TotalHours, inv.TotalAmount)
	}
	if inv.Entries == nil || len(inv.Entries) != 0 {
		t.Errorf("Entries = %#v, want empty slice", inv.Entries)
	}
}

func TestGenerateInvoiceRangeBoundaries(t *testing.T) {
	f := newFixture(t)
	f.manual(t, date(2023, 12, 31, 23, 0), date(2023, 12, 31, 23, 30)) // before range
	f.manual(t, date(2024, 1, 1, 0, 0), date(2024, 1, 1, 1, 0))        // on start
	f.manual(t, date(2024, 1, 31, 23, 59), date(2024, 2, 1, 0, 59))    // last minute of end day
	f.manual(t, date(2024, 2, 1, 0, 0), date(2024, 2, 1, 1, 0))        // after range

	inv, err := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
		ClientID:  f.client.ID,
		ProjectID: f.project.ID,
		StartDate: date(2024, 1, 1, 0, 0),
		EndDate:   date(2024, 1, 31, 0, 0),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(inv.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(inv.Entries))
	}
	if !approx(inv.TotalHours, 2) {
		t.Errorf("TotalHours = %v, want 2", inv.TotalHours)
	}
}

func TestGenerateInvoiceOnlyMatchingProject(t *testing.T) {
	f := newFixture(t)
	other, err := f.tracker.Entities.AddProject(f.ctx, model.Project{ClientID: f.client.ID, Name: "Logo", HourlyRate: 85})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	f.manual(t, date(2024, 1, 10, 9, 0), date(2024, 1, 10, 10, 0))
	if _, err := f.tracker.Timer.AddManualEntry(f.ctx, other.ID, date(2024, 1, 11, 9, 0), date(2024, 1, 11, 12, 0), ""); err != nil {
		t.Fatalf("AddManualEntry: %v", err)
	}

	inv, err := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
		ClientID:  f.client.ID,
		ProjectID: other.ID,
		StartDate: date(2024, 1, 1, 0, 0),
		EndDate:   date(2024, 1, 31, 0, 0),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !approx(inv.TotalHours, 3) || !approx(inv.TotalAmount, 255) {
		t.Errorf("totals = %v h / %v, want 3 h / 255", inv.TotalHours, inv.TotalAmount)
	}
}

func TestInvoiceTotalAmountMatchesHoursTimesRate(t *testing.T) {
	f := newFixture(t)
	rate := 93.37
	if _, err := f.tracker.Entities.UpdateProject(f.ctx, f.project.ID, ProjectPatch{HourlyRate: &rate}); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	durations := []time.Duration{17 * time.Minute, 3*time.Hour + 7*time.Second, 59 * time.Second, 45 * time.Minute}
	start := date(2024, 1, 2, 8, 0)
	for i, d := range durations {
		s := start.AddDate(0, 0, i)
		f.manual(t, s, s.Add(d))

		inv, err := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
			ClientID:  f.client.ID,
			ProjectID: f.project.ID,
			StartDate: date(2024, 1, 1, 0, 0),
			EndDate:   date(2024, 1, 31, 0, 0),
		})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if diff := inv.TotalAmount - inv.TotalHours*inv.HourlyRate; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("after %d entries: amount %v != hours %v * rate %v", i+1, inv.TotalAmount, inv.TotalHours, inv.HourlyRate)
		}
	}
}

func TestInvoiceIsFrozenAtCreation(t *testing.T) {
	f := newFixture(t)
	entry := f.manual(t, date(2024, 1, 10, 9, 0), date(2024, 1, 10, 11, 0))

	inv, err := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
		ClientID:  f.client.ID,
		ProjectID: f.project.ID,
		StartDate: date(2024, 1, 1, 0, 0),
		EndDate:   date(2024, 1, 31, 0, 0),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	rate := 200.0
	if _, err := f.tracker.Entities.UpdateProject(f.ctx, f.project.ID, ProjectPatch{HourlyRate: &rate}); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	newEnd := date(2024, 1, 10, 15, 0)
	if _, err := f.tracker.Entries.Update(f.ctx, entry.ID, EntryPatch{EndTime: &newEnd}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := f.tracker.Entries.Delete(f.ctx, entry.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := f.tracker.Invoices.Get(inv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HourlyRate != 75 || !approx(got.TotalAmount, 150) || !approx(got.TotalHours, 2) {
		t.Errorf("invoice changed after source edits: %+v", got)
	}
	if len(got.Entries) != 1 || got.Entries[0].Duration != 7200 {
		t.Errorf("invoice entries changed: %+v", got.Entries)
	}
}

func TestGenerateInvoiceErrors(t *testing.T) {
	f := newFixture(t)
	otherClient, _ := f.tracker.Entities.AddClient(f.ctx, model.Client{Name: "Globex"})

	tests := []struct {
		name    string
		params  GenerateParams
		wantErr error
	}{
		{"unknown client", GenerateParams{ClientID: "x", ProjectID: f.project.ID}, ErrNotFound},
		{"unknown project", GenerateParams{ClientID: f.client.ID, ProjectID: "x"}, ErrNotFound},
		{"project of another client", GenerateParams{ClientID: otherClient.ID, ProjectID: f.project.ID}, ErrValidation},
		{"inverted range", GenerateParams{
			ClientID:  f.client.ID,
			ProjectID: f.project.ID,
			StartDate: date(2024, 2, 1, 0, 0),
			EndDate:   date(2024, 1, 1, 0, 0),
		}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.tracker.Invoices.Generate(f.ctx, tt.params); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if n := len(f.tracker.Invoices.List()); n != 0 {
		t.Errorf("invoices = %d after failures, want 0", n)
	}
}

func TestUpdateInvoiceStatusIsUnordered(t *testing.T) {
	f := newFixture(t)
	inv, err := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
		ClientID:  f.client.ID,
		ProjectID: f.project.ID,
		StartDate: date(2024, 1, 1, 0, 0),
		EndDate:   date(2024, 1, 31, 0, 0),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, status := range []model.InvoiceStatus{model.InvoicePaid, model.InvoiceDraft, model.InvoiceOverdue, model.InvoiceSent} {
		got, err := f.tracker.Invoices.UpdateStatus(f.ctx, inv.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
		if got.Status != status {
			t.Errorf("Status = %q, want %q", got.Status, status)
		}
	}

	if _, err := f.tracker.Invoices.UpdateStatus(f.ctx, inv.ID, "void"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown status: err = %v, want ErrValidation", err)
	}
	if _, err := f.tracker.Invoices.UpdateStatus(f.ctx, "missing", model.InvoicePaid); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown invoice: err = %v, want ErrNotFound", err)
	}
}

func TestInvoiceFindByNumber(t *testing.T) {
	f := newFixture(t)
	inv, _ := f.tracker.Invoices.Generate(f.ctx, GenerateParams{
		ClientID:  f.client.ID,
		ProjectID: f.project.ID,
		StartDate: date(2024, 1, 1, 0, 0),
		EndDate:   date(2024, 1, 31, 0, 0),
	})

	got, err := f.tracker.Invoices.Find(inv.Number())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ID != inv.ID {
		t.Errorf("Find returned %s, want %s", got.ID, inv.ID)
	}
}
