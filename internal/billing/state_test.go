package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/existflow/ironbill/internal/model"
)

func TestTrackerReopenRestoresState(t *testing.T) {
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
	if _, err := f.tracker.Timer.Start(f.ctx, f.project.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.clock.Advance(5 * time.Minute)
	if _, err := f.tracker.Timer.Pause(f.ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	reopened := Open(f.ctx, f.gw, WithClock(f.clock.Now))
	if w := reopened.Warnings(); len(w) != 0 {
		t.Fatalf("Warnings = %v", w)
	}

	if got, err := reopened.Entities.GetClient(f.client.ID); err != nil || got.Name != "Acme Corp" {
		t.Errorf("client = %+v, %v", got, err)
	}
	if got, err := reopened.Entities.GetProject(f.project.ID); err != nil || got.HourlyRate != 75 {
		t.Errorf("project = %+v, %v", got, err)
	}
	if n := len(reopened.Entries.List()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
	got, err := reopened.Invoices.Get(inv.ID)
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if !approx(got.TotalAmount, 600) || len(got.Entries) != 1 {
		t.Errorf("invoice = %+v", got)
	}

	if reopened.Timer.State() != TimerPaused {
		t.Fatalf("timer state = %v, want paused", reopened.Timer.State())
	}
	if _, err := reopened.Timer.Resume(f.ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	f.clock.Advance(5 * time.Minute)
	entry, err := reopened.Timer.Stop(f.ctx)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if entry.Duration != 600 {
		t.Errorf("Duration = %d, want 600", entry.Duration)
	}
}

func TestSaveFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.gw.failSave = true

	c, err := f.tracker.Entities.AddClient(f.ctx, model.Client{Name: "Globex"})
	if err == nil {
		t.Fatal("AddClient succeeded with a failing gateway")
	}
	if !IsWarning(err) || !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	if _, err := f.tracker.Entities.GetClient(c.ID); err != nil {
		t.Errorf("in-memory client missing after failed save: %v", err)
	}

	if IsWarning(ErrNotFound) || IsWarning(nil) {
		t.Error("IsWarning matched a non-persistence error")
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	f := newFixture(t)
	f.gw.failLoad = true

	tr := Open(f.ctx, f.gw)
	if n := len(tr.Warnings()); n != len(Collections) {
		t.Errorf("Warnings = %d, want %d", n, len(Collections))
	}
	for _, w := range tr.Warnings() {
		if !errors.Is(w, ErrPersistence) {
			t.Errorf("warning %v is not ErrPersistence", w)
		}
	}
	if len(tr.Entities.ListClients()) != 0 || len(tr.Entities.ListProjects()) != 0 {
		t.Error("state not empty after failed load")
	}
	if tr.Timer.State() != TimerIdle {
		t.Errorf("timer = %v, want idle", tr.Timer.State())
	}
}

func TestCorruptCollectionStartsEmpty(t *testing.T) {
	f := newFixture(t)
	f.gw.data[CollectionClients] = []byte("{not json")

	tr := Open(f.ctx, f.gw)
	if n := len(tr.Warnings()); n != 1 {
		t.Fatalf("Warnings = %d, want 1", n)
	}
	if n := len(tr.Entities.ListClients()); n != 0 {
		t.Errorf("clients = %d, want 0", n)
	}
	if n := len(tr.Entities.ListProjects()); n != 1 {
		t.Errorf("projects = %d, want 1", n)
	}
}

func TestMemoryOnlyTracker(t *testing.T) {
	ctx := context.Background()
	tr := Open(ctx, nil)
	c, err := tr.Entities.AddClient(ctx, model.Client{Name: "Solo"})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	if c.ID == "" {
		t.Error("no id assigned")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	f := newFixture(t)
	f.manual(t, date(2024, 1, 10, 9, 0), date(2024, 1, 10, 10, 0))

	s := f.tracker.Snapshot()
	s.Clients[0].Name = "Changed"
	*s.Entries[0].EndTime = time.Time{}

	if got, _ := f.tracker.Entities.GetClient(f.client.ID); got.Name != "Acme Corp" {
		t.Errorf("client renamed through snapshot: %q", got.Name)
	}
	if e := f.tracker.Entries.List()[0]; e.EndTime.IsZero() {
		t.Error("entry changed through snapshot")
	}
}

func TestPersistWritesOnlyTouchedCollections(t *testing.T) {
	f := newFixture(t)
	before := f.gw.saves[CollectionInvoices]
	f.manual(t, date(2024, 1, 10, 9, 0), date(2024, 1, 10, 10, 0))

	if f.gw.saves[CollectionEntries] == 0 {
		t.Error("entries not saved")
	}
	if f.gw.saves[CollectionInvoices] != before {
		t.Error("invoices saved by an entry change")
	}
}
