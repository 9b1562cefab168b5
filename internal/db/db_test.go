package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/model"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "nested", "ironbill.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSnapshotLoadSave(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	data, err := d.Load(ctx, "clients")
	if err != nil || data != nil {
		t.Fatalf("Load of missing collection = %q, %v; want nil, nil", data, err)
	}

	if err := d.Save(ctx, "clients", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := d.Save(ctx, "clients", []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err = d.Load(ctx, "clients")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != `[{"id":"2"}]` {
		t.Errorf("Load = %s", data)
	}

	infos, err := d.Collections(ctx)
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if len(infos) != 1 || infos[0].Version != 2 || infos[0].Size != len(data) {
		t.Errorf("Collections = %+v", infos)
	}

	if err := d.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if data, _ := d.Load(ctx, "clients"); data != nil {
		t.Errorf("Load after Clear = %s", data)
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if v, err := d.GetSetting(ctx, SettingCurrentProject); err != nil || v != "" {
		t.Fatalf("GetSetting unset = %q, %v", v, err)
	}
	if err := d.SetSetting(ctx, SettingCurrentProject, "p1"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := d.SetSetting(ctx, SettingCurrentProject, "p2"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if v, _ := d.GetSetting(ctx, SettingCurrentProject); v != "p2" {
		t.Errorf("GetSetting = %q, want p2", v)
	}
	if err := d.DeleteSetting(ctx, SettingCurrentProject); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if v, _ := d.GetSetting(ctx, SettingCurrentProject); v != "" {
		t.Errorf("GetSetting after delete = %q", v)
	}
}

func TestTrackerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ironbill.db")

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tr := billing.Open(ctx, d)
	c, err := tr.Entities.AddClient(ctx, model.Client{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	p, err := tr.Entities.AddProject(ctx, model.Project{ClientID: c.ID, Name: "Website", HourlyRate: 75})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if _, err := tr.Timer.Start(ctx, p.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Close()

	d, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()

	tr = billing.Open(ctx, d)
	if w := tr.Warnings(); len(w) != 0 {
		t.Fatalf("Warnings = %v", w)
	}
	if tr.Timer.State() != billing.TimerRunning {
		t.Errorf("timer = %v, want running", tr.Timer.State())
	}
	if got, err := tr.Entities.GetProject(p.ID); err != nil || got.HourlyRate != 75 {
		t.Errorf("project = %+v, %v", got, err)
	}
}
