package billing

import (
	"errors"
	"testing"

	"github.com/existflow/ironbill/internal/model"
)

func TestDeleteProjectWithEntriesIsRefused(t *testing.T) {
	f := newFixture(t)
	f.manual(t, date(2024, 1, 10, 9, 0), date(2024, 1, 10, 10, 0))

	ok, err := f.tracker.Entities.DeleteProject(f.ctx, f.project.ID)
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if ok {
		t.Fatal("DeleteProject succeeded with a dependent entry")
	}
	got, err := f.tracker.Entities.GetProject(f.project.ID)
	if err != nil {
		t.Fatalf("project gone after refused delete: %v", err)
	}
	if got != f.project {
		t.Errorf("project changed: %+v", got)
	}
}

func TestDeleteProjectWithActiveTimerIsRefused(t *testing.T) {
	f := newFixture(t)
	_, _ = f.tracker.Timer.Start(f.ctx, f.project.ID)

	ok, err := f.tracker.Entities.DeleteProject(f.ctx, f.project.ID)
	if err != nil || ok {
		t.Errorf("DeleteProject = %v, %v; want false, nil", ok, err)
	}
}

func TestDeleteProjectWithoutEntries(t *testing.T) {
	f := newFixture(t)

	ok, err := f.tracker.Entities.DeleteProject(f.ctx, f.project.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteProject = %v, %v; want true, nil", ok, err)
	}
	if _, err := f.tracker.Entities.GetProject(f.project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject after delete: err = %v, want ErrNotFound", err)
	}
	if _, err := f.tracker.Entities.DeleteProject(f.ctx, f.project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteClientGuard(t *testing.T) {
	f := newFixture(t)

	ok, err := f.tracker.Entities.DeleteClient(f.ctx, f.client.ID)
	if err != nil || ok {
		t.Fatalf("DeleteClient with project = %v, %v; want false, nil", ok, err)
	}
	if _, err := f.tracker.Entities.GetClient(f.client.ID); err != nil {
		t.Fatalf("client gone after refused delete: %v", err)
	}

	if ok, err := f.tracker.Entities.DeleteProject(f.ctx, f.project.ID); !ok || err != nil {
		t.Fatalf("DeleteProject = %v, %v", ok, err)
	}
	ok, err = f.tracker.Entities.DeleteClient(f.ctx, f.client.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteClient without projects = %v, %v; want true, nil", ok, err)
	}
}

func TestAddProjectValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		project model.Project
		wantErr error
	}{
		{"negative rate", model.Project{ClientID: f.client.ID, Name: "X", HourlyRate: -1}, ErrValidation},
		{"missing name", model.Project{ClientID: f.client.ID, Name: "  "}, ErrValidation},
		{"bad status", model.Project{ClientID: f.client.ID, Name: "X", Status: "archived"}, ErrValidation},
		{"unknown client", model.Project{ClientID: "nobody", Name: "X"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.tracker.Entities.AddProject(f.ctx, tt.project); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if n := len(f.tracker.Entities.ListProjects()); n != 1 {
		t.Errorf("projects = %d, want 1", n)
	}
}

func TestAddProjectDefaultsToActive(t *testing.T) {
	f := newFixture(t)
	if f.project.Status != model.ProjectActive {
		t.Errorf("Status = %q, want active", f.project.Status)
	}
}

func TestUpdateProjectRejectsNegativeRate(t *testing.T) {
	f := newFixture(t)
	rate := -5.0
	if _, err := f.tracker.Entities.UpdateProject(f.ctx, f.project.ID, ProjectPatch{HourlyRate: &rate}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	got, _ := f.tracker.Entities.GetProject(f.project.ID)
	if got.HourlyRate != 75 {
		t.Errorf("HourlyRate = %v after rejected update, want 75", got.HourlyRate)
	}
}

func TestAddClientRequiresName(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tracker.Entities.AddClient(f.ctx, model.Client{Email: "a@b.c"}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestFindProject(t *testing.T) {
	f := newFixture(t)

	for _, ref := range []string{f.project.ID, f.project.ID[:6], "website redesign", "web"} {
		got, err := f.tracker.Entities.FindProject(ref)
		if err != nil {
			t.Errorf("FindProject(%q): %v", ref, err)
			continue
		}
		if got.ID != f.project.ID {
			t.Errorf("FindProject(%q) = %s", ref, got.ID)
		}
	}
	if _, err := f.tracker.Entities.FindProject("zzz-nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFindProjectAmbiguousNamePrefix(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tracker.Entities.AddProject(f.ctx, model.Project{ClientID: f.client.ID, Name: "Website Hosting"}); err != nil {
		t.Fatalf("AddProject: %v", err)
	}

	if _, err := f.tracker.Entities.FindProject("website"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for an ambiguous prefix", err)
	}
	got, err := f.tracker.Entities.FindProject("website hosting")
	if err != nil || got.Name != "Website Hosting" {
		t.Errorf("FindProject(exact name) = %v, %v", got.Name, err)
	}
}
