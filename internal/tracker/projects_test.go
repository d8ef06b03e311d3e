package tracker

import (
	"errors"
	"testing"

	"github.com/htdinh/tictac/internal/model"
)

func TestCreateProjectInheritsSettingsDefaults(t *testing.T) {
	env := newTestEnv(t)

	rate := 150000.0
	pct := 25.0
	currency := model.CurrencyUSD
	if err := env.settings.UpdateRates(RatesPatch{
		HourlyRate:             &rate,
		ContributionPercentage: &pct,
		Currency:               &currency,
	}); err != nil {
		t.Fatalf("UpdateRates failed: %v", err)
	}

	p, err := env.projects.Create("Consulting")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if p.Rates.ContributionPercentage != 25 || p.Rates.Currency != model.CurrencyUSD {
		t.Errorf("Rates not inherited from settings: %+v", p.Rates)
	}
	if p.Goals != env.settings.Get().Goals {
		t.Errorf("Goals not inherited from settings: %+v", p.Goals)
	}
	if p.HourlyRate != 0 {
		t.Errorf("New projects start with hourly rate 0, got %v", p.HourlyRate)
	}
	if p.ID == "" || p.CreatedAt.IsZero() {
		t.Errorf("Missing id or creation time: %+v", p)
	}
}

func TestCreateProjectRequiresName(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.projects.Create("   "); !errors.Is(err, ErrEmptyProjectName) {
		t.Errorf("Expected ErrEmptyProjectName, got %v", err)
	}
}

func TestDeleteProjectClearsCurrentPointer(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	if err := env.projects.Delete(p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if env.projects.CurrentID() != "" {
		t.Error("Current pointer must be cleared when its project is deleted")
	}
	if env.projects.Current() != nil {
		t.Error("Current() must be nil after the deletion")
	}
}

func TestDeleteOtherProjectKeepsPointer(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Keep")
	q, err := env.projects.Create("Drop")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := env.projects.Delete(q.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if env.projects.CurrentID() != p.ID {
		t.Errorf("Pointer must survive deleting another project, got %q", env.projects.CurrentID())
	}
}

func TestSelectUnknownProjectFails(t *testing.T) {
	env := newTestEnv(t)

	if err := env.projects.Select("ghost"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Old Name")

	name := "New Name"
	rate := 200000.0
	updated, err := env.projects.Update(p.ID, ProjectPatch{Name: &name, HourlyRate: &rate})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "New Name" || updated.HourlyRate != 200000 {
		t.Errorf("Patch not applied: %+v", updated)
	}

	// Unpatched fields survive
	if updated.Goals != p.Goals {
		t.Errorf("Goals must not change without a patch: %+v", updated.Goals)
	}
}

func TestProjectsPersistAcrossReload(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	reloaded, err := NewProjectRegistry(env.store, env.settings)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.CurrentID() != p.ID {
		t.Errorf("Current pointer lost on reload: %q", reloaded.CurrentID())
	}
	got := reloaded.Get(p.ID)
	if got == nil || got.Name != "Website" {
		t.Errorf("Project lost on reload: %+v", got)
	}
}
