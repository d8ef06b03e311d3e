package tracker

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/store"
)

type testEnv struct {
	store    *store.Store
	settings *SettingsRegistry
	projects *ProjectRegistry
	engine   *Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	settings, err := NewSettingsRegistry(st)
	if err != nil {
		t.Fatalf("Failed to create settings registry: %v", err)
	}
	projects, err := NewProjectRegistry(st, settings)
	if err != nil {
		t.Fatalf("Failed to create project registry: %v", err)
	}
	engine, err := NewEngine(st, projects, EngineConfig{})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	return &testEnv{store: st, settings: settings, projects: projects, engine: engine}
}

// createAndSelect creates a project and makes it current
func (env *testEnv) createAndSelect(t *testing.T, name string) *model.Project {
	t.Helper()
	p, err := env.projects.Create(name)
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if err := env.projects.Select(p.ID); err != nil {
		t.Fatalf("Failed to select project: %v", err)
	}
	return p
}

func localTime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.Local)
}

func TestStartStopCreatesEntry(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	t0 := localTime(2024, time.January, 1, 9, 0)
	t1 := localTime(2024, time.January, 1, 11, 30)

	env.engine.now = func() time.Time { return t0 }
	if err := env.engine.StartTracking(); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}
	if !env.engine.Tracking() {
		t.Fatal("Expected Tracking() after start")
	}

	env.engine.now = func() time.Time { return t1 }
	entry, err := env.engine.StopTracking()
	if err != nil {
		t.Fatalf("StopTracking failed: %v", err)
	}

	if entry.Duration != 150 {
		t.Errorf("Expected duration 150, got %v", entry.Duration)
	}
	if entry.Date != "2024-01-01" {
		t.Errorf("Expected date 2024-01-01, got %q", entry.Date)
	}
	if entry.ProjectID != p.ID || entry.ProjectName != "Website" {
		t.Errorf("Entry project snapshot wrong: %+v", entry)
	}
	if entry.ProjectColor != model.DefaultProjectColor {
		t.Errorf("Expected default color snapshot, got %q", entry.ProjectColor)
	}
	if env.engine.Tracking() {
		t.Error("Expected session cleared after stop")
	}
	if len(env.engine.Entries()) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(env.engine.Entries()))
	}
}

func TestStartWithoutProjectFails(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.StartTracking()
	if !errors.Is(err, ErrNoProjectSelected) {
		t.Errorf("Expected ErrNoProjectSelected, got %v", err)
	}
	if env.engine.Tracking() {
		t.Error("No session should exist after failed start")
	}
}

func TestUpdateNote(t *testing.T) {
	env := newTestEnv(t)
	env.createAndSelect(t, "Website")

	if err := env.engine.UpdateNote("too early"); !errors.Is(err, ErrNotTracking) {
		t.Errorf("Expected ErrNotTracking before start, got %v", err)
	}

	if err := env.engine.StartTracking(); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}
	if err := env.engine.UpdateNote("fixing the login flow"); err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}

	entry, err := env.engine.StopTracking()
	if err != nil {
		t.Fatalf("StopTracking failed: %v", err)
	}
	if entry.Note != "fixing the login flow" {
		t.Errorf("Expected session note on entry, got %q", entry.Note)
	}
}

func TestStopWithDeletedProjectKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Doomed")

	if err := env.engine.StartTracking(); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}
	if err := env.projects.Delete(p.ID); err != nil {
		t.Fatalf("Delete project failed: %v", err)
	}

	_, err := env.engine.StopTracking()
	if !errors.Is(err, ErrTrackedProjectGone) {
		t.Errorf("Expected ErrTrackedProjectGone, got %v", err)
	}
	if !env.engine.Tracking() {
		t.Error("Session must stay active when stop fails")
	}
	if len(env.engine.Entries()) != 0 {
		t.Error("No entry must be created by a failed stop")
	}
}

func TestOrphanStopWhenConfigured(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Doomed")

	engine, err := NewEngine(env.store, env.projects, EngineConfig{AllowOrphanStop: true})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if err := engine.StartTracking(); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}
	if err := env.projects.Delete(p.ID); err != nil {
		t.Fatalf("Delete project failed: %v", err)
	}

	entry, err := engine.StopTracking()
	if err != nil {
		t.Fatalf("Orphan stop should succeed when configured: %v", err)
	}
	if entry.ProjectID != p.ID {
		t.Errorf("Expected dangling project id %q, got %q", p.ID, entry.ProjectID)
	}
	if entry.ProjectName != "" {
		t.Errorf("Expected empty name snapshot for orphan entry, got %q", entry.ProjectName)
	}
	if engine.Tracking() {
		t.Error("Session must be cleared after orphan stop")
	}
}

func TestTodayTracked(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	day := localTime(2024, time.March, 5, 0, 0)
	env.engine.now = func() time.Time { return day }

	for _, spec := range []struct {
		start, end time.Time
	}{
		{localTime(2024, time.March, 5, 9, 0), localTime(2024, time.March, 5, 10, 0)},   // 60
		{localTime(2024, time.March, 5, 14, 0), localTime(2024, time.March, 5, 14, 45)}, // 45
		{localTime(2024, time.March, 4, 9, 0), localTime(2024, time.March, 4, 12, 0)},   // other day
	} {
		if _, err := env.engine.AddManualEntry(model.TimeEntry{
			ProjectID: p.ID,
			StartTime: spec.start,
			EndTime:   spec.end,
		}); err != nil {
			t.Fatalf("AddManualEntry failed: %v", err)
		}
	}

	if got := env.engine.TodayTracked(); got != 105 {
		t.Errorf("Expected TodayTracked 105, got %v", got)
	}
}

func TestZeroLengthManualEntryAccepted(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	at := localTime(2024, time.February, 1, 8, 0)
	entry, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: at,
		EndTime:   at,
	})
	if err != nil {
		t.Fatalf("Zero-length entry must be accepted: %v", err)
	}
	if entry.Duration != 0 {
		t.Errorf("Expected duration 0, got %v", entry.Duration)
	}
}

func TestManualEntryEndBeforeStartRejected(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	_, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 9, 0),
		EndTime:   localTime(2024, time.February, 1, 8, 0),
	})
	if !errors.Is(err, ErrEndBeforeStart) {
		t.Errorf("Expected ErrEndBeforeStart, got %v", err)
	}
	if len(env.engine.Entries()) != 0 {
		t.Error("Rejected entry must not be stored")
	}
}

func TestManualEntryRespectsSuppliedDuration(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	entry, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 10, 0),
		Duration:  90, // Caller-supplied, deliberately not end-start
	})
	if err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}
	if entry.Duration != 90 {
		t.Errorf("Supplied duration must not be recomputed, got %v", entry.Duration)
	}
}

func TestManualEntrySnapshotsProject(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")
	if _, err := env.projects.Update(p.ID, ProjectPatch{Color: strPtr("#FF0000")}); err != nil {
		t.Fatalf("Update project failed: %v", err)
	}

	entry, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 9, 0),
	})
	if err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}
	if entry.ProjectName != "Website" || entry.ProjectColor != "#FF0000" {
		t.Errorf("Expected snapshot of name/color, got %q/%q", entry.ProjectName, entry.ProjectColor)
	}
}

func TestEditRecomputesDuration(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	entry, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 9, 0),
	})
	if err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}

	newEnd := localTime(2024, time.February, 2, 10, 30)
	updated, err := env.engine.EditEntry(entry.ID, EntryPatch{EndTime: &newEnd})
	if err != nil {
		t.Fatalf("EditEntry failed: %v", err)
	}
	if updated.Duration != model.CalculateDuration(entry.StartTime, newEnd) {
		t.Errorf("Duration not recomputed: got %v", updated.Duration)
	}
	if updated.Date != "2024-02-02" {
		t.Errorf("Date must follow the new end time, got %q", updated.Date)
	}
}

func TestEditRejectsInvertedRange(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	entry, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 9, 0),
	})
	if err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}

	badEnd := localTime(2024, time.February, 1, 7, 0)
	if _, err := env.engine.EditEntry(entry.ID, EntryPatch{EndTime: &badEnd}); !errors.Is(err, ErrEndBeforeStart) {
		t.Errorf("Expected ErrEndBeforeStart, got %v", err)
	}
}

// Changing an entry's project re-snapshots the color from the registry's
// current value, but the stale name stays unless the caller supplies one.
func TestEditProjectChangeLeavesStaleName(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Alpha")
	q, err := env.projects.Create("Beta")
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}
	if _, err := env.projects.Update(q.ID, ProjectPatch{Color: strPtr("#00FF00")}); err != nil {
		t.Fatalf("Update project failed: %v", err)
	}

	entry, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 9, 0),
	})
	if err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}

	updated, err := env.engine.EditEntry(entry.ID, EntryPatch{ProjectID: &q.ID})
	if err != nil {
		t.Fatalf("EditEntry failed: %v", err)
	}
	if updated.ProjectName != "Alpha" {
		t.Errorf("Name must stay stale on project change, got %q", updated.ProjectName)
	}
	if updated.ProjectColor != "#00FF00" {
		t.Errorf("Color must be re-snapshot from the new project, got %q", updated.ProjectColor)
	}
}

func TestDeleteEntryIdempotent(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	entry, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 9, 0),
	})
	if err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}

	if err := env.engine.DeleteEntry(entry.ID); err != nil {
		t.Fatalf("First delete failed: %v", err)
	}
	if err := env.engine.DeleteEntry(entry.ID); err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if len(env.engine.Entries()) != 0 {
		t.Errorf("Expected empty collection, got %d entries", len(env.engine.Entries()))
	}
}

func TestRecoveryRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.createAndSelect(t, "Website")

	t0 := localTime(2024, time.January, 1, 9, 0)
	env.engine.now = func() time.Time { return t0 }
	if err := env.engine.StartTracking(); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}
	if err := env.engine.UpdateNote("before reload"); err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}

	// Simulate a restart: a fresh engine over the same store
	recovered, err := NewEngine(env.store, env.projects, EngineConfig{})
	if err != nil {
		t.Fatalf("Failed to recover engine: %v", err)
	}
	if !recovered.Tracking() {
		t.Fatal("Recovered engine must be tracking")
	}
	session := recovered.Session()
	if !session.StartTime.Equal(t0) {
		t.Errorf("Expected recovered start %v, got %v", t0, session.StartTime)
	}
	if session.Note != "before reload" {
		t.Errorf("Expected recovered note, got %q", session.Note)
	}

	t1 := localTime(2024, time.January, 1, 10, 0)
	recovered.now = func() time.Time { return t1 }
	entry, err := recovered.StopTracking()
	if err != nil {
		t.Fatalf("StopTracking after recovery failed: %v", err)
	}
	if !entry.StartTime.Equal(t0) || !entry.EndTime.Equal(t1) {
		t.Errorf("Expected entry [%v, %v], got [%v, %v]", t0, t1, entry.StartTime, entry.EndTime)
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website Redesign")
	q, err := env.projects.Create("Backend")
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}

	add := func(projectID, note string) {
		t.Helper()
		if _, err := env.engine.AddManualEntry(model.TimeEntry{
			ProjectID: projectID,
			StartTime: localTime(2024, time.February, 1, 8, 0),
			EndTime:   localTime(2024, time.February, 1, 9, 0),
			Note:      note,
		}); err != nil {
			t.Fatalf("AddManualEntry failed: %v", err)
		}
	}
	add(p.ID, "landing page")
	add(q.ID, "database migration")
	add(q.ID, "")

	if got := len(env.engine.Search("WEBSITE")); got != 1 {
		t.Errorf("Expected 1 match on project name, got %d", got)
	}
	if got := len(env.engine.Search("migration")); got != 1 {
		t.Errorf("Expected 1 match on note, got %d", got)
	}
	if got := len(env.engine.Search("")); got != 3 {
		t.Errorf("Empty query must return all entries, got %d", got)
	}
	if got := len(env.engine.Search("nothing here")); got != 0 {
		t.Errorf("Expected no matches, got %d", got)
	}
}

func TestEntriesInRangeInclusive(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	start := localTime(2024, time.February, 1, 8, 0)
	if _, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}

	if got := len(env.engine.EntriesInRange(start, start)); got != 1 {
		t.Errorf("Range bounds must be inclusive, got %d entries", got)
	}
	if got := len(env.engine.EntriesInRange(start.Add(time.Minute), start.Add(time.Hour))); got != 0 {
		t.Errorf("Entry outside range must be excluded, got %d", got)
	}
}

func TestMonthSummary(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Alpha")
	q, err := env.projects.Create("Beta")
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}

	add := func(projectID string, start time.Time, minutes int) {
		t.Helper()
		if _, err := env.engine.AddManualEntry(model.TimeEntry{
			ProjectID: projectID,
			StartTime: start,
			EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		}); err != nil {
			t.Fatalf("AddManualEntry failed: %v", err)
		}
	}
	add(p.ID, localTime(2024, time.March, 5, 9, 0), 60)
	add(p.ID, localTime(2024, time.March, 20, 9, 0), 30)
	add(q.ID, localTime(2024, time.March, 7, 9, 0), 45)
	add(p.ID, localTime(2024, time.April, 1, 9, 0), 15)

	summary := env.engine.MonthSummary()

	march := summary["3/2024"]
	if march == nil {
		t.Fatal("Expected a 3/2024 bucket")
	}
	if march.TotalMinutes != 135 {
		t.Errorf("Expected March total 135, got %v", march.TotalMinutes)
	}
	if march.Projects[p.ID].TotalMinutes != 90 || march.Projects[p.ID].Name != "Alpha" {
		t.Errorf("Alpha March share wrong: %+v", march.Projects[p.ID])
	}
	if march.Projects[q.ID].TotalMinutes != 45 {
		t.Errorf("Beta March share wrong: %+v", march.Projects[q.ID])
	}

	april := summary["4/2024"]
	if april == nil || april.TotalMinutes != 15 {
		t.Errorf("April bucket wrong: %+v", april)
	}
}

func TestWeekTracked(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")

	// Wednesday 2024-03-06; the Monday-start week is Mar 4 - Mar 10
	env.engine.now = func() time.Time { return localTime(2024, time.March, 6, 12, 0) }

	add := func(start time.Time, minutes int) {
		t.Helper()
		if _, err := env.engine.AddManualEntry(model.TimeEntry{
			ProjectID: p.ID,
			StartTime: start,
			EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		}); err != nil {
			t.Fatalf("AddManualEntry failed: %v", err)
		}
	}
	add(localTime(2024, time.March, 4, 9, 0), 60)  // Monday, in week
	add(localTime(2024, time.March, 10, 9, 0), 30) // Sunday, in week
	add(localTime(2024, time.March, 3, 9, 0), 45)  // Previous Sunday, out

	if got := env.engine.WeekTracked(1); got != 90 {
		t.Errorf("Expected 90 minutes in Monday-start week, got %v", got)
	}
	// Sunday-start week around the same Wednesday is Mar 3 - Mar 9
	if got := env.engine.WeekTracked(0); got != 105 {
		t.Errorf("Expected 105 minutes in Sunday-start week, got %v", got)
	}
}

func strPtr(s string) *string { return &s }
