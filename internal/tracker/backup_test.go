package tracker

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/htdinh/tictac/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Website")
	if _, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 9, 30),
		Note:      "roundtrip",
	}); err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}

	blob, err := Export(env.projects, env.engine)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Import into a fresh environment
	dst := newTestEnv(t)
	if err := Import(blob, dst.projects, dst.engine); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	srcProjects, dstProjects := env.projects.All(), dst.projects.All()
	if !reflect.DeepEqual(jsonNormalize(t, srcProjects), jsonNormalize(t, dstProjects)) {
		t.Errorf("Projects differ after round trip:\n%+v\n%+v", srcProjects, dstProjects)
	}
	srcEntries, dstEntries := env.engine.Entries(), dst.engine.Entries()
	if !reflect.DeepEqual(jsonNormalize(t, srcEntries), jsonNormalize(t, dstEntries)) {
		t.Errorf("Entries differ after round trip:\n%+v\n%+v", srcEntries, dstEntries)
	}
}

func TestImportReplacesExistingData(t *testing.T) {
	env := newTestEnv(t)
	p := env.createAndSelect(t, "Old")
	if _, err := env.engine.AddManualEntry(model.TimeEntry{
		ProjectID: p.ID,
		StartTime: localTime(2024, time.February, 1, 8, 0),
		EndTime:   localTime(2024, time.February, 1, 9, 0),
	}); err != nil {
		t.Fatalf("AddManualEntry failed: %v", err)
	}

	blob := []byte(`{
		"projects": [{"id": "imported", "name": "Imported", "createdAt": "2024-01-01T00:00:00Z"}],
		"timeEntries": [],
		"exportedAt": "2024-06-01T00:00:00Z"
	}`)
	if err := Import(blob, env.projects, env.engine); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	projects := env.projects.All()
	if len(projects) != 1 || projects[0].ID != "imported" {
		t.Errorf("Import must fully replace projects: %+v", projects)
	}
	if len(env.engine.Entries()) != 0 {
		t.Error("Import must fully replace entries")
	}
	if env.projects.CurrentID() != "" {
		t.Error("Dangling current pointer must be cleared by import")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	if err := Import([]byte("not json"), env.projects, env.engine); err == nil {
		t.Error("Expected an error for unparseable input")
	}
}

func TestExportShape(t *testing.T) {
	env := newTestEnv(t)

	blob, err := Export(env.projects, env.engine)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	for _, key := range []string{"projects", "timeEntries", "exportedAt"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Export missing %q", key)
		}
	}
	if string(raw["projects"]) != "[]" {
		t.Errorf("Empty project collection must export as [], got %s", raw["projects"])
	}
}

// jsonNormalize strips type-level differences (monotonic clocks,
// timezone representations) the way a real export file would.
func jsonNormalize(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return string(b)
}
