package tracker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/htdinh/tictac/internal/model"
)

// Backup is the export file format.
type Backup struct {
	Projects    []model.Project   `json:"projects"`
	TimeEntries []model.TimeEntry `json:"timeEntries"`
	ExportedAt  time.Time         `json:"exportedAt"`
}

// Export serializes all projects and time entries as a pretty-printed
// JSON blob.
func Export(projects *ProjectRegistry, engine *Engine) ([]byte, error) {
	backup := Backup{
		Projects:    projects.All(),
		TimeEntries: engine.Entries(),
		ExportedAt:  time.Now(),
	}
	// Empty collections export as [], not null
	if backup.Projects == nil {
		backup.Projects = []model.Project{}
	}
	if backup.TimeEntries == nil {
		backup.TimeEntries = []model.TimeEntry{}
	}

	return json.MarshalIndent(backup, "", "  ")
}

// Import parses an export blob and fully replaces both collections.
// There is no merging or deduplication; the imported data wins.
func Import(data []byte, projects *ProjectRegistry, engine *Engine) error {
	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("failed to parse import data: %w", err)
	}

	if backup.Projects != nil {
		if err := projects.Replace(backup.Projects); err != nil {
			return fmt.Errorf("failed to import projects: %w", err)
		}
	}
	if backup.TimeEntries != nil {
		if err := engine.ReplaceEntries(backup.TimeEntries); err != nil {
			return fmt.Errorf("failed to import time entries: %w", err)
		}
	}
	return nil
}
