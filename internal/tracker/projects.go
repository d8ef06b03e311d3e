package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/store"
)

var (
	// ErrEmptyProjectName is returned when creating a project without a name.
	ErrEmptyProjectName = errors.New("project name must not be empty")

	// ErrProjectNotFound is returned when an id resolves to no project.
	ErrProjectNotFound = errors.New("project not found")
)

// ProjectPatch updates individual project fields.
type ProjectPatch struct {
	Name       *string
	Color      *string
	HourlyRate *float64
	Goals      *model.Goals
	Rates      *model.ProjectRates
}

// ProjectRegistry owns the project collection and the current-project
// pointer. It is the only component that mutates either.
type ProjectRegistry struct {
	store    *store.Store
	settings *SettingsRegistry

	projects  []model.Project
	currentID string
}

// NewProjectRegistry loads the project collection and current pointer
func NewProjectRegistry(st *store.Store, settings *SettingsRegistry) (*ProjectRegistry, error) {
	r := &ProjectRegistry{store: st, settings: settings}

	if _, err := st.Get(store.KeyProjects, &r.projects); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	if _, err := st.Get(store.KeyCurrentProject, &r.currentID); err != nil {
		return nil, fmt.Errorf("failed to load current project: %w", err)
	}

	return r, nil
}

// Create adds a new project. Goal and rate defaults are inherited from
// global settings at creation time.
func (r *ProjectRegistry) Create(name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyProjectName
	}

	s := r.settings.Get()
	p := model.Project{
		ID:         uuid.New().String(),
		Name:       name,
		HourlyRate: 0,
		Goals:      s.Goals,
		Rates: model.ProjectRates{
			ContributionPercentage: s.Rates.ContributionPercentage,
			Currency:               s.Rates.Currency,
		},
		CreatedAt: time.Now(),
	}

	r.projects = append(r.projects, p)
	if err := r.store.Put(store.KeyProjects, r.projects); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update merges the patch into the matching project and persists
func (r *ProjectRegistry) Update(id string, patch ProjectPatch) (*model.Project, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}

	p := &r.projects[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrEmptyProjectName
		}
		p.Name = name
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	if patch.HourlyRate != nil {
		p.HourlyRate = *patch.HourlyRate
	}
	if patch.Goals != nil {
		p.Goals = *patch.Goals
	}
	if patch.Rates != nil {
		p.Rates = *patch.Rates
	}

	if err := r.store.Put(store.KeyProjects, r.projects); err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

// Delete removes a project. The current-project pointer is cleared if it
// referenced the deleted project. Time entries are not cascaded.
func (r *ProjectRegistry) Delete(id string) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return ErrProjectNotFound
	}

	r.projects = append(r.projects[:idx], r.projects[idx+1:]...)
	if err := r.store.Put(store.KeyProjects, r.projects); err != nil {
		return err
	}

	if r.currentID == id {
		r.currentID = ""
		if err := r.store.Delete(store.KeyCurrentProject); err != nil {
			return err
		}
	}
	return nil
}

// Select makes a project the target for the next tracking session
func (r *ProjectRegistry) Select(id string) error {
	if r.indexOf(id) < 0 {
		return ErrProjectNotFound
	}
	r.currentID = id
	return r.store.Put(store.KeyCurrentProject, id)
}

// CurrentID returns the selected project id, or "" if none
func (r *ProjectRegistry) CurrentID() string {
	return r.currentID
}

// Current resolves the selected project. Nil if none is selected or the
// pointer dangles.
func (r *ProjectRegistry) Current() *model.Project {
	if r.currentID == "" {
		return nil
	}
	return r.Get(r.currentID)
}

// Get returns the project with the given id, or nil
func (r *ProjectRegistry) Get(id string) *model.Project {
	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	p := r.projects[idx]
	return &p
}

// All returns a copy of the project collection
func (r *ProjectRegistry) All() []model.Project {
	out := make([]model.Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Replace swaps the whole collection, used by data import. The current
// pointer is cleared if it no longer resolves.
func (r *ProjectRegistry) Replace(projects []model.Project) error {
	r.projects = make([]model.Project, len(projects))
	copy(r.projects, projects)

	if err := r.store.Put(store.KeyProjects, r.projects); err != nil {
		return err
	}

	if r.currentID != "" && r.indexOf(r.currentID) < 0 {
		r.currentID = ""
		if err := r.store.Delete(store.KeyCurrentProject); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProjectRegistry) indexOf(id string) int {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return i
		}
	}
	return -1
}
