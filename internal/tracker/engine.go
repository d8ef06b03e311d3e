package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/store"
)

var (
	// ErrNoProjectSelected is returned when tracking is started with no
	// current project.
	ErrNoProjectSelected = errors.New("no project selected")

	// ErrNotTracking is returned by session operations outside a session.
	ErrNotTracking = errors.New("no active session")

	// ErrTrackedProjectGone is returned when a session cannot be stopped
	// because its project was deleted mid-session.
	ErrTrackedProjectGone = errors.New("tracked project no longer exists")

	// ErrEndBeforeStart is returned for entries whose end precedes their
	// start. Zero-length entries are accepted.
	ErrEndBeforeStart = errors.New("entry end time precedes start time")

	// ErrEntryNotFound is returned when editing a nonexistent entry.
	ErrEntryNotFound = errors.New("time entry not found")
)

// EngineConfig tunes engine edge-case behavior.
type EngineConfig struct {
	// AllowOrphanStop lets StopTracking finalize a session whose project
	// has been deleted, producing an entry with a dangling project id.
	// When false (the default), stopping such a session fails and the
	// session stays active until the project reappears or the caller
	// gives up.
	AllowOrphanStop bool
}

// EntryPatch updates individual time entry fields.
type EntryPatch struct {
	ProjectID   *string
	ProjectName *string
	StartTime   *time.Time
	EndTime     *time.Time
	Note        *string
}

// ProjectTotal is one project's share of a month.
type ProjectTotal struct {
	Name         string  `json:"name"`
	TotalMinutes float64 `json:"totalMinutes"`
}

// MonthTotal aggregates a calendar month of entries.
type MonthTotal struct {
	TotalMinutes float64                  `json:"totalMinutes"`
	Projects     map[string]*ProjectTotal `json:"projects"`
}

// Engine owns the time entry collection and the active session. Every
// mutation persists synchronously; queries recompute from the in-memory
// collection on demand.
type Engine struct {
	store    *store.Store
	projects *ProjectRegistry
	cfg      EngineConfig

	now func() time.Time

	entries []model.TimeEntry
	session *model.ActiveSession
}

// NewEngine loads persisted entries and recovers any in-progress session
func NewEngine(st *store.Store, projects *ProjectRegistry, cfg EngineConfig) (*Engine, error) {
	e := &Engine{
		store:    st,
		projects: projects,
		cfg:      cfg,
		now:      time.Now,
	}

	if _, err := st.Get(store.KeyTimeEntries, &e.entries); err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}

	var session model.ActiveSession
	found, err := st.Get(store.KeyActiveSession, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	if found {
		e.session = &session
	}

	return e, nil
}

// Tracking reports whether a session is in progress
func (e *Engine) Tracking() bool {
	return e.session != nil
}

// Session returns a copy of the active session, or nil
func (e *Engine) Session() *model.ActiveSession {
	if e.session == nil {
		return nil
	}
	s := *e.session
	return &s
}

// StartTracking begins a session against the current project. Starting
// is gated only on a project being selected; an existing session is
// replaced, not stopped.
func (e *Engine) StartTracking() error {
	projectID := e.projects.CurrentID()
	if projectID == "" {
		return ErrNoProjectSelected
	}

	e.session = &model.ActiveSession{
		ProjectID: projectID,
		StartTime: e.now(),
	}
	return e.store.Put(store.KeyActiveSession, e.session)
}

// UpdateNote replaces the in-progress session's note and re-persists it
func (e *Engine) UpdateNote(text string) error {
	if e.session == nil {
		return ErrNotTracking
	}
	e.session.Note = text
	return e.store.Put(store.KeyActiveSession, e.session)
}

// StopTracking finalizes the session into a new entry. If the tracked
// project has been deleted the stop fails and the session stays active,
// unless AllowOrphanStop is configured.
func (e *Engine) StopTracking() (*model.TimeEntry, error) {
	if e.session == nil {
		return nil, ErrNotTracking
	}

	project := e.projects.Get(e.session.ProjectID)
	if project == nil && !e.cfg.AllowOrphanStop {
		return nil, ErrTrackedProjectGone
	}

	end := e.now()
	entry := model.TimeEntry{
		ID:           e.newEntryID(end),
		ProjectID:    e.session.ProjectID,
		ProjectColor: model.DefaultProjectColor,
		StartTime:    e.session.StartTime,
		EndTime:      end,
		Duration:     model.CalculateDuration(e.session.StartTime, end),
		Note:         e.session.Note,
		Date:         model.DateKey(end),
	}
	if project != nil {
		entry.ProjectName = project.Name
		entry.ProjectColor = project.DisplayColor()
	}

	e.entries = append(e.entries, entry)
	if err := e.store.Put(store.KeyTimeEntries, e.entries); err != nil {
		return nil, err
	}

	e.session = nil
	if err := e.store.Delete(store.KeyActiveSession); err != nil {
		return &entry, err
	}
	return &entry, nil
}

// AddManualEntry appends a caller-built entry. A supplied Duration is
// respected; missing fields (id, duration, date, project snapshot) are
// filled in. The end must not precede the start.
func (e *Engine) AddManualEntry(entry model.TimeEntry) (*model.TimeEntry, error) {
	if entry.EndTime.Before(entry.StartTime) {
		return nil, ErrEndBeforeStart
	}

	if entry.ID == "" {
		entry.ID = e.newEntryID(e.now())
	}
	if entry.Duration == 0 {
		entry.Duration = model.CalculateDuration(entry.StartTime, entry.EndTime)
	}
	if entry.Date == "" {
		entry.Date = model.DateKey(entry.EndTime)
	}
	if project := e.projects.Get(entry.ProjectID); project != nil {
		if entry.ProjectName == "" {
			entry.ProjectName = project.Name
		}
		if entry.ProjectColor == "" {
			entry.ProjectColor = project.DisplayColor()
		}
	}
	if entry.ProjectColor == "" {
		entry.ProjectColor = model.DefaultProjectColor
	}

	e.entries = append(e.entries, entry)
	if err := e.store.Put(store.KeyTimeEntries, e.entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// EditEntry merges the patch into the matching entry. Duration is
// recomputed when either bound changes, and ProjectColor is re-snapshot
// from the registry's current value when the project changes.
// ProjectName only changes when the patch carries it; a project change
// without a name leaves the previous name in place.
func (e *Engine) EditEntry(id string, patch EntryPatch) (*model.TimeEntry, error) {
	idx := -1
	for i := range e.entries {
		if e.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrEntryNotFound
	}

	entry := e.entries[idx]
	if patch.StartTime != nil {
		entry.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		entry.EndTime = *patch.EndTime
		entry.Date = model.DateKey(entry.EndTime)
	}
	if entry.EndTime.Before(entry.StartTime) {
		return nil, ErrEndBeforeStart
	}
	if patch.StartTime != nil || patch.EndTime != nil {
		entry.Duration = model.CalculateDuration(entry.StartTime, entry.EndTime)
	}
	if patch.Note != nil {
		entry.Note = *patch.Note
	}
	if patch.ProjectName != nil {
		entry.ProjectName = *patch.ProjectName
	}
	if patch.ProjectID != nil && *patch.ProjectID != entry.ProjectID {
		entry.ProjectID = *patch.ProjectID
		if project := e.projects.Get(entry.ProjectID); project != nil {
			entry.ProjectColor = project.DisplayColor()
		} else {
			entry.ProjectColor = model.DefaultProjectColor
		}
	}

	e.entries[idx] = entry
	if err := e.store.Put(store.KeyTimeEntries, e.entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry. Deleting an unknown id is a no-op.
func (e *Engine) DeleteEntry(id string) error {
	kept := e.entries[:0]
	for _, entry := range e.entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	e.entries = kept
	return e.store.Put(store.KeyTimeEntries, e.entries)
}

// Entries returns a copy of the entry collection in storage order
func (e *Engine) Entries() []model.TimeEntry {
	out := make([]model.TimeEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// ReplaceEntries swaps the whole collection, used by data import
func (e *Engine) ReplaceEntries(entries []model.TimeEntry) error {
	e.entries = make([]model.TimeEntry, len(entries))
	copy(e.entries, entries)
	return e.store.Put(store.KeyTimeEntries, e.entries)
}

// TodayTracked sums durations of entries dated today, local time
func (e *Engine) TodayTracked() float64 {
	today := model.DateKey(e.now())

	var total float64
	for _, entry := range e.entries {
		if entry.Date == today {
			total += entry.Duration
		}
	}
	return total
}

// WeekTracked sums durations of entries whose start falls in the current
// week. startDayOfWeek follows time.Weekday numbering (0 = Sunday).
func (e *Engine) WeekTracked(startDayOfWeek int) float64 {
	now := e.now()
	offset := (int(now.Weekday()) - startDayOfWeek + 7) % 7
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -offset)

	var total float64
	for _, entry := range e.entries {
		if !entry.StartTime.Before(weekStart) && entry.StartTime.Before(weekStart.AddDate(0, 0, 7)) {
			total += entry.Duration
		}
	}
	return total
}

// CurrentMonthEntries returns entries whose start falls in the current
// calendar month, local time.
func (e *Engine) CurrentMonthEntries() []model.TimeEntry {
	now := e.now()

	var out []model.TimeEntry
	for _, entry := range e.entries {
		start := entry.StartTime.Local()
		if start.Month() == now.Month() && start.Year() == now.Year() {
			out = append(out, entry)
		}
	}
	return out
}

// DayEntries returns entries whose date key equals the given day
func (e *Engine) DayEntries(date string) []model.TimeEntry {
	var out []model.TimeEntry
	for _, entry := range e.entries {
		if entry.Date == date {
			out = append(out, entry)
		}
	}
	return out
}

// EntriesInRange returns entries whose start lies in [start, end]
func (e *Engine) EntriesInRange(start, end time.Time) []model.TimeEntry {
	var out []model.TimeEntry
	for _, entry := range e.entries {
		if !entry.StartTime.Before(start) && !entry.StartTime.After(end) {
			out = append(out, entry)
		}
	}
	return out
}

// Search filters entries by case-insensitive substring match on project
// name and note. An empty query returns everything.
func (e *Engine) Search(text string) []model.TimeEntry {
	if text == "" {
		return e.Entries()
	}
	query := strings.ToLower(text)

	var out []model.TimeEntry
	for _, entry := range e.entries {
		if strings.Contains(strings.ToLower(entry.ProjectName), query) ||
			strings.Contains(strings.ToLower(entry.Note), query) {
			out = append(out, entry)
		}
	}
	return out
}

// MonthSummary rebuilds the month/year -> totals mapping from scratch.
// Keys look like "3/2024".
func (e *Engine) MonthSummary() map[string]*MonthTotal {
	summary := make(map[string]*MonthTotal)

	for _, entry := range e.entries {
		start := entry.StartTime.Local()
		key := MonthKey(start)

		month := summary[key]
		if month == nil {
			month = &MonthTotal{Projects: make(map[string]*ProjectTotal)}
			summary[key] = month
		}
		month.TotalMinutes += entry.Duration

		project := month.Projects[entry.ProjectID]
		if project == nil {
			project = &ProjectTotal{Name: entry.ProjectName}
			month.Projects[entry.ProjectID] = project
		}
		project.TotalMinutes += entry.Duration
	}

	return summary
}

// MonthKey returns the summary key for a point in time, e.g. "3/2024"
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// Entry ids come from the creation instant, like the rest of the record
// ids in the export format.
func (e *Engine) newEntryID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
