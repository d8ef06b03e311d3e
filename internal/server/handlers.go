package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/tracker"
)

// Handlers exposes the tracker over HTTP. The engine and registries
// are single-writer, so every call holds the mutex.
type Handlers struct {
	mu       sync.Mutex
	projects *tracker.ProjectRegistry
	engine   *tracker.Engine
	auth     *AuthService
}

func NewHandlers(projects *tracker.ProjectRegistry, engine *tracker.Engine, auth *AuthService) *Handlers {
	return &Handlers{
		projects: projects,
		engine:   engine,
		auth:     auth,
	}
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errBadRequest("invalid_json", "invalid request body"))
		return
	}

	result, apiErr := h.auth.Register(req.Email, req.Password)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handlers) Login(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errBadRequest("invalid_json", "invalid request body"))
		return
	}

	result, apiErr := h.auth.Login(req.Email, req.Password)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handlers) Profile(c *gin.Context) {
	user, apiErr := h.auth.GetUser(UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handlers) ListProjects(c *gin.Context) {
	h.mu.Lock()
	projects := h.projects.All()
	h.mu.Unlock()

	if projects == nil {
		projects = []model.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type projectRequest struct {
	Name       *string             `json:"name"`
	Color      *string             `json:"color"`
	HourlyRate *float64            `json:"hourlyRate"`
	Goals      *model.Goals        `json:"goals"`
	Rates      *model.ProjectRates `json:"rates"`
}

func (h *Handlers) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errBadRequest("invalid_json", "invalid request body"))
		return
	}
	if req.Name == nil {
		writeError(c, errBadRequest("invalid_name", "name is required"))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	project, err := h.projects.Create(*req.Name)
	if err != nil {
		writeError(c, projectError(err))
		return
	}
	if req.Color != nil || req.HourlyRate != nil || req.Goals != nil || req.Rates != nil {
		project, err = h.projects.Update(project.ID, tracker.ProjectPatch{
			Color:      req.Color,
			HourlyRate: req.HourlyRate,
			Goals:      req.Goals,
			Rates:      req.Rates,
		})
		if err != nil {
			writeError(c, projectError(err))
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func (h *Handlers) UpdateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errBadRequest("invalid_json", "invalid request body"))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	project, err := h.projects.Update(c.Param("id"), tracker.ProjectPatch{
		Name:       req.Name,
		Color:      req.Color,
		HourlyRate: req.HourlyRate,
		Goals:      req.Goals,
		Rates:      req.Rates,
	})
	if err != nil {
		writeError(c, projectError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handlers) DeleteProject(c *gin.Context) {
	h.mu.Lock()
	err := h.projects.Delete(c.Param("id"))
	h.mu.Unlock()

	if err != nil {
		writeError(c, projectError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handlers) ListTimeEntries(c *gin.Context) {
	h.mu.Lock()
	var entries []model.TimeEntry
	if q := c.Query("q"); q != "" {
		entries = h.engine.Search(q)
	} else if date := c.Query("date"); date != "" {
		entries = h.engine.DayEntries(date)
	} else {
		entries = h.engine.Entries()
	}
	h.mu.Unlock()

	if entries == nil {
		entries = []model.TimeEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"timeEntries": entries})
}

type timeEntryRequest struct {
	ProjectID *string    `json:"projectId"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Note      *string    `json:"note"`
}

func (h *Handlers) CreateTimeEntry(c *gin.Context) {
	var req timeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errBadRequest("invalid_json", "invalid request body"))
		return
	}
	if req.ProjectID == nil || req.StartTime == nil || req.EndTime == nil {
		writeError(c, errBadRequest("invalid_entry", "projectId, startTime and endTime are required"))
		return
	}

	entry := model.TimeEntry{
		ProjectID: *req.ProjectID,
		StartTime: *req.StartTime,
		EndTime:   *req.EndTime,
	}
	if req.Note != nil {
		entry.Note = *req.Note
	}

	h.mu.Lock()
	created, err := h.engine.AddManualEntry(entry)
	h.mu.Unlock()

	if err != nil {
		writeError(c, entryError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"timeEntry": created})
}

func (h *Handlers) UpdateTimeEntry(c *gin.Context) {
	var req timeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errBadRequest("invalid_json", "invalid request body"))
		return
	}

	h.mu.Lock()
	updated, err := h.engine.EditEntry(c.Param("id"), tracker.EntryPatch{
		ProjectID: req.ProjectID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
	})
	h.mu.Unlock()

	if err != nil {
		writeError(c, entryError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"timeEntry": updated})
}

func (h *Handlers) DeleteTimeEntry(c *gin.Context) {
	h.mu.Lock()
	err := h.engine.DeleteEntry(c.Param("id"))
	h.mu.Unlock()

	if err != nil {
		writeError(c, errInternal("failed to delete time entry"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func projectError(err error) *APIError {
	switch {
	case errors.Is(err, tracker.ErrEmptyProjectName):
		return errBadRequest("invalid_name", "project name must not be empty")
	case errors.Is(err, tracker.ErrProjectNotFound):
		return errNotFound("project_not_found", "project not found")
	default:
		return errInternal("project operation failed")
	}
}

func entryError(err error) *APIError {
	switch {
	case errors.Is(err, tracker.ErrEndBeforeStart):
		return errBadRequest("invalid_range", "end time must not be before start time")
	case errors.Is(err, tracker.ErrEntryNotFound):
		return errNotFound("entry_not_found", "time entry not found")
	default:
		return errInternal("time entry operation failed")
	}
}
