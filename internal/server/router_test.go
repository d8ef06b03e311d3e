package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/htdinh/tictac/internal/server"
	"github.com/htdinh/tictac/internal/store"
	"github.com/htdinh/tictac/internal/tracker"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type projectEnvelope struct {
	Project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
}

type projectsEnvelope struct {
	Projects []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"projects"`
}

type entryEnvelope struct {
	TimeEntry struct {
		ID          string  `json:"id"`
		ProjectName string  `json:"projectName"`
		Duration    float64 `json:"duration"`
		Date        string  `json:"date"`
	} `json:"timeEntry"`
}

type entriesEnvelope struct {
	TimeEntries []struct {
		ID string `json:"id"`
	} `json:"timeEntries"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestRegisterLoginAndProfile(t *testing.T) {
	engine := setupTestServer(t)

	user := registerUser(t, engine, "alice@example.com", "123456")

	// Duplicate registration conflicts
	status, body := requestJSON(t, engine, http.MethodPost, "/api/users", "", map[string]string{
		"email":    "alice@example.com",
		"password": "123456",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", status, string(body))
	}
	var conflict apiErrorEnvelope
	if err := json.Unmarshal(body, &conflict); err != nil {
		t.Fatalf("unmarshal conflict response: %v", err)
	}
	if conflict.Error.Code != "email_exists" {
		t.Fatalf("expected email_exists, got %s", conflict.Error.Code)
	}

	// Login with the right password
	status, body = requestJSON(t, engine, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "123456",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", status, string(body))
	}

	// Wrong password is rejected
	status, _ = requestJSON(t, engine, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}

	// Profile round trip
	status, body = requestJSON(t, engine, http.MethodGet, "/api/users/profile", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for profile, got %d: %s", status, string(body))
	}
	var profile struct {
		User struct {
			Email        string `json:"email"`
			PasswordHash string `json:"passwordHash"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}
	if profile.User.Email != "alice@example.com" {
		t.Fatalf("unexpected profile email %q", profile.User.Email)
	}
	if profile.User.PasswordHash != "" {
		t.Fatal("password hash must never leave the server")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine := setupTestServer(t)

	status, _ := requestJSON(t, engine, http.MethodGet, "/api/projects", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, _ = requestJSON(t, engine, http.MethodGet, "/api/time-entries", "garbage-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", status)
	}
}

func TestProjectCRUD(t *testing.T) {
	engine := setupTestServer(t)
	user := registerUser(t, engine, "bob@example.com", "123456")

	status, body := requestJSON(t, engine, http.MethodPost, "/api/projects", user.Token, map[string]string{
		"name": "Website",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 on create, got %d: %s", status, string(body))
	}
	var created projectEnvelope
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created.Project.ID == "" || created.Project.Name != "Website" {
		t.Fatalf("unexpected created project: %+v", created.Project)
	}

	// Empty name is rejected
	status, _ = requestJSON(t, engine, http.MethodPost, "/api/projects", user.Token, map[string]string{
		"name": "  ",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", status)
	}

	// Rename
	status, body = requestJSON(t, engine, http.MethodPut, "/api/projects/"+created.Project.ID, user.Token, map[string]string{
		"name": "Website v2",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", status, string(body))
	}
	var updated projectEnvelope
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal update response: %v", err)
	}
	if updated.Project.Name != "Website v2" {
		t.Fatalf("rename not applied: %+v", updated.Project)
	}

	// Unknown id is a 404
	status, _ = requestJSON(t, engine, http.MethodPut, "/api/projects/ghost", user.Token, map[string]string{
		"name": "x",
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown project, got %d", status)
	}

	// Delete and list
	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/projects/"+created.Project.ID, user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", status)
	}
	status, body = requestJSON(t, engine, http.MethodGet, "/api/projects", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", status)
	}
	var list projectsEnvelope
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal list response: %v", err)
	}
	if len(list.Projects) != 0 {
		t.Fatalf("expected empty project list, got %d", len(list.Projects))
	}
}

func TestTimeEntryCRUD(t *testing.T) {
	engine := setupTestServer(t)
	user := registerUser(t, engine, "carol@example.com", "123456")

	status, body := requestJSON(t, engine, http.MethodPost, "/api/projects", user.Token, map[string]string{
		"name": "Backend",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 on project create, got %d: %s", status, string(body))
	}
	var project projectEnvelope
	if err := json.Unmarshal(body, &project); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}

	start := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	status, body = requestJSON(t, engine, http.MethodPost, "/api/time-entries", user.Token, map[string]interface{}{
		"projectId": project.Project.ID,
		"startTime": start,
		"endTime":   end,
		"note":      "api entry",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 on entry create, got %d: %s", status, string(body))
	}
	var created entryEnvelope
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if created.TimeEntry.Duration != 90 {
		t.Fatalf("expected duration 90, got %v", created.TimeEntry.Duration)
	}
	if created.TimeEntry.ProjectName != "Backend" {
		t.Fatalf("expected project snapshot, got %q", created.TimeEntry.ProjectName)
	}

	// Inverted range is rejected
	status, body = requestJSON(t, engine, http.MethodPost, "/api/time-entries", user.Token, map[string]interface{}{
		"projectId": project.Project.ID,
		"startTime": end,
		"endTime":   start,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d: %s", status, string(body))
	}

	// Edit the note
	status, _ = requestJSON(t, engine, http.MethodPut, "/api/time-entries/"+created.TimeEntry.ID, user.Token, map[string]string{
		"note": "edited",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on entry update, got %d", status)
	}

	// Search filter
	status, body = requestJSON(t, engine, http.MethodGet, "/api/time-entries?q=edited", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on search, got %d", status)
	}
	var found entriesEnvelope
	if err := json.Unmarshal(body, &found); err != nil {
		t.Fatalf("unmarshal search: %v", err)
	}
	if len(found.TimeEntries) != 1 {
		t.Fatalf("expected 1 search hit, got %d", len(found.TimeEntries))
	}

	// Delete and verify
	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/time-entries/"+created.TimeEntry.ID, user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on entry delete, got %d", status)
	}
	status, body = requestJSON(t, engine, http.MethodGet, "/api/time-entries", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", status)
	}
	var all entriesEnvelope
	if err := json.Unmarshal(body, &all); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(all.TimeEntries) != 0 {
		t.Fatalf("expected empty entry list, got %d", len(all.TimeEntries))
	}
}

func TestHealth(t *testing.T) {
	engine := setupTestServer(t)

	status, body := requestJSON(t, engine, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d: %s", status, string(body))
	}
}

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	settings, err := tracker.NewSettingsRegistry(st)
	if err != nil {
		t.Fatalf("settings registry: %v", err)
	}
	projects, err := tracker.NewProjectRegistry(st, settings)
	if err != nil {
		t.Fatalf("project registry: %v", err)
	}
	engine, err := tracker.NewEngine(st, projects, tracker.EngineConfig{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	auth := server.NewAuthService(st, "test-secret", 24*time.Hour)
	handlers := server.NewHandlers(projects, engine, auth)
	return server.NewRouter(auth, handlers)
}

func registerUser(t *testing.T, srv http.Handler, email, password string) authResponse {
	t.Helper()
	status, body := requestJSON(t, srv, http.MethodPost, "/api/users", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for user %s", email)
	}
	return resp
}

func requestJSON(
	t *testing.T,
	srv http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	srv.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
