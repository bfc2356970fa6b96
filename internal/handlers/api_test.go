package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/handlers"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

// setupAPI wires the real router against an in-memory database, the same
// composition as cmd/server minus Redis and the worker.
func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.Board{}, &models.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Server.CORSOrigins = []string{"*"}

	users := services.NewUserService(auth.NewHasher(auth.SchemePBKDF2))
	return handlers.NewRouter(cfg, handlers.Dependencies{
		DB:       db,
		Tokens:   auth.NewTokenService("test-secret", time.Hour),
		Users:    users,
		Projects: services.NewProjectService(),
		Boards:   services.NewBoardService(),
		Tasks:    services.NewTaskService(),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "Str0ng-password!",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "Str0ng-password!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if resp.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", resp.TokenType)
	}
	return resp.AccessToken
}

func TestProjectLifecycle(t *testing.T) {
	router := setupAPI(t)
	token := registerAndLogin(t, router, "alice")

	// Create.
	w := doJSON(t, router, "POST", "/api/v1/projects", token, map[string]string{
		"name":        "P1",
		"description": "first project",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var project models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &project); err != nil {
		t.Fatalf("failed to decode project: %v", err)
	}
	if project.ID.IsNil() {
		t.Error("Expected a generated project id")
	}

	// Partial update leaves the description alone.
	w = doJSON(t, router, "PUT", "/api/v1/projects/"+project.ID.String(), token, map[string]string{
		"name": "P2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var updated models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode project: %v", err)
	}
	if updated.Name != "P2" {
		t.Errorf("Expected name P2, got %q", updated.Name)
	}
	if updated.Description != "first project" {
		t.Errorf("Expected description unchanged, got %q", updated.Description)
	}

	// Delete, then the record is gone.
	w = doJSON(t, router, "DELETE", "/api/v1/projects/"+project.ID.String(), token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	w = doJSON(t, router, "GET", "/api/v1/projects/"+project.ID.String(), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, w.Code)
	}
}

func TestOwnershipMaskedAsNotFound(t *testing.T) {
	router := setupAPI(t)
	aliceToken := registerAndLogin(t, router, "alice")
	bobToken := registerAndLogin(t, router, "bob")

	w := doJSON(t, router, "POST", "/api/v1/projects", aliceToken, map[string]string{"name": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed with %d: %s", w.Code, w.Body.String())
	}
	var project models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &project); err != nil {
		t.Fatalf("failed to decode project: %v", err)
	}

	for _, tc := range []struct {
		method string
		body   interface{}
	}{
		{"GET", nil},
		{"PUT", map[string]string{"name": "stolen"}},
		{"DELETE", nil},
	} {
		w := doJSON(t, router, tc.method, "/api/v1/projects/"+project.ID.String(), bobToken, tc.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s as non-owner: expected status %d, got %d", tc.method, http.StatusNotFound, w.Code)
		}
	}

	// The owner still sees it.
	w = doJSON(t, router, "GET", "/api/v1/projects/"+project.ID.String(), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Owner get: expected status %d, got %d", http.StatusOK, w.Code)
	}

	// And bob's listing stays empty.
	w = doJSON(t, router, "GET", "/api/v1/projects", bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list failed with %d", w.Code)
	}
	var projects []models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &projects); err != nil {
		t.Fatalf("failed to decode project list: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("Expected empty list for non-owner, got %d entries", len(projects))
	}
}

func TestTaskFlowThroughBoards(t *testing.T) {
	router := setupAPI(t)
	token := registerAndLogin(t, router, "alice")

	w := doJSON(t, router, "POST", "/api/v1/projects", token, map[string]string{"name": "P1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("project create failed with %d", w.Code)
	}
	var project models.Project
	json.Unmarshal(w.Body.Bytes(), &project)

	w = doJSON(t, router, "POST", "/api/v1/boards", token, map[string]interface{}{
		"project_id": project.ID.String(),
		"name":       "Backlog",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("board create failed with %d: %s", w.Code, w.Body.String())
	}
	var board models.Board
	json.Unmarshal(w.Body.Bytes(), &board)

	w = doJSON(t, router, "POST", "/api/v1/tasks", token, map[string]interface{}{
		"board_id": board.ID.String(),
		"title":    "write docs",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("task create failed with %d: %s", w.Code, w.Body.String())
	}
	var task models.Task
	json.Unmarshal(w.Body.Bytes(), &task)
	if task.Status != models.StatusTodo || task.Priority != models.PriorityMedium {
		t.Errorf("Expected defaults todo/medium, got %s/%s", task.Status, task.Priority)
	}

	// Move it through the workflow.
	for _, status := range []string{models.StatusInProgress, models.StatusDone} {
		w = doJSON(t, router, "PATCH", "/api/v1/tasks/"+task.ID.String()+"/status", token, map[string]string{
			"status": status,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status patch to %s failed with %d: %s", status, w.Code, w.Body.String())
		}
	}

	// Filtered listing finds it under done, not under todo.
	path := fmt.Sprintf("/api/v1/tasks?board_id=%s&status=%s", board.ID.String(), models.StatusDone)
	w = doJSON(t, router, "GET", path, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("task list failed with %d", w.Code)
	}
	var tasks []models.Task
	json.Unmarshal(w.Body.Bytes(), &tasks)
	if len(tasks) != 1 {
		t.Errorf("Expected 1 done task, got %d", len(tasks))
	}

	path = fmt.Sprintf("/api/v1/tasks?board_id=%s&status=%s", board.ID.String(), models.StatusTodo)
	w = doJSON(t, router, "GET", path, token, nil)
	json.Unmarshal(w.Body.Bytes(), &tasks)
	if len(tasks) != 0 {
		t.Errorf("Expected no todo tasks, got %d", len(tasks))
	}
}

func TestRegisterDuplicate(t *testing.T) {
	router := setupAPI(t)
	registerAndLogin(t, router, "alice")

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "Str0ng-password!",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d for duplicate username, got %d", http.StatusConflict, w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := setupAPI(t)
	registerAndLogin(t, router, "alice")

	w := doJSON(t, router, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, "GET", "/api/v1/projects", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestUsersMe(t *testing.T) {
	router := setupAPI(t)
	token := registerAndLogin(t, router, "alice")

	w := doJSON(t, router, "GET", "/api/v1/users/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var user models.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Expected username alice, got %q", user.Username)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("hashed_password")) {
		t.Error("Response must not leak the password hash")
	}

	w = doJSON(t, router, "PUT", "/api/v1/users/me", token, map[string]string{
		"full_name": "Alice Liddell",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &user)
	if user.FullName != "Alice Liddell" {
		t.Errorf("Expected updated full name, got %q", user.FullName)
	}
}
