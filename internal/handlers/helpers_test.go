package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prakritea/decomposr/internal/auth"
	"github.com/prakritea/decomposr/internal/handlers"
	"github.com/prakritea/decomposr/internal/notify"
	"github.com/prakritea/decomposr/internal/planner"
	"github.com/prakritea/decomposr/internal/router"
	"github.com/prakritea/decomposr/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const planFixture = `{
	"summary": "A task tracker",
	"architecture": "SPA over a REST API",
	"timeline": "6 weeks",
	"epics": [
		{"name": "Backend", "description": "API work", "tasks": [
			{"title": "Design schema", "description": "", "priority": "High", "category": "backend", "effort": "3d", "dependencies": ""}
		]},
		{"name": "Frontend", "description": "UI work", "tasks": [
			{"title": "Build board view", "description": "", "priority": "medium", "category": "frontend", "effort": "5d", "dependencies": ""}
		]},
		{"name": "Infra", "description": "Deploy", "tasks": [
			{"title": "CI pipeline", "description": "", "priority": "low", "category": "infra", "effort": "2d", "dependencies": ""}
		]}
	]
}`

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB, *fakeLLM) {
	t.Helper()

	r, db, llm, _ := setupStack(t)
	return r, db, llm
}

// setupStack additionally exposes the hub for tests that publish directly.
func setupStack(t *testing.T) (*gin.Engine, *gorm.DB, *fakeLLM, *handlers.Hub) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	llm := &fakeLLM{response: planFixture}
	hub := handlers.NewHub()
	dispatcher := notify.New(db, hub)
	plannerSvc := planner.NewService(db, llm, dispatcher)

	return router.NewRouter(db, plannerSvc, hub, dispatcher), db, llm, hub
}

func doRequest(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

// signup registers a user through the API and returns its token and id.
func signup(t *testing.T, r *gin.Engine, name, email, role string) (string, uint) {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":"password123","role":%q}`, name, email, role)
	w := doRequest(r, "POST", "/api/auth/signup", body, "")
	require.Equal(t, 201, w.Code, w.Body.String())

	resp := decodeBody(t, w)
	token := resp["token"].(string)
	user := resp["user"].(map[string]interface{})

	return token, uint(user["id"].(float64))
}

// createRoom creates a room through the API and returns its id, invite code
// and default project id.
func createRoom(t *testing.T, r *gin.Engine, token, name string) (uint, string, uint) {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"description":"test room"}`, name)
	w := doRequest(r, "POST", "/api/rooms/create", body, token)
	require.Equal(t, 201, w.Code, w.Body.String())

	resp := decodeBody(t, w)
	roomID := uint(resp["id"].(float64))
	code := resp["invite_code"].(string)

	projects := resp["projects"].([]interface{})
	require.Len(t, projects, 1)
	projectID := uint(projects[0].(map[string]interface{})["id"].(float64))

	return roomID, code, projectID
}
