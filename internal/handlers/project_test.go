package handlers_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/prakritea/decomposr/internal/apperr"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject_PMOnly(t *testing.T) {
	r, _, _ := setupTest(t)

	pmToken, _ := signup(t, r, "Pat", "pat@example.com", "pm")
	empToken, _ := signup(t, r, "Em", "em@example.com", "employee")

	roomID, _, _ := createRoom(t, r, pmToken, "Alpha")

	path := fmt.Sprintf("/api/projects/%d/projects", roomID)

	w := doRequest(r, "POST", path, `{"name":"Side project","description":"extra"}`, empToken)
	assert.Equal(t, 403, w.Code)

	w = doRequest(r, "POST", path, `{"name":"Side project","description":"extra"}`, pmToken)
	require.Equal(t, 201, w.Code, w.Body.String())

	resp := decodeBody(t, w)
	assert.Equal(t, "Side project", resp["name"])
	assert.Equal(t, false, resp["is_ai_plan_generated"])
}

func TestGenerateTasks_Success(t *testing.T) {
	r, db, llm := setupTest(t)

	pmToken, _ := signup(t, r, "Pat", "pat@example.com", "pm")
	roomID, _, projectID := createRoom(t, r, pmToken, "Alpha")

	w := doRequest(r, "POST", fmt.Sprintf("/api/projects/%d/projects/%d/generate-tasks", roomID, projectID), "", pmToken)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, 1, llm.calls)

	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["is_ai_plan_generated"])
	assert.Equal(t, "A task tracker", resp["summary"])

	epics := resp["epics"].([]interface{})
	require.GreaterOrEqual(t, len(epics), 3)

	for _, e := range epics {
		tasks := e.(map[string]interface{})["tasks"].([]interface{})
		require.GreaterOrEqual(t, len(tasks), 1)
	}

	// Fixture priority "High" is normalized on the way in
	var task models.Task
	require.NoError(t, db.Where("title = ?", "Design schema").First(&task).Error)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *task.DueDate, time.Minute)
}

func TestGenerateTasks_PMOnly(t *testing.T) {
	r, _, llm := setupTest(t)

	pmToken, _ := signup(t, r, "Pat", "pat@example.com", "pm")
	empToken, _ := signup(t, r, "Em", "em@example.com", "employee")

	roomID, _, projectID := createRoom(t, r, pmToken, "Alpha")

	w := doRequest(r, "POST", fmt.Sprintf("/api/projects/%d/projects/%d/generate-tasks", roomID, projectID), "", empToken)
	assert.Equal(t, 403, w.Code)
	assert.Zero(t, llm.calls)
}

func TestGenerateTasks_UnknownProject(t *testing.T) {
	r, _, _ := setupTest(t)

	pmToken, _ := signup(t, r, "Pat", "pat@example.com", "pm")
	roomID, _, _ := createRoom(t, r, pmToken, "Alpha")

	w := doRequest(r, "POST", fmt.Sprintf("/api/projects/%d/projects/99999/generate-tasks", roomID), "", pmToken)
	assert.Equal(t, 404, w.Code)
}

func TestGenerateTasks_InvalidAIResponse(t *testing.T) {
	r, db, llm := setupTest(t)
	llm.response = "Sorry, I cannot produce a plan."

	pmToken, _ := signup(t, r, "Pat", "pat@example.com", "pm")
	roomID, _, projectID := createRoom(t, r, pmToken, "Alpha")

	w := doRequest(r, "POST", fmt.Sprintf("/api/projects/%d/projects/%d/generate-tasks", roomID, projectID), "", pmToken)
	assert.Equal(t, 500, w.Code)

	var project models.Project
	require.NoError(t, db.First(&project, projectID).Error)
	assert.False(t, project.IsAIPlanGenerated)
}

func TestGenerateTasks_RateLimited(t *testing.T) {
	r, _, llm := setupTest(t)
	llm.err = apperr.RateLimited("AI provider is rate limiting requests, please retry later", 30*time.Second)

	pmToken, _ := signup(t, r, "Pat", "pat@example.com", "pm")
	roomID, _, projectID := createRoom(t, r, pmToken, "Alpha")

	w := doRequest(r, "POST", fmt.Sprintf("/api/projects/%d/projects/%d/generate-tasks", roomID, projectID), "", pmToken)
	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}
