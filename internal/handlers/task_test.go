package handlers_test

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedBoard creates a room with a generated plan and a joined employee,
// returning ids for the room, project and one task.
func seedBoard(t *testing.T, r *gin.Engine, db *gorm.DB) (pmToken, empToken string, empID, roomID, projectID, taskID uint) {
	t.Helper()

	pmToken, _ = signup(t, r, "Pat", "pat@example.com", "pm")
	empToken, empID = signup(t, r, "Em", "em@example.com", "employee")

	var code string
	roomID, code, projectID = createRoom(t, r, pmToken, "Alpha")

	w := doRequest(r, "POST", "/api/rooms/join", fmt.Sprintf(`{"invite_code":%q}`, code), empToken)
	require.Equal(t, 200, w.Code)

	w = doRequest(r, "POST", fmt.Sprintf("/api/projects/%d/projects/%d/generate-tasks", roomID, projectID), "", pmToken)
	require.Equal(t, 200, w.Code, w.Body.String())

	var task models.Task
	require.NoError(t, db.Where("project_id = ?", projectID).First(&task).Error)
	taskID = task.ID

	return
}

func taskPath(roomID, projectID, taskID uint) string {
	return fmt.Sprintf("/api/projects/%d/projects/%d/tasks/%d", roomID, projectID, taskID)
}

func TestUpdateTask_StatusToDoneNotifiesCreator(t *testing.T) {
	r, db, _ := setupTest(t)
	_, empToken, _, roomID, projectID, taskID := seedBoard(t, r, db)

	w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID), `{"status":"done"}`, empToken)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "done", decodeBody(t, w)["status"])

	var notifications []models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationTaskUpdated).Find(&notifications).Error)
	require.Len(t, notifications, 1)

	var room models.Room
	require.NoError(t, db.First(&room, roomID).Error)
	assert.Equal(t, room.CreatorID, notifications[0].UserID)
}

func TestUpdateTask_AnyStatusTransitionAllowed(t *testing.T) {
	r, db, _ := setupTest(t)
	_, empToken, _, roomID, projectID, taskID := seedBoard(t, r, db)

	for _, status := range []string{"done", "todo", "review", "inprogress"} {
		w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID), fmt.Sprintf(`{"status":%q}`, status), empToken)
		require.Equal(t, 200, w.Code, "status %s", status)
	}
}

func TestUpdateTask_InvalidStatus(t *testing.T) {
	r, db, _ := setupTest(t)
	_, empToken, _, roomID, projectID, taskID := seedBoard(t, r, db)

	w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID), `{"status":"blocked"}`, empToken)
	assert.Equal(t, 400, w.Code)
}

func TestUpdateTask_NonMemberForbidden(t *testing.T) {
	r, db, _ := setupTest(t)
	_, _, _, roomID, projectID, taskID := seedBoard(t, r, db)

	outsiderToken, _ := signup(t, r, "Out", "out@example.com", "employee")

	w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID), `{"status":"done"}`, outsiderToken)
	assert.Equal(t, 403, w.Code)
}

func TestUpdateTask_GenericFieldsNoNotification(t *testing.T) {
	r, db, _ := setupTest(t)
	_, empToken, _, roomID, projectID, taskID := seedBoard(t, r, db)

	w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID), `{"description":"updated","time_spent":2.5}`, empToken)
	require.Equal(t, 200, w.Code, w.Body.String())

	resp := decodeBody(t, w)
	assert.Equal(t, "updated", resp["description"])
	assert.Equal(t, 2.5, resp["time_spent"])

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("type = ?", models.NotificationTaskUpdated).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateTask_WrongProjectPath(t *testing.T) {
	r, db, _ := setupTest(t)
	pmToken, _, _, roomID, _, taskID := seedBoard(t, r, db)

	// Address the task through a project it does not belong to
	w := doRequest(r, "PATCH", taskPath(roomID, 99999, taskID), `{"status":"done"}`, pmToken)
	assert.Equal(t, 404, w.Code)
}

func TestAssignTask_PMOnly(t *testing.T) {
	r, db, _ := setupTest(t)
	_, empToken, empID, roomID, projectID, taskID := seedBoard(t, r, db)

	w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID)+"/assign", fmt.Sprintf(`{"user_id":%d}`, empID), empToken)
	assert.Equal(t, 403, w.Code)

	var task models.Task
	require.NoError(t, db.First(&task, taskID).Error)
	assert.Nil(t, task.AssignedToID)
}

func TestAssignTask_NotifiesAssignee(t *testing.T) {
	r, db, _ := setupTest(t)
	pmToken, _, empID, roomID, projectID, taskID := seedBoard(t, r, db)

	w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID)+"/assign", fmt.Sprintf(`{"user_id":%d}`, empID), pmToken)
	require.Equal(t, 200, w.Code, w.Body.String())

	resp := decodeBody(t, w)
	assert.EqualValues(t, empID, resp["assigned_to_id"])

	var notifications []models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationTaskAssigned).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, empID, notifications[0].UserID)
}

func TestAssignTask_UnknownUser(t *testing.T) {
	r, db, _ := setupTest(t)
	pmToken, _, _, roomID, projectID, taskID := seedBoard(t, r, db)

	w := doRequest(r, "PATCH", taskPath(roomID, projectID, taskID)+"/assign", `{"user_id":99999}`, pmToken)
	assert.Equal(t, 404, w.Code)
}
