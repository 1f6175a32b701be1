package notify

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	userIDs []uint
	events  []interface{}
}

func (p *recordingPublisher) Publish(userID uint, event interface{}) {
	p.userIDs = append(p.userIDs, userID)
	p.events = append(p.events, event)
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := models.User{Name: "Em", Email: "em@example.com", PasswordHash: "x", Role: models.RoleEmployee}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

func TestDispatch_PersistsAndPublishes(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)

	pub := &recordingPublisher{}
	d := New(db, pub)

	notification, err := d.Dispatch(user.ID, nil, models.NotificationTaskAssigned, "Task assigned to you", "You were assigned a task", "/rooms/1")

	require.NoError(t, err)
	assert.False(t, notification.Read)

	var stored models.Notification
	require.NoError(t, db.First(&stored, notification.ID).Error)
	assert.Equal(t, models.NotificationTaskAssigned, stored.Type)
	assert.Equal(t, user.ID, stored.UserID)

	require.Len(t, pub.userIDs, 1)
	assert.Equal(t, user.ID, pub.userIDs[0])

	event, ok := pub.events[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "notification", event["type"])
}

func TestDispatch_NilPublisher(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)

	d := New(db, nil)

	notification, err := d.Dispatch(user.ID, nil, models.NotificationRoomJoined, "New room member", "Someone joined", "")

	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, user.ID, notification.UserID)
}
