// Package notify persists notifications and pushes them to connected
// sessions. The persisted row is the source of truth; the push is a latency
// optimization and is never retried.
package notify

import (
	"log"

	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/types"
	"gorm.io/gorm"
)

// Publisher delivers an event to every live session of a user, if any.
type Publisher interface {
	Publish(userID uint, event interface{})
}

type Dispatcher struct {
	db  *gorm.DB
	pub Publisher
}

func New(db *gorm.DB, pub Publisher) *Dispatcher {
	return &Dispatcher{db: db, pub: pub}
}

// Dispatch records the notification and best-effort pushes it. A failed or
// absent push is not an error: the client reconciles from GET /notifications
// on reconnect.
func (d *Dispatcher) Dispatch(userID uint, roomID *uint, notifType, title, message, link string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:  userID,
		RoomID:  roomID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Link:    link,
	}

	if err := d.db.Create(&notification).Error; err != nil {
		log.Printf("Failed to persist notification for user %d: %v", userID, err)
		return nil, err
	}

	if d.pub != nil {
		d.pub.Publish(userID, map[string]interface{}{
			"type":         "notification",
			"notification": Response(&notification),
		})
	}

	return &notification, nil
}

func Response(n *models.Notification) types.NotificationResponse {
	return types.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		RoomID:    n.RoomID,
		CreatedAt: n.CreatedAt,
	}
}
