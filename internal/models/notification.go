package models

import "gorm.io/gorm"

const (
	NotificationTaskAssigned  = "task_assigned"
	NotificationTaskUpdated   = "task_updated"
	NotificationRoomJoined    = "room_joined"
	NotificationPlanGenerated = "plan_generated"
)

type Notification struct {
	gorm.Model

	UserID  uint   `gorm:"not null;index"`
	RoomID  *uint  `gorm:"index"` // set when the event is scoped to a room, drives cascade delete
	Type    string `gorm:"not null"`
	Title   string `gorm:"not null"`
	Message string
	Link    string
	Read    bool `gorm:"not null;default:false"`

	// Relationships
	User User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Room *Room `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
