package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MemberRoleOwner  = "owner"
	MemberRoleMember = "member"
)

type RoomMember struct {
	gorm.Model

	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_room"`
	RoomID   uint      `gorm:"not null;uniqueIndex:idx_user_room"`
	Role     string    `gorm:"not null"` // role snapshot at join time
	JoinedAt time.Time `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Room Room `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
