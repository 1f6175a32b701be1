package models

import "gorm.io/gorm"

type Room struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	InviteCode  string `gorm:"size:8;uniqueIndex;not null"`
	CreatorID   uint   `gorm:"not null;index"`

	// Relationships
	Creator       User           `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Members       []RoomMember   `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Projects      []Project      `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
