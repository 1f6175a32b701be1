package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	RoomID            uint   `gorm:"not null;index"`
	Name              string `gorm:"not null"`
	Description       string
	Summary           string
	Architecture      string
	Timeline          string
	IsAIPlanGenerated bool           `gorm:"column:is_ai_plan_generated;not null;default:false"`
	PlanSnapshot      datatypes.JSON `gorm:"type:jsonb"` // raw decomposition as returned by the provider

	// Relationships
	Room  Room   `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Epics []Epic `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
