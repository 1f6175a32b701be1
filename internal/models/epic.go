package models

import "gorm.io/gorm"

type Epic struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks   []Task  `gorm:"foreignKey:EpicID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
