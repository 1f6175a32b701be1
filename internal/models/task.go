package models

import (
	"time"

	"gorm.io/gorm"
)

// Board columns. Any valid status may be set from any other; there is no
// transition state machine.
const (
	StatusTodo       = "todo"
	StatusInProgress = "inprogress"
	StatusReview     = "review"
	StatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	gorm.Model

	ProjectID    uint   `gorm:"not null;index"`
	EpicID       *uint  `gorm:"index"`
	Title        string `gorm:"not null"`
	Description  string
	Status       string `gorm:"not null;default:todo"`
	Priority     string `gorm:"not null;default:medium"`
	Category     string
	Effort       string
	Dependencies string
	DueDate      *time.Time
	AssignedToID *uint `gorm:"index"`
	TimeEstimate float64
	TimeSpent    float64
	StartDate    *time.Time

	// Relationships
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Epic     *Epic   `gorm:"foreignKey:EpicID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Assignee *User   `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
