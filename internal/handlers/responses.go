package handlers

import (
	"time"

	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/types"
)

type RoomResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	InviteCode  string            `json:"invite_code"`
	CreatorID   uint              `json:"creator_id"`
	CreatedAt   time.Time         `json:"created_at"`
	Members     []MemberResponse  `json:"members"`
	Projects    []ProjectResponse `json:"projects"`
}

type MemberResponse struct {
	ID       uint               `json:"id"`
	Role     string             `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
	User     types.UserResponse `json:"user"`
}

type ProjectResponse struct {
	ID                uint           `json:"id"`
	RoomID            uint           `json:"room_id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Summary           string         `json:"summary"`
	Architecture      string         `json:"architecture"`
	Timeline          string         `json:"timeline"`
	IsAIPlanGenerated bool           `json:"is_ai_plan_generated"`
	Epics             []EpicResponse `json:"epics"`
	Tasks             []TaskResponse `json:"tasks"`
}

type EpicResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tasks       []TaskResponse `json:"tasks"`
}

type TaskResponse struct {
	ID           uint       `json:"id"`
	ProjectID    uint       `json:"project_id"`
	EpicID       *uint      `json:"epic_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Category     string     `json:"category"`
	Effort       string     `json:"effort"`
	Dependencies string     `json:"dependencies"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssignedToID *uint      `json:"assigned_to_id,omitempty"`
	TimeEstimate float64    `json:"time_estimate"`
	TimeSpent    float64    `json:"time_spent"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newUserResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

func newTaskResponse(task *models.Task) TaskResponse {
	return TaskResponse{
		ID:           task.ID,
		ProjectID:    task.ProjectID,
		EpicID:       task.EpicID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		Category:     task.Category,
		Effort:       task.Effort,
		Dependencies: task.Dependencies,
		DueDate:      task.DueDate,
		AssignedToID: task.AssignedToID,
		TimeEstimate: task.TimeEstimate,
		TimeSpent:    task.TimeSpent,
		StartDate:    task.StartDate,
		CreatedAt:    task.CreatedAt,
	}
}

func newEpicResponse(epic *models.Epic) EpicResponse {
	tasks := make([]TaskResponse, 0, len(epic.Tasks))

	for i := range epic.Tasks {
		tasks = append(tasks, newTaskResponse(&epic.Tasks[i]))
	}

	return EpicResponse{
		ID:          epic.ID,
		Name:        epic.Name,
		Description: epic.Description,
		Tasks:       tasks,
	}
}

func newProjectResponse(project *models.Project) ProjectResponse {
	epics := make([]EpicResponse, 0, len(project.Epics))

	for i := range project.Epics {
		epics = append(epics, newEpicResponse(&project.Epics[i]))
	}

	tasks := make([]TaskResponse, 0, len(project.Tasks))

	for i := range project.Tasks {
		tasks = append(tasks, newTaskResponse(&project.Tasks[i]))
	}

	return ProjectResponse{
		ID:                project.ID,
		RoomID:            project.RoomID,
		Name:              project.Name,
		Description:       project.Description,
		Summary:           project.Summary,
		Architecture:      project.Architecture,
		Timeline:          project.Timeline,
		IsAIPlanGenerated: project.IsAIPlanGenerated,
		Epics:             epics,
		Tasks:             tasks,
	}
}

func newRoomResponse(room *models.Room) RoomResponse {
	members := make([]MemberResponse, 0, len(room.Members))

	for i := range room.Members {
		member := &room.Members[i]
		members = append(members, MemberResponse{
			ID:       member.ID,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
			User:     newUserResponse(&member.User),
		})
	}

	projects := make([]ProjectResponse, 0, len(room.Projects))

	for i := range room.Projects {
		projects = append(projects, newProjectResponse(&room.Projects[i]))
	}

	return RoomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		InviteCode:  room.InviteCode,
		CreatorID:   room.CreatorID,
		CreatedAt:   room.CreatedAt,
		Members:     members,
		Projects:    projects,
	}
}
