package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prakritea/decomposr/internal/apperr"
	"github.com/prakritea/decomposr/internal/middleware"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/notify"
	"github.com/prakritea/decomposr/internal/utils"
	"gorm.io/gorm"
)

type TaskHandler struct {
	DB     *gorm.DB
	Notify *notify.Dispatcher
}

type UpdateTaskRequest struct {
	Status       *string    `json:"status" binding:"omitempty,oneof=todo inprogress review done"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Category     *string    `json:"category"`
	DueDate      *time.Time `json:"due_date"`
	TimeEstimate *float64   `json:"time_estimate"`
	TimeSpent    *float64   `json:"time_spent"`
	StartDate    *time.Time `json:"start_date"`
}

type AssignTaskRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// loadTask resolves the task addressed by the path, checks it belongs to
// the addressed project and room, and checks the requester is a member of
// that room.
func (h *TaskHandler) loadTask(ctx *gin.Context, requester middleware.AuthenticatedUser) (*models.Task, *models.Room, error) {
	roomID, err := utils.ParseUintParam(ctx, "room_id")

	if err != nil {
		return nil, nil, apperr.Validation("Invalid room ID")
	}

	projectID, err := utils.ParseUintParam(ctx, "project_id")

	if err != nil {
		return nil, nil, apperr.Validation("Invalid project ID")
	}

	taskID, err := utils.ParseUintParam(ctx, "task_id")

	if err != nil {
		return nil, nil, apperr.Validation("Invalid task ID")
	}

	var project models.Project

	if err := h.DB.Where("id = ? AND room_id = ?", projectID, roomID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Project not found")
		}
		return nil, nil, err
	}

	var task models.Task

	if err := h.DB.Where("id = ? AND project_id = ?", taskID, project.ID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Task not found")
		}
		return nil, nil, err
	}

	var room models.Room

	if err := h.DB.First(&room, roomID).Error; err != nil {
		return nil, nil, err
	}

	var count int64

	if err := h.DB.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, requester.ID).
		Count(&count).Error; err != nil {
		return nil, nil, err
	}

	if count == 0 {
		return nil, nil, apperr.Authorization("You are not a member of this room")
	}

	return &task, &room, nil
}

func (h *TaskHandler) Update(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	task, room, err := h.loadTask(ctx, currentUser)

	if err != nil {
		apperr.Respond(ctx, err)
		return
	}

	var req UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.TimeEstimate != nil {
		updates["time_estimate"] = *req.TimeEstimate
	}
	if req.TimeSpent != nil {
		updates["time_spent"] = *req.TimeSpent
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "No valid fields to update"})
		return
	}

	if err := h.DB.Model(task).Updates(updates).Error; err != nil {
		log.Printf("Failed to update task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update task"})
		return
	}

	// Only a move to done notifies; generic field edits stay silent
	if req.Status != nil && *req.Status == models.StatusDone {
		roomID := room.ID
		_, err := h.Notify.Dispatch(
			room.CreatorID,
			&roomID,
			models.NotificationTaskUpdated,
			"Task completed",
			fmt.Sprintf("Task %q was marked as done", task.Title),
			fmt.Sprintf("/rooms/%d/projects/%d", room.ID, task.ProjectID),
		)
		if err != nil {
			log.Printf("Failed to dispatch task_updated notification: %v", err)
		}
	}

	if err := h.DB.First(task, task.ID).Error; err != nil {
		log.Printf("Failed to reload task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *TaskHandler) Assign(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	if currentUser.Role != models.RolePM {
		ctx.JSON(http.StatusForbidden, gin.H{"message": "Only product managers can assign tasks"})
		return
	}

	task, room, err := h.loadTask(ctx, currentUser)

	if err != nil {
		apperr.Respond(ctx, err)
		return
	}

	var req AssignTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var assignee models.User

	if err := h.DB.First(&assignee, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			log.Printf("Failed to load assignee: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	if err := h.DB.Model(task).Update("assigned_to_id", assignee.ID).Error; err != nil {
		log.Printf("Failed to assign task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to assign task"})
		return
	}

	roomID := room.ID
	_, err = h.Notify.Dispatch(
		assignee.ID,
		&roomID,
		models.NotificationTaskAssigned,
		"Task assigned to you",
		fmt.Sprintf("You were assigned %q in %q", task.Title, room.Name),
		fmt.Sprintf("/rooms/%d/projects/%d", room.ID, task.ProjectID),
	)
	if err != nil {
		log.Printf("Failed to dispatch task_assigned notification: %v", err)
	}

	if err := h.DB.First(task, task.ID).Error; err != nil {
		log.Printf("Failed to reload task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}
