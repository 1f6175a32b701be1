package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prakritea/decomposr/internal/apperr"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/planner"
	"github.com/prakritea/decomposr/internal/utils"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	DB      *gorm.DB
	Planner *planner.Service
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// loadProject resolves the room-scoped project addressed by the request
// path, returning NotFound when the room or project is absent or the
// project does not belong to the room.
func (h *ProjectHandler) loadProject(ctx *gin.Context) (*models.Project, error) {
	roomID, err := utils.ParseUintParam(ctx, "room_id")

	if err != nil {
		return nil, apperr.Validation("Invalid room ID")
	}

	projectID, err := utils.ParseUintParam(ctx, "project_id")

	if err != nil {
		return nil, apperr.Validation("Invalid project ID")
	}

	var project models.Project

	if err := h.DB.Where("id = ? AND room_id = ?", projectID, roomID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, err
	}

	return &project, nil
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	if currentUser.Role != models.RolePM {
		ctx.JSON(http.StatusForbidden, gin.H{"message": "Only product managers can create projects"})
		return
	}

	roomID, err := utils.ParseUintParam(ctx, "room_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid room ID"})
		return
	}

	var room models.Room

	if err := h.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		} else {
			log.Printf("Failed to load room: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	var req CreateProjectRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	project := models.Project{
		RoomID:      room.ID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, newProjectResponse(&project))
}

func (h *ProjectHandler) GenerateTasks(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	if currentUser.Role != models.RolePM {
		ctx.JSON(http.StatusForbidden, gin.H{"message": "Only product managers can generate plans"})
		return
	}

	project, err := h.loadProject(ctx)

	if err != nil {
		apperr.Respond(ctx, err)
		return
	}

	// Blocking round-trip to the provider; the caller waits for the full
	// response.
	result, err := h.Planner.Generate(ctx.Request.Context(), project.ID)

	if err != nil {
		log.Printf("Plan generation failed for project %d: %v", project.ID, err)
		apperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(result))
}
