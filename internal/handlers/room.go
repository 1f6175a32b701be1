package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/prakritea/decomposr/internal/invitecode"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/notify"
	"github.com/prakritea/decomposr/internal/utils"
	"gorm.io/gorm"
)

type RoomHandler struct {
	DB     *gorm.DB
	Notify *notify.Dispatcher
}

type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type JoinRoomRequest struct {
	InviteCode string `json:"invite_code" binding:"required,len=8"`
}

// roomGraph loads a room with its full nested graph.
func (h *RoomHandler) roomGraph(roomID uint) (*models.Room, error) {
	var room models.Room

	err := h.DB.
		Preload("Members.User").
		Preload("Projects.Epics.Tasks").
		Preload("Projects.Tasks").
		First(&room, roomID).Error

	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (h *RoomHandler) isMember(roomID, userID uint) (bool, error) {
	var count int64

	err := h.DB.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error

	return count > 0, err
}

func (h *RoomHandler) Create(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	if currentUser.Role != models.RolePM {
		ctx.JSON(http.StatusForbidden, gin.H{"message": "Only product managers can create rooms"})
		return
	}

	var req CreateRoomRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var room models.Room

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		code, err := invitecode.GenerateUnique(func(code string) (bool, error) {
			var count int64
			if err := tx.Model(&models.Room{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
				return false, err
			}
			return count > 0, nil
		})

		if err != nil {
			return err
		}

		room = models.Room{
			Name:        req.Name,
			Description: req.Description,
			InviteCode:  code,
			CreatorID:   currentUser.ID,
		}

		if err := tx.Create(&room).Error; err != nil {
			return err
		}

		member := models.RoomMember{
			UserID:   currentUser.ID,
			RoomID:   room.ID,
			Role:     models.MemberRoleOwner,
			JoinedAt: time.Now(),
		}

		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		// Every room starts with one default project
		project := models.Project{
			RoomID:      room.ID,
			Name:        req.Name,
			Description: req.Description,
		}

		return tx.Create(&project).Error
	})

	if err != nil {
		log.Printf("Failed to create room: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create room"})
		return
	}

	graph, err := h.roomGraph(room.ID)

	if err != nil {
		log.Printf("Failed to load room graph: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load room"})
		return
	}

	ctx.JSON(http.StatusCreated, newRoomResponse(graph))
}

func (h *RoomHandler) Join(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var req JoinRoomRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))

	var room models.Room

	if err := h.DB.Where("invite_code = ?", code).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		} else {
			log.Printf("Failed to look up room by invite code: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	member, err := h.isMember(room.ID, currentUser.ID)

	if err != nil {
		log.Printf("Failed to check membership: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// Re-join is idempotent: return the room without a duplicate row
	if !member {
		newMember := models.RoomMember{
			UserID:   currentUser.ID,
			RoomID:   room.ID,
			Role:     models.MemberRoleMember,
			JoinedAt: time.Now(),
		}

		if err := h.DB.Create(&newMember).Error; err != nil {
			log.Printf("Failed to create room member: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to join room"})
			return
		}

		roomID := room.ID
		_, err = h.Notify.Dispatch(
			room.CreatorID,
			&roomID,
			models.NotificationRoomJoined,
			"New room member",
			fmt.Sprintf("%s joined %q", displayNameOrFallback(currentUser.Name), room.Name),
			fmt.Sprintf("/rooms/%d", room.ID),
		)
		if err != nil {
			log.Printf("Failed to dispatch room_joined notification: %v", err)
		}
	}

	graph, err := h.roomGraph(room.ID)

	if err != nil {
		log.Printf("Failed to load room graph: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load room"})
		return
	}

	ctx.JSON(http.StatusOK, newRoomResponse(graph))
}

func (h *RoomHandler) UserRooms(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var memberships []models.RoomMember

	if err := h.DB.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		log.Printf("Failed to list memberships: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve rooms"})
		return
	}

	response := make([]RoomResponse, 0, len(memberships))

	for _, membership := range memberships {
		graph, err := h.roomGraph(membership.RoomID)

		if err != nil {
			log.Printf("Failed to load room %d: %v", membership.RoomID, err)
			continue
		}

		response = append(response, newRoomResponse(graph))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *RoomHandler) Get(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	roomID, err := utils.ParseUintParam(ctx, "room_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid room ID"})
		return
	}

	graph, err := h.roomGraph(roomID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		} else {
			log.Printf("Failed to load room graph: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load room"})
		}
		return
	}

	member, err := h.isMember(roomID, currentUser.ID)

	if err != nil {
		log.Printf("Failed to check membership: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if !member {
		ctx.JSON(http.StatusForbidden, gin.H{"message": "You are not a member of this room"})
		return
	}

	ctx.JSON(http.StatusOK, newRoomResponse(graph))
}

func (h *RoomHandler) Delete(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
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

	if currentUser.Role != models.RolePM || currentUser.ID != room.CreatorID {
		ctx.JSON(http.StatusForbidden, gin.H{"message": "Only the room creator can delete this room"})
		return
	}

	// Delete in dependency order so a strict-FK store stays consistent:
	// tasks, epics, projects, members, notifications, then the room.
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint

		if err := tx.Model(&models.Project{}).Where("room_id = ?", room.ID).Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		if len(projectIDs) > 0 {
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}

			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.Epic{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Project{}).Error; err != nil {
			return err
		}

		if err := tx.Where("room_id = ?", room.ID).Delete(&models.RoomMember{}).Error; err != nil {
			return err
		}

		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		return tx.Delete(&room).Error
	})

	if err != nil {
		log.Printf("Failed to delete room: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete room"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// displayNameOrFallback renders a joining user's name for notification
// text. Raw internal ids have been observed leaking into the name field,
// so anything empty or id-looking falls back to a generic string.
func displayNameOrFallback(name string) string {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" || looksLikeIdentifier(trimmed) {
		return "A new member"
	}

	return trimmed
}

func looksLikeIdentifier(s string) bool {
	if strings.ContainsRune(s, ' ') || len(s) < 16 {
		return false
	}

	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.IsLower(r) && r != '-' && r != '_' {
			return false
		}
	}

	return true
}
