package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/notify"
	"github.com/prakritea/decomposr/internal/types"
	"github.com/prakritea/decomposr/internal/utils"
	"gorm.io/gorm"
)

// listLimit caps the notification feed; older entries stay queryable only
// through the persisted rows.
const listLimit = 50

type NotificationHandler struct {
	DB *gorm.DB
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	var notifications []models.Notification

	if err := h.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(listLimit).
		Find(&notifications).Error; err != nil {
		log.Printf("Failed to list notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve notifications"})
		return
	}

	response := make([]types.NotificationResponse, 0, len(notifications))

	for i := range notifications {
		response = append(response, notify.Response(&notifications[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	notificationID, err := utils.ParseUintParam(ctx, "notification_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notification ID"})
		return
	}

	var notification models.Notification

	if err := h.DB.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
		} else {
			log.Printf("Failed to load notification: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	if err := h.DB.Model(&notification).Update("read", true).Error; err != nil {
		log.Printf("Failed to mark notification read: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update notification"})
		return
	}

	ctx.JSON(http.StatusOK, notify.Response(&notification))
}

func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		log.Printf("Failed to mark notifications read: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update notifications"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
