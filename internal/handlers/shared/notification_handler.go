package handlers

import (
	"tricy/internal/models"
	"tricy/internal/services"
	"tricy/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// SendNotification lets an admin message a user directly
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	var request models.CreateNotificationRequest
	if !bindJSON(c, &request) {
		return
	}

	notification, err := h.notificationService.Create(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Notification sent successfully", notification)
}

func (h *NotificationHandler) ListUserNotifications(c *gin.Context) {
	notifications, err := h.notificationService.ListForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Notifications retrieved successfully", notifications, &utils.Meta{Count: len(notifications)})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notification, err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification marked as read", notification)
}
