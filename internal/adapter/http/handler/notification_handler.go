package handler

import (
	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler handles in-app notification endpoints.
type NotificationHandler struct {
	notificationSvc ports.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationSvc ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// Send handles POST /api/v1/admin/notifications. Admins use it to push
// announcements into a user's in-app feed.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req dto.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	n := &domain.Notification{
		UserID:  userID,
		TitleAr: req.TitleAr,
		TitleEn: req.TitleEn,
		BodyAr:  req.BodyAr,
		BodyEn:  req.BodyEn,
		Link:    req.Link,
	}
	if err := h.notificationSvc.Notify(c.Request.Context(), n); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n)
}

// List handles GET /api/v1/notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	uid := actorID(c)
	if uid == nil {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	notifications, err := h.notificationSvc.ListForUser(c.Request.Context(), *uid, queryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notifications)
}

// UnreadCount handles GET /api/v1/notifications/unread.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	uid := actorID(c)
	if uid == nil {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	count, err := h.notificationSvc.UnreadCount(c.Request.Context(), *uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UnreadCountResponse{Unread: count})
}

// MarkRead handles POST /api/v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	uid := actorID(c)
	if uid == nil {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid notification id"))
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), *uid, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	uid := actorID(c)
	if uid == nil {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.notificationSvc.MarkAllRead(c.Request.Context(), *uid); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
