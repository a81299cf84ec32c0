package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/apperror"
	"socialbot-gateway/pkg/models"
)

// Notifier pushes newly created notifications to realtime subscribers.
type Notifier interface {
	NotifyNotification(n models.Notification)
}

type NotificationHandler struct {
	notifications *database.NotificationRepository
	notifier      Notifier
}

func NewNotificationHandler(notifications *database.NotificationRepository, notifier Notifier) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, notifier: notifier}
}

func (h *NotificationHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)
	items, total, err := h.notifications.List(c.Request.Context(), models.NotificationListParams{
		UnreadOnly: c.Query("unread") == "true",
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, items, page, perPage, total)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notifications.UnreadCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"unread": n})
}

// Create records a notification raised by another service and pushes it.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req models.Notification
	if !bindJSON(c, &req) {
		return
	}
	if req.Title == "" {
		respondError(c, apperror.ValidationError("title is required"))
		return
	}
	if req.Type == "" {
		req.Type = models.NotificationSystem
	}
	n, err := h.notifications.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.notifier.NotifyNotification(n)
	respond(c, http.StatusCreated, n)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req models.MarkReadRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.IDs) == 0 {
		respondError(c, apperror.ValidationError("ids must not be empty"))
		return
	}
	n, err := h.notifications.MarkRead(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": n})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": n})
}
