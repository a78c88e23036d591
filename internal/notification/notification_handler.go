package notification

import (
	"errors"
	"net/http"

	"go-tams/internal/shared/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMine(c *gin.Context) {
	recipientID := c.GetString("user_id")
	unreadOnly := c.Query("unread") == "true"

	resp, err := h.service.GetMine(c.Request.Context(), recipientID, unreadOnly)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MarkRead(c *gin.Context) {
	recipientID := c.GetString("user_id")

	if err := h.service.MarkRead(c.Request.Context(), recipientID, c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "notification not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, "Notification marked as read.", nil)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	recipientID := c.GetString("user_id")

	if err := h.service.MarkAllRead(c.Request.Context(), recipientID); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, "All notifications marked as read.", nil)
}
