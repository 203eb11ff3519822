package handler

import (
	"net/http"

	"github.com/UP220404/cielito-home-compras/internal/middleware"
	"github.com/UP220404/cielito-home-compras/internal/service"
	"github.com/UP220404/cielito-home-compras/pkg/pagination"
	"github.com/UP220404/cielito-home-compras/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notificaciones", middleware.RequireRole(allRoles...))
	{
		notifications.GET("", h.ListMine)
		notifications.PUT("/:id/leida", h.MarkRead)
		notifications.PUT("/leidas", h.MarkAllRead)
	}
}

// ListMine returns the caller's notifications
// @Summary      List notifications
// @Tags         notificaciones
// @Security     BearerAuth
// @Produce      json
// @Param        unread  query     bool  false  "Only unread"
// @Param        page    query     int   false  "Page number (default 1)"
// @Param        limit   query     int   false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/notificaciones [get]
func (h *NotificationHandler) ListMine(c *gin.Context) {
	p := pagination.Parse(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.ListMine(c.Request.Context(), currentActor(c), unreadOnly, p.Page, p.Limit)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"notificaciones": notifications,
		"total":          total,
		"page":           p.Page,
		"limit":          p.Limit,
	}))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "notificación leída"}))
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context(), currentActor(c)); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "notificaciones leídas"}))
}
