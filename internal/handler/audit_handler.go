package handler

import (
	"net/http"

	"github.com/UP220404/cielito-home-compras/internal/middleware"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/repository"
	"github.com/UP220404/cielito-home-compras/internal/service"
	"github.com/UP220404/cielito-home-compras/pkg/pagination"
	"github.com/UP220404/cielito-home-compras/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/auditoria")
	{
		audit.GET("", middleware.RequireRole(model.RoleDirector, model.RoleAdmin), h.GetAuditLogs)
	}
}

// GetAuditLogs returns the audit trail, optionally filtered by action or entity
// @Summary      List audit logs
// @Tags         auditoria
// @Security     BearerAuth
// @Produce      json
// @Param        action     query     string  false  "Filter by action"
// @Param        entity_id  query     string  false  "Filter by entity"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/auditoria [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.AuditFilter{
		Action:   c.Query("action"),
		EntityID: c.Query("entity_id"),
		Page:     p.Page,
		Limit:    p.Limit,
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}
