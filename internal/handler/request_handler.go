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

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/solicitudes")
	{
		requests.POST("", middleware.RequireRole(allRoles...), h.Create)
		requests.GET("", middleware.RequireRole(allRoles...), h.List)
		requests.GET("/:id", middleware.RequireRole(allRoles...), h.Get)
		requests.PUT("/:id/estado", middleware.RequireRole(allRoles...), h.ChangeStatus)
		requests.PUT("/:id/borrador", middleware.RequireRole(allRoles...), h.UpdateDraft)
		requests.POST("/:id/enviar", middleware.RequireRole(allRoles...), h.SubmitDraft)
		requests.POST("/:id/aprobar-excedente", middleware.RequireRole(model.RoleDirector, model.RoleAdmin), h.ApproveExcess)
		requests.POST("/:id/rechazar-excedente", middleware.RequireRole(model.RoleDirector, model.RoleAdmin), h.RejectExcess)
		requests.DELETE("/:id", middleware.RequireRole(allRoles...), h.Delete)
	}
}

// Create registers a purchase request, draft, or scheduled request
// @Summary      Create request
// @Description  Creates a purchase request; as_draft saves an editable borrador, scheduled_at queues automatic submission
// @Tags         solicitudes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRequestDTO  true  "Request payload"
// @Success      201      {object}  response.Response{data=model.Request}
// @Failure      400      {object}  response.Response
// @Router       /api/solicitudes [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// List returns requests filtered by status, area, or priority
// @Summary      List requests
// @Tags         solicitudes
// @Security     BearerAuth
// @Produce      json
// @Param        status    query     string  false  "Filter by status"
// @Param        area      query     string  false  "Filter by area"
// @Param        priority  query     string  false  "Filter by priority"
// @Param        mine      query     bool    false  "Only the caller's own requests"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Router       /api/solicitudes [get]
func (h *RequestHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.RequestFilter{
		Status:   c.Query("status"),
		Area:     c.Query("area"),
		Priority: c.Query("priority"),
		Page:     p.Page,
		Limit:    p.Limit,
	}
	mineOnly := c.Query("mine") == "true"

	requests, total, err := h.requestService.List(c.Request.Context(), currentActor(c), filter, mineOnly)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"solicitudes": requests,
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
	}))
}

func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.requestService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// ChangeStatus moves a request through its workflow
// @Summary      Change request status
// @Description  Transitions the request; role and current-status rules apply, rejections require a reason
// @Tags         solicitudes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Request ID"
// @Param        payload  body      service.ChangeStatusDTO  true  "Target status and optional reason"
// @Success      200      {object}  response.Response{data=model.Request}
// @Failure      422      {object}  response.Response
// @Router       /api/solicitudes/{id}/estado [put]
func (h *RequestHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangeStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	request, err := h.requestService.ChangeStatus(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

func (h *RequestHandler) UpdateDraft(c *gin.Context) {
	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	request, err := h.requestService.UpdateDraft(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// SubmitDraft submits a saved borrador into the pending queue
// @Summary      Submit draft
// @Tags         solicitudes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.Request}
// @Failure      422  {object}  response.Response
// @Router       /api/solicitudes/{id}/enviar [post]
func (h *RequestHandler) SubmitDraft(c *gin.Context) {
	request, err := h.requestService.SubmitDraft(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

func (h *RequestHandler) ApproveExcess(c *gin.Context) {
	request, err := h.requestService.ApproveExcess(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

func (h *RequestHandler) RejectExcess(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "se requiere un motivo de rechazo"))
		return
	}

	request, err := h.requestService.RejectExcess(c.Request.Context(), currentActor(c), c.Param("id"), req.Reason)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.requestService.Delete(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "solicitud eliminada"}))
}
