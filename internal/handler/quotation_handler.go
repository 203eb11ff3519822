package handler

import (
	"net/http"

	"github.com/UP220404/cielito-home-compras/internal/middleware"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/service"
	"github.com/UP220404/cielito-home-compras/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuotationHandler struct {
	quotationService service.QuotationService
}

func NewQuotationHandler(quotationService service.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

func (h *QuotationHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchaser := middleware.RequireRole(model.RoleComprador, model.RoleAdmin)

	quotations := router.Group("/api/cotizaciones")
	{
		quotations.POST("", purchaser, h.Create)
		quotations.PUT("/:id", purchaser, h.Update)
		quotations.DELETE("/:id", purchaser, h.Delete)
		quotations.DELETE("/partidas/:itemId", purchaser, h.DeleteItem)
	}

	requests := router.Group("/api/solicitudes/:id")
	{
		requests.GET("/cotizaciones", middleware.RequireRole(allRoles...), h.ListByRequest)
		requests.GET("/comparativa", middleware.RequireRole(model.RoleComprador, model.RoleDirector, model.RoleAdmin), h.Comparison)
		requests.POST("/seleccion", purchaser, h.SelectItems)
		requests.GET("/seleccion", middleware.RequireRole(model.RoleComprador, model.RoleDirector, model.RoleAdmin), h.SelectedItems)
	}
}

// Create registers a supplier quotation against a request
// @Summary      Create quotation
// @Description  Registers a supplier's priced response; the first quotation moves the request to cotizando
// @Tags         cotizaciones
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateQuotationDTO  true  "Quotation payload"
// @Success      201      {object}  response.Response{data=model.Quotation}
// @Failure      409      {object}  response.Response
// @Router       /api/cotizaciones [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	var req service.CreateQuotationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	quotation, err := h.quotationService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quotation))
}

func (h *QuotationHandler) Update(c *gin.Context) {
	var req service.UpdateQuotationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	quotation, err := h.quotationService.Update(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotation))
}

func (h *QuotationHandler) Delete(c *gin.Context) {
	if err := h.quotationService.Delete(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "cotización eliminada"}))
}

func (h *QuotationHandler) DeleteItem(c *gin.Context) {
	if err := h.quotationService.DeleteItem(c.Request.Context(), currentActor(c), c.Param("itemId")); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "partida eliminada"}))
}

func (h *QuotationHandler) ListByRequest(c *gin.Context) {
	quotations, err := h.quotationService.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotations))
}

// Comparison returns every supplier price grouped by request item
// @Summary      Quotation comparison
// @Description  Groups each supplier's price under every request item, cheapest first
// @Tags         cotizaciones
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.ComparisonRow}
// @Router       /api/solicitudes/{id}/comparativa [get]
func (h *QuotationHandler) Comparison(c *gin.Context) {
	rows, err := h.quotationService.ComparisonView(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// SelectItems awards request items across supplier quotations
// @Summary      Select quotation items
// @Description  Replaces the current selection; different items may be awarded to different suppliers
// @Tags         cotizaciones
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Request ID"
// @Param        payload  body      []service.SelectionDTO  true  "Selections"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/solicitudes/{id}/seleccion [post]
func (h *QuotationHandler) SelectItems(c *gin.Context) {
	var selections []service.SelectionDTO
	if err := c.ShouldBindJSON(&selections); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	if err := h.quotationService.SelectItems(c.Request.Context(), currentActor(c), c.Param("id"), selections); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "selección actualizada"}))
}

func (h *QuotationHandler) SelectedItems(c *gin.Context) {
	view, err := h.quotationService.SelectedItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}
