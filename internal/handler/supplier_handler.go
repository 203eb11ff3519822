package handler

import (
	"net/http"

	"github.com/UP220404/cielito-home-compras/internal/middleware"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/service"
	"github.com/UP220404/cielito-home-compras/pkg/pagination"
	"github.com/UP220404/cielito-home-compras/pkg/response"

	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	supplierService service.SupplierService
}

func NewSupplierHandler(supplierService service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchaser := middleware.RequireRole(model.RoleComprador, model.RoleAdmin)

	suppliers := router.Group("/api/proveedores")
	{
		suppliers.POST("", purchaser, h.Create)
		suppliers.GET("", middleware.RequireRole(allRoles...), h.List)
		suppliers.GET("/:id", middleware.RequireRole(allRoles...), h.Get)
		suppliers.PUT("/:id", purchaser, h.Update)
		suppliers.DELETE("/:id", purchaser, h.Deactivate)
	}
}

// Create registers a supplier
// @Summary      Create supplier
// @Tags         proveedores
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SupplierDTO  true  "Supplier payload"
// @Success      201      {object}  response.Response{data=model.Supplier}
// @Failure      409      {object}  response.Response
// @Router       /api/proveedores [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req service.SupplierDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

func (h *SupplierHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	activeOnly := c.DefaultQuery("active", "true") == "true"

	suppliers, total, err := h.supplierService.List(c.Request.Context(), activeOnly, p.Page, p.Limit)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"proveedores": suppliers,
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
	}))
}

func (h *SupplierHandler) Get(c *gin.Context) {
	supplier, err := h.supplierService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

func (h *SupplierHandler) Update(c *gin.Context) {
	var req service.SupplierDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

func (h *SupplierHandler) Deactivate(c *gin.Context) {
	if err := h.supplierService.Deactivate(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "proveedor desactivado"}))
}
