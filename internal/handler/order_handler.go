package handler

import (
	"net/http"
	"os"

	"github.com/UP220404/cielito-home-compras/internal/middleware"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/repository"
	"github.com/UP220404/cielito-home-compras/internal/service"
	"github.com/UP220404/cielito-home-compras/pkg/pagination"
	"github.com/UP220404/cielito-home-compras/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchaser := middleware.RequireRole(model.RoleComprador, model.RoleAdmin)

	orders := router.Group("/api/ordenes")
	{
		orders.POST("", purchaser, h.Create)
		orders.GET("", middleware.RequireRole(allRoles...), h.List)
		orders.GET("/:id", middleware.RequireRole(allRoles...), h.Get)
		orders.GET("/:id/pdf", middleware.RequireRole(allRoles...), h.DownloadPDF)
		orders.PUT("/:id/estado", purchaser, h.UpdateStatus)
		orders.POST("/facturas", purchaser, h.CreateInvoice)
		orders.GET("/:id/facturas", middleware.RequireRole(allRoles...), h.ListInvoices)
	}
}

// Create materializes a purchase order from an authorized request
// @Summary      Create purchase order
// @Description  Generates the order from the selected quotation; the request moves to comprada
// @Tags         ordenes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderDTO  true  "Order payload"
// @Success      201      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      409      {object}  response.Response
// @Router       /api/ordenes [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// List returns purchase orders filtered by status, area, or supplier
// @Summary      List purchase orders
// @Tags         ordenes
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by status"
// @Param        area         query     string  false  "Filter by area"
// @Param        supplier_id  query     string  false  "Filter by supplier"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/ordenes [get]
func (h *OrderHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.OrderFilter{
		Status: c.Query("status"),
		Area:   c.Query("area"),
		Page:   p.Page,
		Limit:  p.Limit,
	}
	if raw := c.Query("supplier_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.SupplierID = &id
		}
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"ordenes": orders,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DownloadPDF streams the generated order document
// @Summary      Download order PDF
// @Tags         ordenes
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path      string  true  "Order ID"
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Router       /api/ordenes/{id}/pdf [get]
func (h *OrderHandler) DownloadPDF(c *gin.Context) {
	order, err := h.orderService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	if order.PDFPath == "" {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "la orden no tiene PDF generado"))
		return
	}
	if _, err := os.Stat(order.PDFPath); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "el archivo PDF no está disponible"))
		return
	}
	c.FileAttachment(order.PDFPath, "orden_"+order.Folio+".pdf")
}

// UpdateStatus moves the order through fulfillment
// @Summary      Update order status
// @Description  Marking the order recibida closes the parent request as entregada
// @Tags         ordenes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Order ID"
// @Param        payload  body      service.UpdateOrderStatusDTO  true  "Target status"
// @Success      200      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      422      {object}  response.Response
// @Router       /api/ordenes/{id}/estado [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateOrderStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CreateInvoice registers a fiscal document against an order
// @Summary      Create invoice
// @Tags         ordenes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceDTO  true  "Invoice payload"
// @Success      201      {object}  response.Response{data=model.Invoice}
// @Failure      409      {object}  response.Response
// @Router       /api/ordenes/facturas [post]
func (h *OrderHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	invoice, err := h.orderService.CreateInvoice(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

func (h *OrderHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.orderService.ListInvoices(c.Request.Context(), c.Param("id"))
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}
