package handler

import (
	"net/http"
	"strconv"

	"github.com/UP220404/cielito-home-compras/internal/middleware"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/service"
	"github.com/UP220404/cielito-home-compras/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BudgetHandler struct {
	budgetService service.BudgetService
}

func NewBudgetHandler(budgetService service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

func (h *BudgetHandler) RegisterRoutes(router *gin.RouterGroup) {
	director := middleware.RequireRole(model.RoleDirector, model.RoleAdmin)

	budgets := router.Group("/api/presupuestos")
	{
		budgets.POST("", director, h.Create)
		budgets.GET("", middleware.RequireRole(allRoles...), h.List)
		budgets.PUT("/:id", director, h.Update)
		budgets.DELETE("/:id", director, h.Delete)
		budgets.GET("/disponibilidad", middleware.RequireRole(allRoles...), h.CheckAvailability)
		budgets.GET("/resumen", middleware.RequireRole(model.RoleComprador, model.RoleDirector, model.RoleAdmin), h.Overview)
	}
}

// Create assigns an annual budget to an area
// @Summary      Create budget
// @Tags         presupuestos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BudgetDTO  true  "Budget payload"
// @Success      201      {object}  response.Response{data=model.Budget}
// @Failure      409      {object}  response.Response
// @Router       /api/presupuestos [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var req service.BudgetDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	budget, err := h.budgetService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, budget))
}

func (h *BudgetHandler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	budgets, err := h.budgetService.List(c.Request.Context(), year)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budgets))
}

func (h *BudgetHandler) Update(c *gin.Context) {
	var req service.BudgetDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "payload inválido: "+err.Error()))
		return
	}

	budget, err := h.budgetService.Update(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, budget))
}

func (h *BudgetHandler) Delete(c *gin.Context) {
	if err := h.budgetService.Delete(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "presupuesto eliminado"}))
}

// CheckAvailability evaluates a prospective spend against an area's budget
// @Summary      Check budget availability
// @Description  Computes the alert tier a spend would reach; exceeding 100% requires director approval
// @Tags         presupuestos
// @Security     BearerAuth
// @Produce      json
// @Param        area    query     string  true   "Area"
// @Param        amount  query     string  true   "Amount to check"
// @Param        year    query     int     false  "Year (default current)"
// @Success      200     {object}  response.Response{data=service.Availability}
// @Failure      404     {object}  response.Response
// @Router       /api/presupuestos/disponibilidad [get]
func (h *BudgetHandler) CheckAvailability(c *gin.Context) {
	area := c.Query("area")
	if area == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "se requiere el parámetro area"))
		return
	}
	amount, err := decimal.NewFromString(c.DefaultQuery("amount", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "monto inválido"))
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))

	availability, err := h.budgetService.CheckAvailability(c.Request.Context(), area, amount, year)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, availability))
}

func (h *BudgetHandler) Overview(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	overview, err := h.budgetService.Overview(c.Request.Context(), year)
	if err != nil {
		code, resp := response.FromError(err)
		c.JSON(code, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
