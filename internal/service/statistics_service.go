package service

import (
	"context"
	"time"

	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsService interface {
	GetDashboard(ctx context.Context, startDate, endDate time.Time) (model.DashboardResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetDashboard aggregates request and order metrics for the date range.
// Spend figures only count committed orders; cancelled ones are excluded.
func (s *statisticsService) GetDashboard(ctx context.Context, startDate, endDate time.Time) (model.DashboardResponse, error) {
	var response model.DashboardResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate
	response.RequestsByStatus = make(map[string]int64)

	// Requests per status
	var statusCounts []struct {
		Status string
		Count  int64
	}
	if err := s.db.WithContext(ctx).Table("requests").
		Select("status, COUNT(*) as count").
		Where("is_draft = false AND created_at >= ? AND created_at <= ?", startDate, endDate).
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return response, err
	}
	for _, sc := range statusCounts {
		response.RequestsByStatus[sc.Status] = sc.Count
	}
	response.PendingApproval = response.RequestsByStatus[model.StatusPendiente] +
		response.RequestsByStatus[model.StatusCotizando]

	// Committed spend and order count
	var totals struct {
		Total decimal.Decimal
		Count int64
	}
	if err := s.db.WithContext(ctx).Table("purchase_orders").
		Select("COALESCE(SUM(total_amount), 0) as total, COUNT(*) as count").
		Where("status IN ? AND created_at >= ? AND created_at <= ?", model.CommittedOrderStatuses, startDate, endDate).
		Scan(&totals).Error; err != nil {
		return response, err
	}
	response.TotalSpent = totals.Total
	response.OrderCount = totals.Count

	// Monthly order totals
	var monthly []struct {
		Month string
		Total decimal.Decimal
		Count int64
	}
	if err := s.db.WithContext(ctx).Table("purchase_orders").
		Select("TO_CHAR(created_at, 'YYYY-MM') as month, COALESCE(SUM(total_amount), 0) as total, COUNT(*) as count").
		Where("status IN ? AND created_at >= ? AND created_at <= ?", model.CommittedOrderStatuses, startDate, endDate).
		Group("TO_CHAR(created_at, 'YYYY-MM')").
		Order("month ASC").
		Scan(&monthly).Error; err != nil {
		return response, err
	}
	response.MonthlyTotals = make([]model.MonthlyTotal, 0, len(monthly))
	for _, m := range monthly {
		response.MonthlyTotals = append(response.MonthlyTotals, model.MonthlyTotal{
			Month: m.Month,
			Total: m.Total,
			Count: m.Count,
		})
	}

	// Top suppliers by committed order value
	var topSuppliers []struct {
		SupplierID   string
		SupplierName string
		OrderCount   int64
		TotalValue   decimal.Decimal
	}
	if err := s.db.WithContext(ctx).Table("purchase_orders").
		Select("suppliers.id as supplier_id, suppliers.name as supplier_name, COUNT(*) as order_count, COALESCE(SUM(purchase_orders.total_amount), 0) as total_value").
		Joins("JOIN suppliers ON suppliers.id = purchase_orders.supplier_id").
		Where("purchase_orders.status IN ? AND purchase_orders.created_at >= ? AND purchase_orders.created_at <= ?", model.CommittedOrderStatuses, startDate, endDate).
		Group("suppliers.id, suppliers.name").
		Order("total_value DESC").
		Limit(5).
		Scan(&topSuppliers).Error; err != nil {
		return response, err
	}
	response.TopSuppliers = make([]model.SupplierRanking, 0, len(topSuppliers))
	for _, t := range topSuppliers {
		response.TopSuppliers = append(response.TopSuppliers, model.SupplierRanking{
			SupplierID:   t.SupplierID,
			SupplierName: t.SupplierName,
			OrderCount:   t.OrderCount,
			TotalValue:   t.TotalValue,
		})
	}

	return response, nil
}
