package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse aggregates the purchasing metrics shown on the home
// dashboard. All monetary values come from purchase orders, not estimates.
type DashboardResponse struct {
	TimeRangeStartDate time.Time `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time `json:"time_range_end_date"`

	RequestsByStatus map[string]int64  `json:"requests_by_status"`
	PendingApproval  int64             `json:"pending_approval"`
	MonthlyTotals    []MonthlyTotal    `json:"monthly_totals"`
	TopSuppliers     []SupplierRanking `json:"top_suppliers"`
	TotalSpent       decimal.Decimal   `json:"total_spent"`
	OrderCount       int64             `json:"order_count"`
}

type MonthlyTotal struct {
	Month string          `json:"month"` // YYYY-MM
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type SupplierRanking struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	OrderCount   int64           `json:"order_count"`
	TotalValue   decimal.Decimal `json:"total_value"`
}
