package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is one allocation per (area, fiscal year). Spent amount is never
// stored: it is computed on read by summing purchase-order totals for the
// area/year in committed statuses, so concurrent orders cannot drift a counter.
type Budget struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Area        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_budget_area_year" json:"area"`
	Year        int             `gorm:"not null;uniqueIndex:idx_budget_area_year" json:"year"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Budget alert levels, informational tiers surfaced by availability checks.
const (
	BudgetAlertNone     = "none"
	BudgetAlertInfo     = "info"     // >= 75% committed
	BudgetAlertWarning  = "warning"  // >= 90% committed
	BudgetAlertCritical = "critical" // >= 100% committed, requires director approval
)
