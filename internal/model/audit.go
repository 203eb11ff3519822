package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRequest      = "CREATE_REQUEST"
	ActionChangeStatus       = "CHANGE_REQUEST_STATUS"
	ActionDeleteRequest      = "DELETE_REQUEST"
	ActionSubmitDraft        = "SUBMIT_DRAFT"
	ActionSubmitScheduled    = "SUBMIT_SCHEDULED"
	ActionApproveExcess      = "APPROVE_BUDGET_EXCESS"
	ActionRejectExcess       = "REJECT_BUDGET_EXCESS"
	ActionCreateQuotation    = "CREATE_QUOTATION"
	ActionUpdateQuotation    = "UPDATE_QUOTATION"
	ActionDeleteQuotation    = "DELETE_QUOTATION"
	ActionSelectItems        = "SELECT_QUOTATION_ITEMS"
	ActionCreateOrder        = "CREATE_PURCHASE_ORDER"
	ActionUpdateOrderStatus  = "UPDATE_ORDER_STATUS"
	ActionCreateInvoice      = "CREATE_INVOICE"
	ActionCreateBudget       = "CREATE_BUDGET"
	ActionUpdateBudget       = "UPDATE_BUDGET"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/folio)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
