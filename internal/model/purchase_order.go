package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrder status enum constants. Order status tracks physical
// fulfillment and is independent of the parent Request's status.
const (
	OrderStatusEmitida   = "emitida"
	OrderStatusTransito  = "en_transito"
	OrderStatusRecibida  = "recibida"
	OrderStatusCancelada = "cancelada"
)

// PurchaseOrder is materialized once a Request is authorized and a winning
// quotation is finalized. Exactly one may exist per Request.
type PurchaseOrder struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Folio            string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"folio"` // OC-YYYYMM-NNNN
	RequestID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"request_id"`
	Request          *Request        `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	QuotationID      uuid.UUID       `gorm:"type:uuid;not null" json:"quotation_id"`
	Quotation        *Quotation      `gorm:"foreignKey:QuotationID" json:"quotation,omitempty"`
	SupplierID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier         *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Area             string          `gorm:"type:varchar(100);not null;index" json:"area"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Status           string          `gorm:"type:varchar(20);not null;default:'emitida';index" json:"status"`
	ExpectedDelivery *time.Time      `json:"expected_delivery"`
	ActualDelivery   *time.Time      `json:"actual_delivery"`
	PDFPath          string          `gorm:"type:text" json:"pdf_path,omitempty"`
	CreatedBy        *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ValidOrderStatus reports whether st is a known purchase-order status.
func ValidOrderStatus(st string) bool {
	switch st {
	case OrderStatusEmitida, OrderStatusTransito, OrderStatusRecibida, OrderStatusCancelada:
		return true
	}
	return false
}

// CommittedOrderStatuses are the purchase-order statuses that count as spent
// budget. Cancelled orders release their committed amount.
var CommittedOrderStatuses = []string{OrderStatusEmitida, OrderStatusTransito, OrderStatusRecibida}
