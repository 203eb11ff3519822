package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a fiscal document reconciled against a PurchaseOrder. When an
// order's selected items span multiple suppliers, one invoice is permitted per
// (order, supplier) pair; SupplierID is nil for single-supplier orders.
type Invoice struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index:idx_invoice_order_supplier,unique" json:"purchase_order_id"`
	PurchaseOrder   *PurchaseOrder  `gorm:"foreignKey:PurchaseOrderID" json:"purchase_order,omitempty"`
	SupplierID      *uuid.UUID      `gorm:"type:uuid;index:idx_invoice_order_supplier,unique" json:"supplier_id"`
	Supplier        *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	InvoiceNumber   string          `gorm:"type:varchar(100);not null" json:"invoice_number"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"` // subtotal + tax_amount
	FileURL         string          `gorm:"type:text" json:"file_url"`
	UploadedBy      *uuid.UUID      `gorm:"type:uuid" json:"uploaded_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
