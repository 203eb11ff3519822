package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quotation is one supplier's priced response to a Request. At most one
// quotation may exist per (request, supplier) pair.
//
// IsSelected is a derived aggregate: true iff every child QuotationItem is
// individually selected and at least one exists. It is recomputed inside the
// same transaction as any item-level selection change and must never be
// written independently.
type Quotation struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey;" json:"id"`
	RequestID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quotation_request_supplier" json:"request_id"`
	Request      *Request        `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quotation_request_supplier" json:"supplier_id"`
	Supplier     *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	QuotedBy     *uuid.UUID      `gorm:"type:uuid" json:"quoted_by"`
	Quoter       *User           `gorm:"foreignKey:QuotedBy" json:"quoter,omitempty"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	DeliveryDate *time.Time      `json:"delivery_date"`
	PaymentTerms string          `gorm:"type:varchar(100)" json:"payment_terms"`
	ValidUntil   *time.Time      `json:"valid_until"`
	IsSelected   bool            `gorm:"default:false;index" json:"is_selected"`

	Items     []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// QuotationItem is one supplier's price for one RequestItem. Its IsSelected
// flag is the authoritative item-level award; different items of the same
// request may be awarded to different suppliers.
type QuotationItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuotationID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"quotation_id"`
	RequestItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_item_id"`
	RequestItem   *RequestItem    `gorm:"foreignKey:RequestItemID" json:"request_item,omitempty"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"` // quantity * unit_price
	IsSelected    bool            `gorm:"default:false;index" json:"is_selected"`
	CreatedAt     time.Time       `json:"created_at"`
}
