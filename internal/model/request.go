package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request status enum constants. The legal transition graph lives in
// internal/workflow; these are the only values the status column may take.
const (
	StatusBorrador   = "borrador"
	StatusProgramada = "programada"
	StatusPendiente  = "pendiente"
	StatusCotizando  = "cotizando"
	StatusAutorizada = "autorizada"
	StatusComprada   = "comprada"
	StatusEntregada  = "entregada"
	StatusRechazada  = "rechazada"
	StatusCancelada  = "cancelada"
)

// Priority enum constants
const (
	PriorityNormal  = "normal"
	PriorityUrgente = "urgente"
	PriorityCritica = "critica"
)

// Request is a purchase requisition raised by a solicitante. It moves through
// the status graph as purchasers quote it, a director authorizes it, and the
// resulting purchase order is delivered.
type Request struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Folio         string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"folio"` // SOL-YYYY-NNNNN
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Area          string     `gorm:"type:varchar(100);not null;index" json:"area"`
	RequestDate   time.Time  `gorm:"not null" json:"request_date"`
	NeededDate    *time.Time `json:"needed_date"`
	Priority      string     `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"` // normal, urgente, critica
	Justification string     `gorm:"type:text" json:"justification"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pendiente';index" json:"status"`

	AuthorizedBy    *uuid.UUID `gorm:"type:uuid" json:"authorized_by"`
	Authorizer      *User      `gorm:"foreignKey:AuthorizedBy" json:"authorizer,omitempty"`
	AuthorizedAt    *time.Time `json:"authorized_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`

	// BudgetApproved marks an explicit director override for a request whose
	// estimated cost pushes the area past 100% of its annual budget.
	BudgetApproved bool `gorm:"default:false" json:"budget_approved"`

	// Draft / scheduled submission. DraftData holds a JSON snapshot of
	// in-progress edits until the draft is submitted.
	IsDraft     bool       `gorm:"default:false;index" json:"is_draft"`
	IsScheduled bool       `gorm:"default:false;index" json:"is_scheduled"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	DraftData   string     `gorm:"type:jsonb" json:"draft_data,omitempty"`

	Items     []RequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RequestItem is one material line of a request. Owned exclusively by its
// Request and removed in cascade with it.
type RequestItem struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"request_id"`
	Material        string           `gorm:"type:varchar(255);not null" json:"material"`
	Specification   string           `gorm:"type:text" json:"specification"`
	Quantity        decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit            string           `gorm:"type:varchar(50);not null" json:"unit"` // pieza, caja, litro, kg
	ApproxCost      *decimal.Decimal `gorm:"type:decimal(18,4)" json:"approx_cost"`
	InStock         bool             `gorm:"default:false" json:"in_stock"`
	StorageLocation string           `gorm:"type:varchar(255)" json:"storage_location"`
	CreatedAt       time.Time        `json:"created_at"`
}

// TerminalStatus reports whether st admits no further transitions.
func TerminalStatus(st string) bool {
	return st == StatusEntregada || st == StatusRechazada || st == StatusCancelada
}

// ValidStatus reports whether st is a known request status value.
func ValidStatus(st string) bool {
	switch st {
	case StatusBorrador, StatusProgramada, StatusPendiente, StatusCotizando,
		StatusAutorizada, StatusComprada, StatusEntregada, StatusRechazada, StatusCancelada:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p string) bool {
	return p == PriorityNormal || p == PriorityUrgente || p == PriorityCritica
}
