package database

import (
	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Supplier{},
		&model.Request{},
		&model.RequestItem{},
		&model.Quotation{},
		&model.QuotationItem{},
		&model.Budget{},
		&model.PurchaseOrder{},
		&model.Invoice{},
		&model.AuditLog{},
		&model.Notification{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}
