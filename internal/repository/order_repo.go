package repository

import (
	"context"
	"fmt"

	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status     string
	Area       string
	SupplierID *uuid.UUID
	Page       int
	Limit      int
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.PurchaseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]model.PurchaseOrder, int64, error)
	Update(ctx context.Context, order *model.PurchaseOrder) error
	NextFolio(ctx context.Context, year int, month int) (string, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := GetDB(ctx, r.db).
		Preload("Request").
		Preload("Request.Items").
		Preload("Quotation").
		Preload("Quotation.Items").
		Preload("Supplier").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByRequest(ctx context.Context, requestID uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := GetDB(ctx, r.db).First(&order, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	db := GetDB(ctx, r.db).Model(&model.PurchaseOrder{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Area != "" {
		db = db.Where("area = ?", filter.Area)
	}
	if filter.SupplierID != nil {
		db = db.Where("supplier_id = ?", *filter.SupplierID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Request").
		Preload("Supplier").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Save(order).Error
}

// NextFolio generates the next purchase-order folio scoped by year and month
// (OC-YYYYMM-NNNN). A pg advisory lock on the prefix serializes concurrent
// generators.
func (r *orderRepository) NextFolio(ctx context.Context, year int, month int) (string, error) {
	db := GetDB(ctx, r.db)
	prefix := fmt.Sprintf("OC-%04d%02d-", year, month)

	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	var last string
	if err := db.Model(&model.PurchaseOrder{}).
		Where("folio LIKE ?", prefix+"%").
		Select("COALESCE(MAX(folio), '')").
		Scan(&last).Error; err != nil {
		return "", err
	}

	return nextFolio(prefix, last, 4)
}
