package repository

import (
	"context"

	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuotationRepository interface {
	Create(ctx context.Context, quotation *model.Quotation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error)
	GetByRequestAndSupplier(ctx context.Context, requestID, supplierID uuid.UUID) (*model.Quotation, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Quotation, error)
	CountByRequest(ctx context.Context, requestID uuid.UUID) (int64, error)
	Update(ctx context.Context, quotation *model.Quotation) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetItem(ctx context.Context, itemID uuid.UUID) (*model.QuotationItem, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ListItemsByRequest(ctx context.Context, requestID uuid.UUID) ([]model.QuotationItem, error)
	ListSelectedItemsByRequest(ctx context.Context, requestID uuid.UUID) ([]model.QuotationItem, error)
	ClearSelections(ctx context.Context, requestID uuid.UUID) error
	MarkItemsSelected(ctx context.Context, itemIDs []uuid.UUID) error
	SetQuotationSelected(ctx context.Context, quotationID uuid.UUID, selected bool) error
}

type quotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) Create(ctx context.Context, quotation *model.Quotation) error {
	return GetDB(ctx, r.db).Create(quotation).Error
}

func (r *quotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	var quotation model.Quotation
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Supplier").
		First(&quotation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *quotationRepository) GetByRequestAndSupplier(ctx context.Context, requestID, supplierID uuid.UUID) (*model.Quotation, error) {
	var quotation model.Quotation
	if err := GetDB(ctx, r.db).
		First(&quotation, "request_id = ? AND supplier_id = ?", requestID, supplierID).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *quotationRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Quotation, error) {
	var quotations []model.Quotation
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.RequestItem").
		Preload("Supplier").
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&quotations).Error; err != nil {
		return nil, err
	}
	return quotations, nil
}

func (r *quotationRepository) CountByRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Quotation{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count, err
}

func (r *quotationRepository) Update(ctx context.Context, quotation *model.Quotation) error {
	return GetDB(ctx, r.db).Save(quotation).Error
}

func (r *quotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("quotation_id = ?", id).Delete(&model.QuotationItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Quotation{}, "id = ?", id).Error
}

func (r *quotationRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*model.QuotationItem, error) {
	var item model.QuotationItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *quotationRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.QuotationItem{}, "id = ?", itemID).Error
}

func (r *quotationRepository) ListItemsByRequest(ctx context.Context, requestID uuid.UUID) ([]model.QuotationItem, error) {
	var items []model.QuotationItem
	if err := GetDB(ctx, r.db).
		Joins("JOIN quotations ON quotations.id = quotation_items.quotation_id").
		Where("quotations.request_id = ?", requestID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *quotationRepository) ListSelectedItemsByRequest(ctx context.Context, requestID uuid.UUID) ([]model.QuotationItem, error) {
	var items []model.QuotationItem
	if err := GetDB(ctx, r.db).
		Preload("RequestItem").
		Joins("JOIN quotations ON quotations.id = quotation_items.quotation_id").
		Where("quotations.request_id = ? AND quotation_items.is_selected = true", requestID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ClearSelections resets the item-level and quotation-level selection flags of
// every quotation under the request. Always paired with MarkItemsSelected and
// the aggregate recompute inside one transaction.
func (r *quotationRepository) ClearSelections(ctx context.Context, requestID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Exec(`
		UPDATE quotation_items SET is_selected = false
		WHERE quotation_id IN (SELECT id FROM quotations WHERE request_id = ?)
	`, requestID).Error; err != nil {
		return err
	}
	return db.Model(&model.Quotation{}).
		Where("request_id = ?", requestID).
		Update("is_selected", false).Error
}

func (r *quotationRepository) MarkItemsSelected(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.QuotationItem{}).
		Where("id IN ?", itemIDs).
		Update("is_selected", true).Error
}

func (r *quotationRepository) SetQuotationSelected(ctx context.Context, quotationID uuid.UUID, selected bool) error {
	return GetDB(ctx, r.db).Model(&model.Quotation{}).
		Where("id = ?", quotationID).
		Update("is_selected", selected).Error
}
