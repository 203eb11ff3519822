package repository

import (
	"context"
	"fmt"

	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *model.Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Budget, error)
	GetByAreaYear(ctx context.Context, area string, year int) (*model.Budget, error)
	List(ctx context.Context, year int) ([]model.Budget, error)
	Update(ctx context.Context, budget *model.Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CommittedSpend sums purchase-order totals for the area and year across
	// committed statuses. Computed on every read, never stored.
	CommittedSpend(ctx context.Context, area string, year int) (decimal.Decimal, error)
}

type budgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	return GetDB(ctx, r.db).Create(budget).Error
}

func (r *budgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	var budget model.Budget
	if err := GetDB(ctx, r.db).First(&budget, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) GetByAreaYear(ctx context.Context, area string, year int) (*model.Budget, error) {
	var budget model.Budget
	if err := GetDB(ctx, r.db).First(&budget, "area = ? AND year = ?", area, year).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) List(ctx context.Context, year int) ([]model.Budget, error) {
	var budgets []model.Budget
	db := GetDB(ctx, r.db)
	if year > 0 {
		db = db.Where("year = ?", year)
	}
	if err := db.Order("area ASC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *budgetRepository) Update(ctx context.Context, budget *model.Budget) error {
	return GetDB(ctx, r.db).Save(budget).Error
}

func (r *budgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Budget{}, "id = ?", id).Error
}

func (r *budgetRepository) CommittedSpend(ctx context.Context, area string, year int) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := GetDB(ctx, r.db).Raw(`
		SELECT SUM(total_amount) FROM purchase_orders
		WHERE area = ?
		  AND EXTRACT(YEAR FROM created_at) = ?
		  AND status IN ?
	`, area, year, model.CommittedOrderStatuses).Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute committed spend: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
