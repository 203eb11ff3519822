package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status   string
	Area     string
	Priority string
	UserID   *uuid.UUID
	Page     int
	Limit    int
}

type RequestRepository interface {
	Create(ctx context.Context, request *model.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]model.Request, int64, error)
	ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]model.Request, error)
	Update(ctx context.Context, request *model.Request) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.RequestItem) error
	NextFolio(ctx context.Context, year int) (string, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *model.Request) error {
	return GetDB(ctx, r.db).Create(request).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var request model.Request
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("User").
		Preload("Authorizer").
		First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// GetByIDForUpdate locks the request row for the duration of the enclosing
// transaction. Used wherever a status re-check must be race-free (draft
// submission, the scheduler poller, status transitions).
func (r *requestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var request model.Request
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Request{}).Where("is_draft = false")
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Area != "" {
		db = db.Where("area = ?", filter.Area)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Items").
		Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]model.Request, error) {
	var requests []model.Request
	if err := GetDB(ctx, r.db).
		Where("is_scheduled = true AND status = ? AND scheduled_at <= ?", model.StatusProgramada, now).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Update(ctx context.Context, request *model.Request) error {
	return GetDB(ctx, r.db).Save(request).Error
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Request{}).Where("id = ?", id).Update("status", status).Error
}

func (r *requestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Select(clause.Associations).Delete(&model.Request{ID: id}).Error
}

// ReplaceItems swaps the full item set of a request. Items are
// append/replace-only prior to authorization; callers enforce the status gate.
func (r *requestRepository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.RequestItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", requestID).Delete(&model.RequestItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].RequestID = requestID
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

// NextFolio generates the next year-scoped request folio (SOL-YYYY-NNNNN).
// A pg advisory lock on the prefix serializes concurrent generators. The
// sequence continues past the greatest folio ever issued; requests can be
// hard-deleted, so counting rows would eventually reissue a taken number.
func (r *requestRepository) NextFolio(ctx context.Context, year int) (string, error) {
	db := GetDB(ctx, r.db)
	prefix := fmt.Sprintf("SOL-%d-", year)

	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	var last string
	if err := db.Model(&model.Request{}).
		Where("folio LIKE ?", prefix+"%").
		Select("COALESCE(MAX(folio), '')").
		Scan(&last).Error; err != nil {
		return "", err
	}

	return nextFolio(prefix, last, 5)
}
