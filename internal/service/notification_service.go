package service

import (
	"context"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/repository"

	"github.com/google/uuid"
)

type NotificationService interface {
	ListMine(ctx context.Context, actor Actor, unreadOnly bool, page, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, actor Actor, id string) error
	MarkAllRead(ctx context.Context, actor Actor) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListMine(ctx context.Context, actor Actor, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, actor.ID, unreadOnly, page, limit)
}

// MarkRead scopes the update to the caller's own rows; marking someone else's
// notification is a silent no-op.
func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	notificationID, err := uuid.Parse(id)
	if err != nil {
		return apierror.Validation("id de notificación inválido")
	}
	return s.repo.MarkRead(ctx, notificationID, actor.ID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) error {
	return s.repo.MarkAllRead(ctx, actor.ID)
}
