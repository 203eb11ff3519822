package service

import (
	"context"
	"testing"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationListAndMarkRead(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo)
	ctx := context.Background()

	alice := Actor{ID: uuid.New(), Role: model.RoleSolicitante, Area: "Cocina"}
	bob := Actor{ID: uuid.New(), Role: model.RoleSolicitante, Area: "Limpieza"}

	for _, userID := range []uuid.UUID{alice.ID, alice.ID, bob.ID} {
		require.NoError(t, repo.Create(ctx, &model.Notification{
			UserID:   userID,
			Title:    "Solicitud SOL-2026-00001",
			Message:  "Tu solicitud cambió de estado",
			Severity: model.SeverityInfo,
		}))
	}

	mine, total, err := svc.ListMine(ctx, alice, false, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, mine, 2)

	// Marking one of Alice's rows leaves the other unread
	require.NoError(t, svc.MarkRead(ctx, alice, mine[0].ID.String()))
	unread, _, err := svc.ListMine(ctx, alice, true, 0, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	// Alice cannot mark Bob's notification; the call is a silent no-op
	bobRows, _, err := svc.ListMine(ctx, bob, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, bobRows, 1)
	require.NoError(t, svc.MarkRead(ctx, alice, bobRows[0].ID.String()))
	bobRows, _, err = svc.ListMine(ctx, bob, true, 0, 0)
	require.NoError(t, err)
	assert.Len(t, bobRows, 1)

	require.NoError(t, svc.MarkAllRead(ctx, alice))
	unread, _, err = svc.ListMine(ctx, alice, true, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationMarkReadInvalidID(t *testing.T) {
	svc := NewNotificationService(&memNotificationRepo{})
	actor := Actor{ID: uuid.New(), Role: model.RoleSolicitante}

	err := svc.MarkRead(context.Background(), actor, "no-es-uuid")
	assert.ErrorIs(t, err, apierror.ErrValidation)
}
