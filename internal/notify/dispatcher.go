// Package notify implements the fire-and-forget notification fan-out: a
// persisted row per recipient, a websocket push for connected clients, and an
// email when SMTP is configured. Failures here are logged and swallowed —
// they never surface as a failure of the operation that triggered them.
package notify

import (
	"context"
	"encoding/json"

	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/repository"
	"github.com/UP220404/cielito-home-compras/internal/websocket"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Dispatcher fans a message out to one or more users.
type Dispatcher interface {
	Send(ctx context.Context, userIDs []uuid.UUID, title, message, severity, link string)
}

type dispatcher struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	hub           *websocket.Hub
	mailer        *Mailer
}

func NewDispatcher(notifications repository.NotificationRepository, users repository.UserRepository, hub *websocket.Hub, mailer *Mailer) Dispatcher {
	return &dispatcher{notifications: notifications, users: users, hub: hub, mailer: mailer}
}

func (d *dispatcher) Send(ctx context.Context, userIDs []uuid.UUID, title, message, severity, link string) {
	for _, userID := range userIDs {
		n := &model.Notification{
			UserID:   userID,
			Title:    title,
			Message:  message,
			Severity: severity,
			Link:     link,
		}
		if err := d.notifications.Create(ctx, n); err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("notify: failed to persist notification")
			continue
		}

		if d.hub != nil {
			payload, _ := json.Marshal(n)
			d.hub.SendToUser(userID.String(), payload)
		}

		if d.mailer != nil && d.mailer.Configured() {
			go d.sendEmail(userID, title, message)
		}
	}
}

func (d *dispatcher) sendEmail(userID uuid.UUID, title, message string) {
	user, err := d.users.GetByID(context.Background(), userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("notify: recipient lookup failed, skipping email")
		return
	}
	if err := d.mailer.Send(user.Email, title, message, ""); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("notify: email delivery failed")
	}
}
