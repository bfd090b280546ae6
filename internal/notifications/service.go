// Package notifications renders and delivers booking emails. Delivery runs
// as a commit-deferred effect, so a failed send is logged without unwinding
// the booking change that triggered it.
package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service resolves the recipient, renders the message, and hands it to the
// mailer.
type Service struct {
	users  userReader
	mailer Mailer
	logg   *logger.Logger
}

// NewService wires the notification service.
func NewService(users userReader, mailer Mailer, logg *logger.Logger) *Service {
	return &Service{users: users, mailer: mailer, logg: logg}
}

// Notify sends the message for a notification kind to the group's owner.
func (s *Service) Notify(ctx context.Context, kind enums.NotificationKind, group *models.ReservationGroup) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid notification kind %q", kind)
	}

	owner, err := s.users.FindByID(ctx, group.UserID)
	if err != nil {
		return fmt.Errorf("resolving notification recipient: %w", err)
	}

	msg, err := render(kind, group)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, owner.Email, msg); err != nil {
		return fmt.Errorf("delivering %s notification: %w", kind, err)
	}

	s.logg.Info(
		s.logg.WithFields(ctx, map[string]any{"kind": kind.String(), "group_id": group.ID}),
		"notification sent",
	)
	return nil
}
