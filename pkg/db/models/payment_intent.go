package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

// PaymentIntent tracks one mock-payment attempt for a reservation group.
// AmountCents equals the sum of the group's reservation totals at the moment
// the intent was created; a group holds at most one live intent.
type PaymentIntent struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID      uuid.UUID                 `gorm:"column:group_id;type:uuid;not null;index"`
	AmountCents  int64                     `gorm:"column:amount_cents;not null"`
	Currency     enums.Currency            `gorm:"column:currency;not null;default:'EUR'"`
	ClientSecret string                    `gorm:"column:client_secret;not null;uniqueIndex"`
	Status       enums.PaymentIntentStatus `gorm:"column:status;not null;default:'CREATED'"`
	ExpiresAt    time.Time                 `gorm:"column:expires_at;not null"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
