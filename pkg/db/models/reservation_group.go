package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

// ReservationGroup is the unit of approval, payment, and completion. It owns
// one or more vehicle reservations; the last member can never be removed.
type ReservationGroup struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	Reference string                  `gorm:"column:reference;uniqueIndex"`
	Status    enums.ReservationStatus `gorm:"column:status;not null;default:'PENDING'"`

	Reservations []VehicleReservation `gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
