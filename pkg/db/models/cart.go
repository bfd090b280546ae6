package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's staging area for reservations. A partial unique index on
// user_id (where checked_out is false) backs the one-active-cart-per-user
// invariant even when concurrent writers race past the application pre-check.
type Cart struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	CheckedOut bool      `gorm:"column:checked_out;not null;default:false"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem holds one vehicle-and-range slice inside an active cart.
type CartItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID           uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	VehicleID        uuid.UUID `gorm:"column:vehicle_id;type:uuid;not null;index"`
	StartDate        time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate          time.Time `gorm:"column:end_date;type:date;not null"`
	PickupLocationID uuid.UUID `gorm:"column:pickup_location_id;type:uuid;not null"`
	ReturnLocationID uuid.UUID `gorm:"column:return_location_id;type:uuid;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
