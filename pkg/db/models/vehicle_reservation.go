package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

// VehicleReservation books one vehicle for a half-open date range inside a
// group. Display snapshots are captured at creation time so historical views
// stay renderable after the referenced vehicle or locations are edited or
// deleted.
type VehicleReservation struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID  `gorm:"column:group_id;type:uuid;not null;index"`
	VehicleID *uuid.UUID `gorm:"column:vehicle_id;type:uuid;index"`

	StartDate time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`

	PickupLocationID *uuid.UUID `gorm:"column:pickup_location_id;type:uuid"`
	ReturnLocationID *uuid.UUID `gorm:"column:return_location_id;type:uuid"`

	VehicleNameSnapshot    string `gorm:"column:vehicle_name_snapshot;not null"`
	VehicleTypeSnapshot    string `gorm:"column:vehicle_type_snapshot;not null"`
	PickupLocationSnapshot string `gorm:"column:pickup_location_snapshot;not null"`
	ReturnLocationSnapshot string `gorm:"column:return_location_snapshot;not null"`

	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	Currency   enums.Currency  `gorm:"column:currency;not null;default:'EUR'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
