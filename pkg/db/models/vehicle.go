package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

// Vehicle is a member of the shared fleet. A vehicle is searchable only while
// both allowed-location sets are non-empty.
type Vehicle struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string            `gorm:"column:name;not null"`
	VehicleType    enums.VehicleType `gorm:"column:vehicle_type;not null;default:'sedan'"`
	EngineType     enums.EngineType  `gorm:"column:engine_type;not null;default:'petrol'"`
	Seats          *int              `gorm:"column:seats"`
	UnlimitedSeats bool              `gorm:"column:unlimited_seats;not null;default:false"`
	PlateNumber    string            `gorm:"column:plate_number"`
	DayRate        decimal.Decimal   `gorm:"column:day_rate;type:numeric(10,2);not null"`
	Currency       enums.Currency    `gorm:"column:currency;not null;default:'EUR'"`

	PickupLocations []Location `gorm:"many2many:vehicle_pickup_locations;constraint:OnDelete:CASCADE"`
	ReturnLocations []Location `gorm:"many2many:vehicle_return_locations;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// VehiclePickupLocation is the allowed-pickup join row. The composite key
// gives the rebalancer set-union semantics on re-runs.
type VehiclePickupLocation struct {
	VehicleID  uuid.UUID `gorm:"column:vehicle_id;type:uuid;primaryKey"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey"`
}

// VehicleReturnLocation is the allowed-return join row.
type VehicleReturnLocation struct {
	VehicleID  uuid.UUID `gorm:"column:vehicle_id;type:uuid;primaryKey"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey"`
}
