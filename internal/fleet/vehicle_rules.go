package fleet

import (
	"fmt"
	"strings"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

// golfMk2Patterns match the one model that is exempt from seat validation and
// treated as having unlimited seats.
var golfMk2Patterns = []string{
	"vw golf 2",
	"vw golf ii",
	"vw golf mk2",
	"volkswagen golf ii",
	"volkswagen golf 2",
	"volkswagen golf mk2",
	"golf mk2",
	"golf 2",
	"golf ii",
	"golf dvoika",
	"golf dve",
	"golf2",
}

// IsUnlimitedSeatsModel reports whether the vehicle name matches the
// designated unlimited-seats model.
func IsUnlimitedSeatsModel(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, pattern := range golfMk2Patterns {
		if strings.Contains(normalized, pattern) {
			return true
		}
	}
	return false
}

// ValidateVehicle normalizes and checks a vehicle before it is persisted.
// The designated model always gets unlimited seats; every other vehicle must
// carry a seat count inside the bounds of its type.
func ValidateVehicle(vehicle *models.Vehicle) error {
	if vehicle.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle name is required")
	}
	if !vehicle.VehicleType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown vehicle type %q", vehicle.VehicleType))
	}
	if !vehicle.EngineType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown engine type %q", vehicle.EngineType))
	}
	if !vehicle.DayRate.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "day rate must be positive")
	}
	if vehicle.Currency == "" {
		vehicle.Currency = enums.CurrencyEUR
	}

	if IsUnlimitedSeatsModel(vehicle.Name) {
		vehicle.UnlimitedSeats = true
		vehicle.Seats = nil
	}

	if vehicle.UnlimitedSeats {
		if vehicle.Seats != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "leave seats empty when unlimited seats is enabled")
		}
		return nil
	}

	if vehicle.Seats == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seats is required")
	}
	if *vehicle.Seats <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "seats must be a positive number")
	}
	if bounds, ok := vehicle.VehicleType.SeatBounds(); ok {
		if *vehicle.Seats < bounds.Min || *vehicle.Seats > bounds.Max {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf(
				"%s must have between %d and %d seats (got %d)",
				vehicle.VehicleType, bounds.Min, bounds.Max, *vehicle.Seats))
		}
	}
	return nil
}
