package enums

import "fmt"

// VehicleType categorizes a fleet vehicle.
type VehicleType string

const (
	VehicleTypeSedan       VehicleType = "sedan"
	VehicleTypeHatchback   VehicleType = "hatchback"
	VehicleTypeSUV         VehicleType = "suv"
	VehicleTypeMotorcycle  VehicleType = "motorcycle"
	VehicleTypeVan         VehicleType = "van"
	VehicleTypeTruck       VehicleType = "truck"
	VehicleTypeCoupe       VehicleType = "coupe"
	VehicleTypeConvertible VehicleType = "convertible"
	VehicleTypeWagon       VehicleType = "wagon"
	VehicleTypeOther       VehicleType = "other"
)

var validVehicleTypes = []VehicleType{
	VehicleTypeSedan,
	VehicleTypeHatchback,
	VehicleTypeSUV,
	VehicleTypeMotorcycle,
	VehicleTypeVan,
	VehicleTypeTruck,
	VehicleTypeCoupe,
	VehicleTypeConvertible,
	VehicleTypeWagon,
	VehicleTypeOther,
}

// SeatBounds describes the allowed seat range for a vehicle type.
type SeatBounds struct {
	Min int
	Max int
}

var seatBoundsByType = map[VehicleType]SeatBounds{
	VehicleTypeSedan:       {Min: 2, Max: 5},
	VehicleTypeMotorcycle:  {Min: 1, Max: 2},
	VehicleTypeVan:         {Min: 2, Max: 9},
	VehicleTypeTruck:       {Min: 1, Max: 3},
	VehicleTypeCoupe:       {Min: 1, Max: 2},
	VehicleTypeConvertible: {Min: 2, Max: 4},
	VehicleTypeWagon:       {Min: 2, Max: 7},
	VehicleTypeOther:       {Min: 2, Max: 8},
	VehicleTypeSUV:         {Min: 2, Max: 5},
}

// String implements fmt.Stringer.
func (v VehicleType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleType.
func (v VehicleType) IsValid() bool {
	for _, candidate := range validVehicleTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// SeatBounds returns the allowed seat range for the type, when bounded.
func (v VehicleType) SeatBounds() (SeatBounds, bool) {
	bounds, ok := seatBoundsByType[v]
	return bounds, ok
}

// ParseVehicleType converts a raw string into a VehicleType.
func ParseVehicleType(value string) (VehicleType, error) {
	for _, candidate := range validVehicleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle type %q", value)
}
