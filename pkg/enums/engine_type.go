package enums

import "fmt"

// EngineType categorizes a vehicle's powertrain.
type EngineType string

const (
	EngineTypePetrol   EngineType = "petrol"
	EngineTypeDiesel   EngineType = "diesel"
	EngineTypeHybrid   EngineType = "hybrid"
	EngineTypeElectric EngineType = "electric"
	EngineTypeLPG      EngineType = "lpg"
	EngineTypeCNG      EngineType = "cng"
	EngineTypeOther    EngineType = "other"
)

var validEngineTypes = []EngineType{
	EngineTypePetrol,
	EngineTypeDiesel,
	EngineTypeHybrid,
	EngineTypeElectric,
	EngineTypeLPG,
	EngineTypeCNG,
	EngineTypeOther,
}

// String implements fmt.Stringer.
func (e EngineType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EngineType.
func (e EngineType) IsValid() bool {
	for _, candidate := range validEngineTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEngineType converts a raw string into an EngineType.
func ParseEngineType(value string) (EngineType, error) {
	for _, candidate := range validEngineTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid engine type %q", value)
}
