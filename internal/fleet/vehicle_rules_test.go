package fleet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func validVehicle() *models.Vehicle {
	return &models.Vehicle{
		Name:        "Skoda Octavia",
		VehicleType: enums.VehicleTypeSedan,
		EngineType:  enums.EngineTypePetrol,
		Seats:       intPtr(5),
		DayRate:     decimal.RequireFromString("45.00"),
		Currency:    enums.CurrencyEUR,
	}
}

func TestIsUnlimitedSeatsModel(t *testing.T) {
	matches := []string{
		"VW Golf 2",
		"vw golf II",
		"Volkswagen Golf Mk2",
		"  golf mk2  ",
		"Golf Dvoika 1.6",
		"golf2",
	}
	for _, name := range matches {
		assert.True(t, IsUnlimitedSeatsModel(name), "expected %q to match", name)
	}

	misses := []string{
		"VW Golf 4",
		"Golf",
		"VW Polo",
		"Passat Mk2",
	}
	for _, name := range misses {
		assert.False(t, IsUnlimitedSeatsModel(name), "expected %q not to match", name)
	}
}

func TestValidateVehicleAccepts(t *testing.T) {
	vehicle := validVehicle()
	require.NoError(t, ValidateVehicle(vehicle))
	assert.False(t, vehicle.UnlimitedSeats)
	assert.Equal(t, 5, *vehicle.Seats)
}

func TestValidateVehicleUnlimitedSeatsModel(t *testing.T) {
	vehicle := validVehicle()
	vehicle.Name = "VW Golf Mk2"
	vehicle.Seats = intPtr(4)

	require.NoError(t, ValidateVehicle(vehicle))
	assert.True(t, vehicle.UnlimitedSeats)
	assert.Nil(t, vehicle.Seats)
}

func TestValidateVehicleUnlimitedFlagRejectsSeats(t *testing.T) {
	vehicle := validVehicle()
	vehicle.UnlimitedSeats = true

	err := ValidateVehicle(vehicle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leave seats empty")
}

func TestValidateVehicleSeatBounds(t *testing.T) {
	tests := []struct {
		name        string
		vehicleType enums.VehicleType
		seats       int
		wantErr     bool
	}{
		{"sedan lower bound", enums.VehicleTypeSedan, 2, false},
		{"sedan upper bound", enums.VehicleTypeSedan, 5, false},
		{"sedan too many", enums.VehicleTypeSedan, 6, true},
		{"motorcycle single seat", enums.VehicleTypeMotorcycle, 1, false},
		{"motorcycle too many", enums.VehicleTypeMotorcycle, 3, true},
		{"van nine seats", enums.VehicleTypeVan, 9, false},
		{"van single seat", enums.VehicleTypeVan, 1, true},
		{"hatchback unbounded", enums.VehicleTypeHatchback, 12, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vehicle := validVehicle()
			vehicle.VehicleType = tc.vehicleType
			vehicle.Seats = intPtr(tc.seats)

			err := ValidateVehicle(vehicle)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateVehicleRejectsBadInput(t *testing.T) {
	missing := validVehicle()
	missing.Name = ""
	require.Error(t, ValidateVehicle(missing))

	badType := validVehicle()
	badType.VehicleType = enums.VehicleType("hovercraft")
	require.Error(t, ValidateVehicle(badType))

	badEngine := validVehicle()
	badEngine.EngineType = enums.EngineType("steam")
	require.Error(t, ValidateVehicle(badEngine))

	negativeRate := validVehicle()
	negativeRate.DayRate = decimal.RequireFromString("-1.00")
	require.Error(t, ValidateVehicle(negativeRate))

	// A zero rate would later make the group total unpayable, so it is
	// rejected up front as caller input, not deep in the payment flow.
	zeroRate := validVehicle()
	zeroRate.DayRate = decimal.Zero
	err := ValidateVehicle(zeroRate)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Contains(t, err.Error(), "day rate must be positive")

	noSeats := validVehicle()
	noSeats.Seats = nil
	require.Error(t, ValidateVehicle(noSeats))

	zeroSeats := validVehicle()
	zeroSeats.Seats = intPtr(0)
	require.Error(t, ValidateVehicle(zeroSeats))
}

func TestValidateVehicleDefaultsCurrency(t *testing.T) {
	vehicle := validVehicle()
	vehicle.Currency = ""
	require.NoError(t, ValidateVehicle(vehicle))
	assert.Equal(t, enums.CurrencyEUR, vehicle.Currency)
}
