package fleet

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

func setupFleetTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS locations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  vehicle_type TEXT NOT NULL DEFAULT 'sedan',
  engine_type TEXT NOT NULL DEFAULT 'petrol',
  seats INTEGER,
  unlimited_seats INTEGER NOT NULL DEFAULT 0,
  plate_number TEXT,
  day_rate NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'EUR',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS vehicle_pickup_locations (
  vehicle_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  PRIMARY KEY (vehicle_id, location_id)
);`, `
CREATE TABLE IF NOT EXISTS vehicle_return_locations (
  vehicle_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  PRIMARY KEY (vehicle_id, location_id)
);`, `
CREATE TABLE IF NOT EXISTS vehicle_reservations (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL,
  vehicle_id TEXT,
  start_date DATE NOT NULL,
  end_date DATE NOT NULL,
  pickup_location_id TEXT,
  return_location_id TEXT,
  vehicle_name_snapshot TEXT NOT NULL,
  vehicle_type_snapshot TEXT NOT NULL,
  pickup_location_snapshot TEXT NOT NULL,
  return_location_snapshot TEXT NOT NULL,
  total_price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'EUR',
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, statement := range statements {
		require.NoError(t, db.Exec(statement).Error)
	}
	return db
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func seedLocation(t *testing.T, db *gorm.DB, name string) *models.Location {
	t.Helper()
	location := &models.Location{Name: name}
	require.NoError(t, db.Create(location).Error)
	return location
}

func seedVehicle(t *testing.T, db *gorm.DB, name string) *models.Vehicle {
	t.Helper()
	seats := 5
	vehicle := &models.Vehicle{
		Name:        name,
		VehicleType: enums.VehicleTypeSedan,
		EngineType:  enums.EngineTypePetrol,
		Seats:       &seats,
		DayRate:     decimal.RequireFromString("45.00"),
		Currency:    enums.CurrencyEUR,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func TestAddPickupLocationIsSetUnion(t *testing.T) {
	db := setupFleetTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "Octavia")
	location := seedLocation(t, db, "Airport")

	require.NoError(t, repo.AddPickupLocation(ctx, vehicle.ID, location.ID))
	require.NoError(t, repo.AddPickupLocation(ctx, vehicle.ID, location.ID))

	var count int64
	require.NoError(t, db.Model(&models.VehiclePickupLocation{}).
		Where("vehicle_id = ?", vehicle.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	allowed, err := repo.PickupAllowed(ctx, vehicle.ID, location.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.ReturnAllowed(ctx, vehicle.ID, location.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSearchableVehiclesRequiresBothLocationSets(t *testing.T) {
	db := setupFleetTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	airport := seedLocation(t, db, "Airport")
	harbor := seedLocation(t, db, "Harbor")

	complete := seedVehicle(t, db, "Complete")
	require.NoError(t, repo.AddPickupLocation(ctx, complete.ID, airport.ID))
	require.NoError(t, repo.AddReturnLocation(ctx, complete.ID, harbor.ID))

	pickupOnly := seedVehicle(t, db, "PickupOnly")
	require.NoError(t, repo.AddPickupLocation(ctx, pickupOnly.ID, airport.ID))

	seedVehicle(t, db, "Bare")

	vehicles, err := repo.SearchableVehicles(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "Complete", vehicles[0].Name)
}

func TestSearchableVehiclesLocationFilters(t *testing.T) {
	db := setupFleetTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	airport := seedLocation(t, db, "Airport")
	harbor := seedLocation(t, db, "Harbor")

	atAirport := seedVehicle(t, db, "AtAirport")
	require.NoError(t, repo.AddPickupLocation(ctx, atAirport.ID, airport.ID))
	require.NoError(t, repo.AddReturnLocation(ctx, atAirport.ID, airport.ID))

	atHarbor := seedVehicle(t, db, "AtHarbor")
	require.NoError(t, repo.AddPickupLocation(ctx, atHarbor.ID, harbor.ID))
	require.NoError(t, repo.AddReturnLocation(ctx, atHarbor.ID, harbor.ID))

	vehicles, err := repo.SearchableVehicles(ctx, &airport.ID, nil)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "AtAirport", vehicles[0].Name)

	vehicles, err = repo.SearchableVehicles(ctx, &airport.ID, &harbor.ID)
	require.NoError(t, err)
	assert.Empty(t, vehicles)
}

func TestCreateLocationRejectsDuplicateName(t *testing.T) {
	db := setupFleetTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.CreateLocation(ctx, &models.Location{Name: "Airport"})
	require.NoError(t, err)

	_, err = repo.CreateLocation(ctx, &models.Location{Name: "Airport"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	_, err = repo.CreateLocation(ctx, &models.Location{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestFindVehiclePreloadsLocations(t *testing.T) {
	db := setupFleetTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	airport := seedLocation(t, db, "Airport")
	vehicle := seedVehicle(t, db, "Octavia")
	require.NoError(t, repo.AddPickupLocation(ctx, vehicle.ID, airport.ID))

	loaded, err := repo.FindVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	require.Len(t, loaded.PickupLocations, 1)
	assert.Equal(t, "Airport", loaded.PickupLocations[0].Name)
	assert.Empty(t, loaded.ReturnLocations)

	_, err = repo.FindVehicle(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
