package reservations

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

	"github.com/rentfleet/rentfleet-backend/internal/availability"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

func setupReservationsTestDB(t *testing.T) *gorm.DB {
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
CREATE TABLE IF NOT EXISTS reservation_groups (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  reference TEXT UNIQUE,
  status TEXT NOT NULL DEFAULT 'PENDING',
  created_at DATETIME,
  updated_at DATETIME
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

func seedVehicle(t *testing.T, db *gorm.DB, name string, dayRate string) *models.Vehicle {
	t.Helper()
	seats := 5
	vehicle := &models.Vehicle{
		Name:        name,
		VehicleType: enums.VehicleTypeSedan,
		EngineType:  enums.EngineTypePetrol,
		Seats:       &seats,
		DayRate:     decimal.RequireFromString(dayRate),
		Currency:    enums.CurrencyEUR,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func allowLocations(t *testing.T, db *gorm.DB, vehicleID uuid.UUID, locationIDs ...uuid.UUID) {
	t.Helper()
	for _, locationID := range locationIDs {
		require.NoError(t, db.Create(&models.VehiclePickupLocation{
			VehicleID: vehicleID, LocationID: locationID,
		}).Error)
		require.NoError(t, db.Create(&models.VehicleReturnLocation{
			VehicleID: vehicleID, LocationID: locationID,
		}).Error)
	}
}

func seedGroup(t *testing.T, db *gorm.DB, userID uuid.UUID, status enums.ReservationStatus) *models.ReservationGroup {
	t.Helper()
	group := &models.ReservationGroup{
		UserID:    userID,
		Reference: "RG-" + uuid.NewString()[:8],
		Status:    status,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func seedReservation(t *testing.T, db *gorm.DB, groupID, vehicleID uuid.UUID, start, end time.Time, total string) *models.VehicleReservation {
	t.Helper()
	reservation := &models.VehicleReservation{
		GroupID:                groupID,
		VehicleID:              &vehicleID,
		StartDate:              start,
		EndDate:                end,
		VehicleNameSnapshot:    "seeded",
		VehicleTypeSnapshot:    "sedan",
		PickupLocationSnapshot: "seeded",
		ReturnLocationSnapshot: "seeded",
		TotalPrice:             decimal.RequireFromString(total),
		Currency:               enums.CurrencyEUR,
	}
	require.NoError(t, db.Create(reservation).Error)
	return reservation
}

func TestBlockingIntervalsFiltersByGroupStatus(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "Corolla", "40.00")
	userID := uuid.New()

	blocking := seedGroup(t, db, userID, enums.ReservationStatusAwaitingPayment)
	seedReservation(t, db, blocking.ID, vehicle.ID, day(2026, 9, 10), day(2026, 9, 13), "120.00")

	canceled := seedGroup(t, db, userID, enums.ReservationStatusCanceled)
	seedReservation(t, db, canceled.ID, vehicle.ID, day(2026, 9, 14), day(2026, 9, 16), "80.00")

	intervals, err := repo.BlockingIntervals(ctx, vehicle.ID,
		availability.Interval{Start: day(2026, 9, 1), End: day(2026, 9, 30)}, nil)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Start.Equal(day(2026, 9, 10)))
	assert.True(t, intervals[0].End.Equal(day(2026, 9, 13)))
}

func TestBlockingIntervalsTreatsTouchingRangesAsFree(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "Passat", "55.00")
	group := seedGroup(t, db, uuid.New(), enums.ReservationStatusReserved)
	seedReservation(t, db, group.ID, vehicle.ID, day(2026, 9, 10), day(2026, 9, 13), "165.00")

	// The booked range ends on the 13th, so a window starting that day is free.
	intervals, err := repo.BlockingIntervals(ctx, vehicle.ID,
		availability.Interval{Start: day(2026, 9, 13), End: day(2026, 9, 15)}, nil)
	require.NoError(t, err)
	assert.Empty(t, intervals)

	intervals, err = repo.BlockingIntervals(ctx, vehicle.ID,
		availability.Interval{Start: day(2026, 9, 12), End: day(2026, 9, 15)}, nil)
	require.NoError(t, err)
	assert.Len(t, intervals, 1)
}

func TestBlockingIntervalsExcludesOwnReservation(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "Octavia", "48.00")
	group := seedGroup(t, db, uuid.New(), enums.ReservationStatusPending)
	existing := seedReservation(t, db, group.ID, vehicle.ID, day(2026, 9, 10), day(2026, 9, 13), "144.00")

	window := availability.Interval{Start: day(2026, 9, 11), End: day(2026, 9, 14)}

	intervals, err := repo.BlockingIntervals(ctx, vehicle.ID, window, nil)
	require.NoError(t, err)
	require.Len(t, intervals, 1)

	intervals, err = repo.BlockingIntervals(ctx, vehicle.ID, window, &existing.ID)
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestLatestOpenGroupForUser(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	none, err := repo.LatestOpenGroupForUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, none)

	seedGroup(t, db, userID, enums.ReservationStatusCompleted)
	older := seedGroup(t, db, userID, enums.ReservationStatusPending)
	require.NoError(t, db.Model(older).Update("created_at", day(2026, 8, 1)).Error)
	newer := seedGroup(t, db, userID, enums.ReservationStatusAwaitingPayment)
	require.NoError(t, db.Model(newer).Update("created_at", day(2026, 8, 20)).Error)
	seedGroup(t, db, uuid.New(), enums.ReservationStatusPending)

	open, err := repo.LatestOpenGroupForUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, newer.ID, open.ID)
}

func TestGroupTotalSumsMembers(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "Clio", "30.00")
	group := seedGroup(t, db, uuid.New(), enums.ReservationStatusPending)
	seedReservation(t, db, group.ID, vehicle.ID, day(2026, 9, 1), day(2026, 9, 4), "90.00")
	seedReservation(t, db, group.ID, vehicle.ID, day(2026, 9, 10), day(2026, 9, 12), "60.50")

	total, err := repo.GroupTotal(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("150.50")), "got %s", total)

	count, err := repo.CountMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestFindGroupNotFound(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindGroup(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reservation group not found")
}
