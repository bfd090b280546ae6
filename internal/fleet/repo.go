package fleet

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/rentfleet/rentfleet-backend/pkg/db"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

// Repository exposes persistence operations for vehicles and locations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a fleet repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateVehicle validates and inserts a vehicle.
func (r *Repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := ValidateVehicle(vehicle); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// FindVehicle loads a vehicle with its allowed location sets.
func (r *Repository) FindVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Preload("PickupLocations").
		Preload("ReturnLocations").
		First(&vehicle, "id = ?", id).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, err
	}
	return &vehicle, nil
}

// LockVehicles acquires exclusive row locks on the given vehicles in
// ascending id order, preventing deadlock between concurrent checkouts.
func (r *Repository) LockVehicles(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].String() < sorted[b].String()
	})

	var locked []models.Vehicle
	err := dbpkg.ForUpdate(r.db.WithContext(ctx)).
		Where("id IN ?", sorted).
		Order("id ASC").
		Find(&locked).Error
	if err != nil {
		if dbpkg.IsLockTimeout(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConcurrency, err, "timed out locking vehicles")
		}
		return err
	}
	if len(locked) != len(sorted) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	return nil
}

// PickupAllowed reports whether the location is in the vehicle's allowed
// pickup set.
func (r *Repository) PickupAllowed(ctx context.Context, vehicleID, locationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VehiclePickupLocation{}).
		Where("vehicle_id = ? AND location_id = ?", vehicleID, locationID).
		Count(&count).Error
	return count > 0, err
}

// ReturnAllowed reports whether the location is in the vehicle's allowed
// return set.
func (r *Repository) ReturnAllowed(ctx context.Context, vehicleID, locationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VehicleReturnLocation{}).
		Where("vehicle_id = ? AND location_id = ?", vehicleID, locationID).
		Count(&count).Error
	return count > 0, err
}

// AddPickupLocation unions the location into the vehicle's allowed-pickup
// set. Re-adding an existing pair is a no-op.
func (r *Repository) AddPickupLocation(ctx context.Context, vehicleID, locationID uuid.UUID) error {
	row := models.VehiclePickupLocation{VehicleID: vehicleID, LocationID: locationID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

// AddReturnLocation unions the location into the vehicle's allowed-return set.
func (r *Repository) AddReturnLocation(ctx context.Context, vehicleID, locationID uuid.UUID) error {
	row := models.VehicleReturnLocation{VehicleID: vehicleID, LocationID: locationID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

// SearchableVehicles lists vehicles whose allowed pickup and return sets are
// both non-empty, optionally restricted to the given locations.
func (r *Repository) SearchableVehicles(ctx context.Context, pickupID, returnID *uuid.UUID) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Preload("PickupLocations").
		Preload("ReturnLocations").
		Where("EXISTS (SELECT 1 FROM vehicle_pickup_locations vpl WHERE vpl.vehicle_id = vehicles.id)").
		Where("EXISTS (SELECT 1 FROM vehicle_return_locations vrl WHERE vrl.vehicle_id = vehicles.id)")

	if pickupID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM vehicle_pickup_locations vpl WHERE vpl.vehicle_id = vehicles.id AND vpl.location_id = ?)",
			*pickupID)
	}
	if returnID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM vehicle_return_locations vrl WHERE vrl.vehicle_id = vehicles.id AND vrl.location_id = ?)",
			*returnID)
	}

	var vehicles []models.Vehicle
	if err := query.Order("name ASC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CreateLocation inserts a location.
func (r *Repository) CreateLocation(ctx context.Context, location *models.Location) (*models.Location, error) {
	if location.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "location name already exists")
		}
		return nil, err
	}
	return location, nil
}

// FindLocation loads a location by id.
func (r *Repository) FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, err
	}
	return &location, nil
}

// ListLocations returns all locations ordered by name.
func (r *Repository) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}
