package fleet

import (
	"context"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/internal/availability"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

// blockingReader reports the confirmed bookings that occupy a vehicle.
type blockingReader interface {
	BlockingIntervals(ctx context.Context, vehicleID uuid.UUID, window availability.Interval, excludeID *uuid.UUID) ([]availability.Interval, error)
}

// cartHoldReader reports the slices a user's own active cart holds on a
// vehicle. Search counts them as busy: the cart has first claim on those
// dates, so showing them as free would offer the user a range their own
// checkout would then fight over.
type cartHoldReader interface {
	UserHeldIntervals(ctx context.Context, userID, vehicleID uuid.UUID, window availability.Interval) ([]availability.Interval, error)
}

// SearchQuery restricts a fleet search. The window is a half-open date
// range; location filters are optional. UserID identifies the searching
// user when the request is authenticated.
type SearchQuery struct {
	Window   availability.Interval
	PickupID *uuid.UUID
	ReturnID *uuid.UUID
	UserID   *uuid.UUID
}

// VehicleAvailability pairs a vehicle with its free slices inside the
// queried window.
type VehicleAvailability struct {
	Vehicle    models.Vehicle          `json:"vehicle"`
	FreeSlices []availability.Interval `json:"free_slices"`
}

// SearchService answers fleet availability queries.
type SearchService struct {
	repo     *Repository
	blocking blockingReader
	holds    cartHoldReader
	logg     *logger.Logger
}

// NewSearchService wires the search service.
func NewSearchService(repo *Repository, blocking blockingReader, holds cartHoldReader, logg *logger.Logger) *SearchService {
	return &SearchService{repo: repo, blocking: blocking, holds: holds, logg: logg}
}

// Search lists vehicles with their free slices in the window. Vehicles with
// an empty allowed-pickup or allowed-return set never appear; fully booked
// vehicles appear with no free slices so clients can show them as sold out.
func (s *SearchService) Search(ctx context.Context, query SearchQuery) ([]VehicleAvailability, error) {
	if !query.Window.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}

	vehicles, err := s.repo.SearchableVehicles(ctx, query.PickupID, query.ReturnID)
	if err != nil {
		return nil, err
	}

	results := make([]VehicleAvailability, 0, len(vehicles))
	for _, vehicle := range vehicles {
		busy, err := s.blocking.BlockingIntervals(ctx, vehicle.ID, query.Window, nil)
		if err != nil {
			return nil, err
		}
		if query.UserID != nil && s.holds != nil {
			held, err := s.holds.UserHeldIntervals(ctx, *query.UserID, vehicle.ID, query.Window)
			if err != nil {
				return nil, err
			}
			busy = append(busy, held...)
		}
		results = append(results, VehicleAvailability{
			Vehicle:    vehicle,
			FreeSlices: availability.FreeSlices(query.Window, availability.Merge(busy)),
		})
	}
	return results, nil
}
