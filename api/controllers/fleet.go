package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentfleet/rentfleet-backend/api/responses"
	"github.com/rentfleet/rentfleet-backend/api/validators"
	"github.com/rentfleet/rentfleet-backend/internal/fleet"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type createVehicleRequest struct {
	Name           string  `json:"name" validate:"required"`
	VehicleType    string  `json:"vehicle_type" validate:"required"`
	EngineType     string  `json:"engine_type" validate:"required"`
	Seats          *int    `json:"seats"`
	UnlimitedSeats bool    `json:"unlimited_seats"`
	PlateNumber    string  `json:"plate_number"`
	DayRate        string  `json:"day_rate" validate:"required"`
	Currency       *string `json:"currency"`
}

type createLocationRequest struct {
	Name string `json:"name" validate:"required"`
}

type allowedLocationRequest struct {
	LocationID string `json:"location_id" validate:"required,uuid"`
}

type vehicleResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	VehicleType    string             `json:"vehicle_type"`
	EngineType     string             `json:"engine_type"`
	Seats          *int               `json:"seats,omitempty"`
	UnlimitedSeats bool               `json:"unlimited_seats"`
	PlateNumber    string             `json:"plate_number,omitempty"`
	DayRate        string             `json:"day_rate"`
	Currency       string             `json:"currency"`
	Pickup         []locationResponse `json:"pickup_locations"`
	Return         []locationResponse `json:"return_locations"`
}

type locationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newLocationResponse(location *models.Location) locationResponse {
	return locationResponse{ID: location.ID.String(), Name: location.Name}
}

func newVehicleResponse(vehicle *models.Vehicle) vehicleResponse {
	pickup := make([]locationResponse, 0, len(vehicle.PickupLocations))
	for i := range vehicle.PickupLocations {
		pickup = append(pickup, newLocationResponse(&vehicle.PickupLocations[i]))
	}
	ret := make([]locationResponse, 0, len(vehicle.ReturnLocations))
	for i := range vehicle.ReturnLocations {
		ret = append(ret, newLocationResponse(&vehicle.ReturnLocations[i]))
	}
	return vehicleResponse{
		ID:             vehicle.ID.String(),
		Name:           vehicle.Name,
		VehicleType:    string(vehicle.VehicleType),
		EngineType:     string(vehicle.EngineType),
		Seats:          vehicle.Seats,
		UnlimitedSeats: vehicle.UnlimitedSeats,
		PlateNumber:    vehicle.PlateNumber,
		DayRate:        vehicle.DayRate.StringFixed(2),
		Currency:       string(vehicle.Currency),
		Pickup:         pickup,
		Return:         ret,
	}
}

// CreateVehicle registers a fleet vehicle. Staff only.
func CreateVehicle(repo *fleet.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := payload.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := fleet.ValidateVehicle(vehicle); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := repo.CreateVehicle(r.Context(), vehicle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusCreated, newVehicleResponse(created))
	}
}

func (p createVehicleRequest) toModel() (*models.Vehicle, error) {
	vehicleType, err := enums.ParseVehicleType(p.VehicleType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle type")
	}
	engineType, err := enums.ParseEngineType(p.EngineType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid engine type")
	}
	dayRate, err := decimal.NewFromString(p.DayRate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "day rate must be a decimal string")
	}

	vehicle := &models.Vehicle{
		Name:           p.Name,
		VehicleType:    vehicleType,
		EngineType:     engineType,
		Seats:          p.Seats,
		UnlimitedSeats: p.UnlimitedSeats,
		PlateNumber:    p.PlateNumber,
		DayRate:        dayRate,
	}
	if p.Currency != nil {
		currency, err := enums.ParseCurrency(*p.Currency)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		vehicle.Currency = currency
	}
	return vehicle, nil
}

// GetVehicle returns a vehicle with its allowed-location sets.
func GetVehicle(repo *fleet.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := repo.FindVehicle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newVehicleResponse(vehicle))
	}
}

// AddPickupLocation grows a vehicle's allowed-pickup set. Staff only.
func AddPickupLocation(repo *fleet.Repository, logg *logger.Logger) http.HandlerFunc {
	return allowLocation(repo, logg, repo.AddPickupLocation)
}

// AddReturnLocation grows a vehicle's allowed-return set. Staff only.
func AddReturnLocation(repo *fleet.Repository, logg *logger.Logger) http.HandlerFunc {
	return allowLocation(repo, logg, repo.AddReturnLocation)
}

func allowLocation(repo *fleet.Repository, logg *logger.Logger, add func(context.Context, uuid.UUID, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := parseUUIDParam(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload allowedLocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationID, err := uuid.Parse(payload.LocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id"))
			return
		}

		// Both endpoints must exist before the join row is written.
		if _, err := repo.FindVehicle(r.Context(), vehicleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := repo.FindLocation(r.Context(), locationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := add(r.Context(), vehicleID, locationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "added"})
	}
}

// CreateLocation registers a branch. Staff only.
func CreateLocation(repo *fleet.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createLocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := repo.CreateLocation(r.Context(), &models.Location{Name: payload.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusCreated, newLocationResponse(location))
	}
}

// ListLocations returns every branch, for search filters and staff tooling.
func ListLocations(repo *fleet.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations, err := repo.ListLocations(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]locationResponse, 0, len(locations))
		for i := range locations {
			payload = append(payload, newLocationResponse(&locations[i]))
		}
		responses.WriteSuccess(w, http.StatusOK, payload)
	}
}
