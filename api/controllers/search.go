package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/api/middleware"
	"github.com/rentfleet/rentfleet-backend/api/responses"
	"github.com/rentfleet/rentfleet-backend/internal/availability"
	"github.com/rentfleet/rentfleet-backend/internal/fleet"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type availabilitySlice struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type searchResultResponse struct {
	Vehicle    vehicleResponse     `json:"vehicle"`
	FreeSlices []availabilitySlice `json:"free_slices"`
}

// Search lists vehicles with their free slices in the requested window.
// start and end are required query params; pickup_location_id and
// return_location_id narrow the fleet to matching allowed sets.
func Search(svc *fleet.SearchService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := parseDate(r.URL.Query().Get("start"), "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := parseDate(r.URL.Query().Get("end"), "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pickupID, err := parseOptionalUUIDQuery(r, "pickup_location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		returnID, err := parseOptionalUUIDQuery(r, "return_location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// A signed-in user's own cart holds count as busy, so the query
		// carries their identity when the optional auth resolved one.
		var userID *uuid.UUID
		if actor := middleware.ActorFromContext(r.Context()); actor.UserID != uuid.Nil {
			userID = &actor.UserID
		}

		results, err := svc.Search(r.Context(), fleet.SearchQuery{
			Window:   availability.Interval{Start: start, End: end},
			PickupID: pickupID,
			ReturnID: returnID,
			UserID:   userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]searchResultResponse, 0, len(results))
		for _, result := range results {
			slices := make([]availabilitySlice, 0, len(result.FreeSlices))
			for _, slice := range result.FreeSlices {
				slices = append(slices, availabilitySlice{
					StartDate: slice.Start.Format(dateLayout),
					EndDate:   slice.End.Format(dateLayout),
				})
			}
			payload = append(payload, searchResultResponse{
				Vehicle:    newVehicleResponse(&result.Vehicle),
				FreeSlices: slices,
			})
		}

		responses.WriteSuccess(w, http.StatusOK, payload)
	}
}
