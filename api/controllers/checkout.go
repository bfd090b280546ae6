package controllers

import (
	"net/http"

	"github.com/rentfleet/rentfleet-backend/api/middleware"
	"github.com/rentfleet/rentfleet-backend/api/responses"
	checkoutsvc "github.com/rentfleet/rentfleet-backend/internal/checkout"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type checkoutResponse struct {
	Group        groupResponse         `json:"group"`
	Reservations []reservationResponse `json:"reservations"`
	GroupReused  bool                  `json:"group_reused"`
}

// Checkout converts the actor's active cart into reservations.
func Checkout(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Checkout(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := checkoutResponse{
			Group:       newGroupResponse(result.Group),
			GroupReused: result.GroupReused,
		}
		for i := range result.Reservations {
			payload.Reservations = append(payload.Reservations, newReservationResponse(&result.Reservations[i]))
		}

		responses.WriteSuccess(w, http.StatusCreated, payload)
	}
}
