package controllers

import (
	"net/http"

	"github.com/rentfleet/rentfleet-backend/api/middleware"
	"github.com/rentfleet/rentfleet-backend/api/responses"
	"github.com/rentfleet/rentfleet-backend/api/validators"
	ressvc "github.com/rentfleet/rentfleet-backend/internal/reservations"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type transitionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject cancel complete"`
}

type memberRequest struct {
	VehicleID        string `json:"vehicle_id" validate:"required,uuid"`
	StartDate        string `json:"start_date" validate:"required"`
	EndDate          string `json:"end_date" validate:"required"`
	PickupLocationID string `json:"pickup_location_id" validate:"required,uuid"`
	ReturnLocationID string `json:"return_location_id" validate:"required,uuid"`
}

type reservationResponse struct {
	ID             string `json:"id"`
	GroupID        string `json:"group_id"`
	VehicleID      string `json:"vehicle_id,omitempty"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	VehicleName    string `json:"vehicle_name"`
	VehicleType    string `json:"vehicle_type"`
	PickupLocation string `json:"pickup_location"`
	ReturnLocation string `json:"return_location"`
	TotalPrice     string `json:"total_price"`
	Currency       string `json:"currency"`
}

type groupResponse struct {
	ID           string                `json:"id"`
	Reference    string                `json:"reference"`
	Status       string                `json:"status"`
	Reservations []reservationResponse `json:"reservations,omitempty"`
}

func newReservationResponse(reservation *models.VehicleReservation) reservationResponse {
	payload := reservationResponse{
		ID:             reservation.ID.String(),
		GroupID:        reservation.GroupID.String(),
		StartDate:      reservation.StartDate.Format(dateLayout),
		EndDate:        reservation.EndDate.Format(dateLayout),
		VehicleName:    reservation.VehicleNameSnapshot,
		VehicleType:    reservation.VehicleTypeSnapshot,
		PickupLocation: reservation.PickupLocationSnapshot,
		ReturnLocation: reservation.ReturnLocationSnapshot,
		TotalPrice:     reservation.TotalPrice.StringFixed(2),
		Currency:       string(reservation.Currency),
	}
	if reservation.VehicleID != nil {
		payload.VehicleID = reservation.VehicleID.String()
	}
	return payload
}

func newGroupResponse(group *models.ReservationGroup) groupResponse {
	payload := groupResponse{
		ID:        group.ID.String(),
		Reference: group.Reference,
		Status:    string(group.Status),
	}
	for i := range group.Reservations {
		payload.Reservations = append(payload.Reservations, newReservationResponse(&group.Reservations[i]))
	}
	return payload
}

// ListGroups returns the actor's reservation groups, newest first.
func ListGroups(svc *ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := svc.ListMine(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]groupResponse, 0, len(groups))
		for i := range groups {
			payload = append(payload, newGroupResponse(&groups[i]))
		}
		responses.WriteSuccess(w, http.StatusOK, payload)
	}
}

// GetGroup returns one group with its members.
func GetGroup(svc *ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := parseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.GetGroup(r.Context(), middleware.ActorFromContext(r.Context()), groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newGroupResponse(group))
	}
}

// TransitionGroup drives the group state machine with a named action.
func TransitionGroup(svc *ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := parseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.Transition(r.Context(), middleware.ActorFromContext(r.Context()), groupID, ressvc.Action(payload.Action))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newGroupResponse(group))
	}
}

// AddGroupVehicle appends a vehicle reservation to an editable group.
func AddGroupVehicle(svc *ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := parseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload memberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.AddVehicle(r.Context(), middleware.ActorFromContext(r.Context()), groupID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusCreated, newReservationResponse(created))
	}
}

// EditReservation rewrites one member's vehicle, dates, or locations.
func EditReservation(svc *ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := parseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload memberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.EditReservation(r.Context(), middleware.ActorFromContext(r.Context()), reservationID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newReservationResponse(updated))
	}
}

// RemoveReservation drops one member. The last member cannot be removed.
func RemoveReservation(svc *ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := parseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveReservation(r.Context(), middleware.ActorFromContext(r.Context()), reservationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

func (p memberRequest) toInput() (ressvc.MemberInput, error) {
	item := addCartItemRequest{
		VehicleID:        p.VehicleID,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		PickupLocationID: p.PickupLocationID,
		ReturnLocationID: p.ReturnLocationID,
	}
	parsed, err := item.toInput()
	if err != nil {
		return ressvc.MemberInput{}, err
	}
	return ressvc.MemberInput{
		VehicleID:        parsed.VehicleID,
		StartDate:        parsed.StartDate,
		EndDate:          parsed.EndDate,
		PickupLocationID: parsed.PickupLocationID,
		ReturnLocationID: parsed.ReturnLocationID,
	}, nil
}
