package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/api/middleware"
	"github.com/rentfleet/rentfleet-backend/api/responses"
	"github.com/rentfleet/rentfleet-backend/api/validators"
	cartsvc "github.com/rentfleet/rentfleet-backend/internal/cart"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type addCartItemRequest struct {
	VehicleID        string `json:"vehicle_id" validate:"required,uuid"`
	StartDate        string `json:"start_date" validate:"required"`
	EndDate          string `json:"end_date" validate:"required"`
	PickupLocationID string `json:"pickup_location_id" validate:"required,uuid"`
	ReturnLocationID string `json:"return_location_id" validate:"required,uuid"`
}

type cartItemResponse struct {
	ID               string `json:"id"`
	VehicleID        string `json:"vehicle_id"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	PickupLocationID string `json:"pickup_location_id"`
	ReturnLocationID string `json:"return_location_id"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Items []cartItemResponse `json:"items"`
}

func newCartResponse(cart *models.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemResponse{
			ID:               item.ID.String(),
			VehicleID:        item.VehicleID.String(),
			StartDate:        item.StartDate.Format(dateLayout),
			EndDate:          item.EndDate.Format(dateLayout),
			PickupLocationID: item.PickupLocationID.String(),
			ReturnLocationID: item.ReturnLocationID.String(),
		})
	}
	return cartResponse{ID: cart.ID.String(), Items: items}
}

// CartView returns the actor's active cart.
func CartView(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := svc.View(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusOK, newCartResponse(cart))
	}
}

// CartAddItem stages a vehicle hold in the actor's cart.
func CartAddItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newCartResponse(cart))
	}
}

func (p addCartItemRequest) toInput() (cartsvc.AddItemInput, error) {
	vehicleID, err := uuid.Parse(p.VehicleID)
	if err != nil {
		return cartsvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id")
	}
	pickupID, err := uuid.Parse(p.PickupLocationID)
	if err != nil {
		return cartsvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pickup location id")
	}
	returnID, err := uuid.Parse(p.ReturnLocationID)
	if err != nil {
		return cartsvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid return location id")
	}
	start, err := parseDate(p.StartDate, "start_date")
	if err != nil {
		return cartsvc.AddItemInput{}, err
	}
	end, err := parseDate(p.EndDate, "end_date")
	if err != nil {
		return cartsvc.AddItemInput{}, err
	}

	return cartsvc.AddItemInput{
		VehicleID:        vehicleID,
		StartDate:        start,
		EndDate:          end,
		PickupLocationID: pickupID,
		ReturnLocationID: returnID,
	}, nil
}

// CartRemoveItem drops one hold from the actor's cart.
func CartRemoveItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), middleware.ActorFromContext(r.Context()), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newCartResponse(cart))
	}
}
