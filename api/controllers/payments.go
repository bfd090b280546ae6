package controllers

import (
	"net/http"
	"time"

	"github.com/rentfleet/rentfleet-backend/api/middleware"
	"github.com/rentfleet/rentfleet-backend/api/responses"
	"github.com/rentfleet/rentfleet-backend/api/validators"
	paysvc "github.com/rentfleet/rentfleet-backend/internal/payments"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type confirmPaymentRequest struct {
	ClientSecret string `json:"client_secret" validate:"required"`
	CardNumber   string `json:"card_number"`
	Outcome      string `json:"outcome" validate:"omitempty,oneof=succeed fail cancel"`
}

type intentResponse struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	ExpiresAt    string `json:"expires_at"`
}

func newIntentResponse(intent *models.PaymentIntent) intentResponse {
	return intentResponse{
		ID:           intent.ID.String(),
		GroupID:      intent.GroupID.String(),
		AmountCents:  intent.AmountCents,
		Currency:     string(intent.Currency),
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		ExpiresAt:    intent.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// GetPaymentIntent returns the live intent for a group awaiting payment,
// minting one when needed.
func GetPaymentIntent(svc *paysvc.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := parseUUIDParam(r, "groupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.GetOrCreateIntent(r.Context(), middleware.ActorFromContext(r.Context()), groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newIntentResponse(intent))
	}
}

// ConfirmPayment resolves an intent with the simulated card outcome.
func ConfirmPayment(svc *paysvc.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Confirm(r.Context(), middleware.ActorFromContext(r.Context()), paysvc.ConfirmInput{
			ClientSecret: payload.ClientSecret,
			CardNumber:   payload.CardNumber,
			Outcome:      paysvc.Outcome(payload.Outcome),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, newIntentResponse(intent))
	}
}
