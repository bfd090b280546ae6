package broadcast

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

func TestGroupEvent(t *testing.T) {
	group := &models.ReservationGroup{
		ID:     uuid.New(),
		Status: enums.ReservationStatusAwaitingPayment,
	}
	changedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	payload := GroupEvent(EventGroupStatusChanged, group, changedAt)

	assert.Equal(t, "group", payload.Kind)
	assert.Equal(t, EventGroupStatusChanged, payload.Event)
	assert.Equal(t, group.ID, payload.GroupID)
	assert.Equal(t, "AWAITING_PAYMENT", payload.Status)
	assert.True(t, payload.ChangedAt.Equal(changedAt))
}

func TestReservationEventFormatsDates(t *testing.T) {
	vehicleID := uuid.New()
	reservation := &models.VehicleReservation{
		ID:        uuid.New(),
		GroupID:   uuid.New(),
		VehicleID: &vehicleID,
		StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	}
	changedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	payload := ReservationEvent(EventReservationCreated, reservation, "PENDING", changedAt)

	assert.Equal(t, "reservation", payload.Kind)
	assert.Equal(t, reservation.ID, payload.ID)
	assert.Equal(t, "2026-09-10", payload.StartDate)
	assert.Equal(t, "2026-09-13", payload.EndDate)
	assert.Equal(t, "PENDING", payload.Status)
}
