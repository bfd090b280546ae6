package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type fakeUsers struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

type fakeMailer struct {
	to       []string
	messages []Message
}

func (f *fakeMailer) Send(_ context.Context, to string, msg Message) error {
	f.to = append(f.to, to)
	f.messages = append(f.messages, msg)
	return nil
}

func testGroup(userID uuid.UUID, status enums.ReservationStatus, members int) *models.ReservationGroup {
	group := &models.ReservationGroup{
		ID:        uuid.New(),
		UserID:    userID,
		Reference: "AB12CD34",
		Status:    status,
	}
	for i := 0; i < members; i++ {
		group.Reservations = append(group.Reservations, models.VehicleReservation{ID: uuid.New()})
	}
	return group
}

func TestNotifySendsToGroupOwner(t *testing.T) {
	ownerID := uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]*models.User{
		ownerID: {ID: ownerID, Email: "owner@example.com"},
	}}
	mailer := &fakeMailer{}
	service := NewService(users, mailer, logger.New(logger.Options{ServiceName: "notifications-test"}))

	group := testGroup(ownerID, enums.ReservationStatusPending, 2)
	require.NoError(t, service.Notify(context.Background(), enums.NotificationGroupCreated, group))

	require.Len(t, mailer.messages, 1)
	assert.Equal(t, []string{"owner@example.com"}, mailer.to)
	assert.Equal(t, "Your booking request AB12CD34 was received", mailer.messages[0].Subject)
	assert.Contains(t, mailer.messages[0].Plain, "2 vehicle(s)")
	assert.Contains(t, mailer.messages[0].HTML, "<strong>AB12CD34</strong>")
}

func TestNotifyStatusChangedSubjectCarriesStatus(t *testing.T) {
	ownerID := uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]*models.User{
		ownerID: {ID: ownerID, Email: "owner@example.com"},
	}}
	mailer := &fakeMailer{}
	service := NewService(users, mailer, logger.New(logger.Options{ServiceName: "notifications-test"}))

	group := testGroup(ownerID, enums.ReservationStatusReserved, 1)
	require.NoError(t, service.Notify(context.Background(), enums.NotificationGroupStatusChanged, group))

	require.Len(t, mailer.messages, 1)
	assert.Equal(t, "Your booking AB12CD34 is now RESERVED", mailer.messages[0].Subject)
	assert.Contains(t, mailer.messages[0].HTML, "<strong>RESERVED</strong>")
}

func TestNotifyPlainOnlyKinds(t *testing.T) {
	ownerID := uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]*models.User{
		ownerID: {ID: ownerID, Email: "owner@example.com"},
	}}
	mailer := &fakeMailer{}
	service := NewService(users, mailer, logger.New(logger.Options{ServiceName: "notifications-test"}))

	group := testGroup(ownerID, enums.ReservationStatusPending, 1)
	require.NoError(t, service.Notify(context.Background(), enums.NotificationVehicleAdded, group))

	require.Len(t, mailer.messages, 1)
	assert.Empty(t, mailer.messages[0].HTML)
	assert.Contains(t, mailer.messages[0].Plain, "was added to your booking AB12CD34")
}

func TestNotifyRejectsUnknownKind(t *testing.T) {
	service := NewService(&fakeUsers{}, &fakeMailer{}, logger.New(logger.Options{ServiceName: "notifications-test"}))

	err := service.Notify(context.Background(), enums.NotificationKind("carrier_pigeon"),
		testGroup(uuid.New(), enums.ReservationStatusPending, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid notification kind")
}

func TestNotifyUnknownRecipient(t *testing.T) {
	service := NewService(&fakeUsers{}, &fakeMailer{}, logger.New(logger.Options{ServiceName: "notifications-test"}))

	err := service.Notify(context.Background(), enums.NotificationGroupCreated,
		testGroup(uuid.New(), enums.ReservationStatusPending, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving notification recipient")
}
