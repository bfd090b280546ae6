package reservations

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

func staffActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: enums.MemberRoleManager}
}

func ownerActor(userID uuid.UUID) auth.Actor {
	return auth.Actor{UserID: userID, Role: enums.MemberRoleUser}
}

func groupIn(status enums.ReservationStatus) *models.ReservationGroup {
	return &models.ReservationGroup{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Reference: "RG-TEST",
		Status:    status,
	}
}

func TestTransitionForUnknownAction(t *testing.T) {
	_, err := TransitionFor(Action("archive"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCheckTransitionSourceStatus(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		from    enums.ReservationStatus
		wantErr bool
	}{
		{"approve from pending", ActionApprove, enums.ReservationStatusPending, false},
		{"approve from awaiting payment", ActionApprove, enums.ReservationStatusAwaitingPayment, true},
		{"approve from reserved", ActionApprove, enums.ReservationStatusReserved, true},
		{"reject from pending", ActionReject, enums.ReservationStatusPending, false},
		{"reject from awaiting payment", ActionReject, enums.ReservationStatusAwaitingPayment, true},
		{"cancel from pending", ActionCancel, enums.ReservationStatusPending, false},
		{"cancel from awaiting payment", ActionCancel, enums.ReservationStatusAwaitingPayment, false},
		{"cancel from reserved", ActionCancel, enums.ReservationStatusReserved, true},
		{"cancel from completed", ActionCancel, enums.ReservationStatusCompleted, true},
		{"complete from awaiting payment", ActionComplete, enums.ReservationStatusAwaitingPayment, false},
		{"complete from pending", ActionComplete, enums.ReservationStatusPending, true},
		{"pay-succeed from awaiting payment", ActionPaySucceed, enums.ReservationStatusAwaitingPayment, false},
		{"pay-succeed from reserved", ActionPaySucceed, enums.ReservationStatusReserved, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := TransitionFor(tc.action)
			require.NoError(t, err)

			err = CheckTransition(rule, groupIn(tc.from), staffActor())
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckTransitionStaffGuard(t *testing.T) {
	group := groupIn(enums.ReservationStatusPending)
	owner := ownerActor(group.UserID)

	for _, action := range []Action{ActionApprove, ActionReject, ActionComplete} {
		rule, err := TransitionFor(action)
		require.NoError(t, err)

		err = CheckTransition(rule, group, owner)
		require.Error(t, err, "action %s", action)
		assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
	}
}

func TestCheckTransitionCancelOwnerOrStaff(t *testing.T) {
	group := groupIn(enums.ReservationStatusPending)
	rule, err := TransitionFor(ActionCancel)
	require.NoError(t, err)

	assert.NoError(t, CheckTransition(rule, group, ownerActor(group.UserID)))
	assert.NoError(t, CheckTransition(rule, group, staffActor()))

	err = CheckTransition(rule, group, ownerActor(uuid.New()))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCheckTransitionStateErrorNamesGroupAndStatuses(t *testing.T) {
	group := groupIn(enums.ReservationStatusReserved)
	rule, err := TransitionFor(ActionApprove)
	require.NoError(t, err)

	err = CheckTransition(rule, group, staffActor())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RG-TEST")
	assert.Contains(t, err.Error(), "RESERVED")
	assert.Contains(t, err.Error(), "AWAITING_PAYMENT")
}

func TestCanEditMembers(t *testing.T) {
	assert.True(t, CanEditMembers(enums.ReservationStatusPending))
	assert.True(t, CanEditMembers(enums.ReservationStatusAwaitingPayment))
	assert.False(t, CanEditMembers(enums.ReservationStatusReserved))
	assert.False(t, CanEditMembers(enums.ReservationStatusRejected))
	assert.False(t, CanEditMembers(enums.ReservationStatusCanceled))
	assert.False(t, CanEditMembers(enums.ReservationStatusCompleted))
}

func TestCheckMemberEdit(t *testing.T) {
	group := groupIn(enums.ReservationStatusPending)

	assert.NoError(t, CheckMemberEdit(group, ownerActor(group.UserID)))
	assert.NoError(t, CheckMemberEdit(group, staffActor()))

	err := CheckMemberEdit(group, ownerActor(uuid.New()))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	locked := groupIn(enums.ReservationStatusReserved)
	err = CheckMemberEdit(locked, ownerActor(locked.UserID))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}
