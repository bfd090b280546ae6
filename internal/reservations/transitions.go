package reservations

import (
	"fmt"

	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

// Action names a group transition.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"

	// ActionPaySucceed is driven by the payment coordinator, never by a
	// direct actor request.
	ActionPaySucceed Action = "pay-succeed"
)

// Transition describes one legal status change and its guards.
type Transition struct {
	To                  enums.ReservationStatus
	AllowedFrom         []enums.ReservationStatus
	RequireStaff        bool
	RequireOwnerOrStaff bool
	CancelIntents       bool
	EnsureIntent        bool
	Rebalance           bool
}

var transitions = map[Action]Transition{
	ActionApprove: {
		To:           enums.ReservationStatusAwaitingPayment,
		AllowedFrom:  []enums.ReservationStatus{enums.ReservationStatusPending},
		RequireStaff: true,
		EnsureIntent: true,
	},
	ActionReject: {
		To:            enums.ReservationStatusRejected,
		AllowedFrom:   []enums.ReservationStatus{enums.ReservationStatusPending},
		RequireStaff:  true,
		CancelIntents: true,
	},
	ActionCancel: {
		To: enums.ReservationStatusCanceled,
		AllowedFrom: []enums.ReservationStatus{
			enums.ReservationStatusPending,
			enums.ReservationStatusAwaitingPayment,
		},
		RequireOwnerOrStaff: true,
		CancelIntents:       true,
	},
	ActionComplete: {
		To:           enums.ReservationStatusCompleted,
		AllowedFrom:  []enums.ReservationStatus{enums.ReservationStatusAwaitingPayment},
		RequireStaff: true,
		Rebalance:    true,
	},
	ActionPaySucceed: {
		To:          enums.ReservationStatusReserved,
		AllowedFrom: []enums.ReservationStatus{enums.ReservationStatusAwaitingPayment},
	},
}

// TransitionFor resolves the rule for an action.
func TransitionFor(action Action) (Transition, error) {
	rule, ok := transitions[action]
	if !ok {
		return Transition{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown transition action %q", action))
	}
	return rule, nil
}

// CheckTransition validates guards and the source status without mutating
// anything. A transition attempted from a state not listed as its source
// fails with a state error.
func CheckTransition(rule Transition, group *models.ReservationGroup, actor auth.Actor) error {
	if rule.RequireStaff && !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only staff can perform this action")
	}
	if rule.RequireOwnerOrStaff && !actor.IsStaff() && group.UserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or staff can perform this action")
	}
	for _, from := range rule.AllowedFrom {
		if group.Status == from {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf(
		"cannot transition group %s from %s to %s",
		groupLabel(group), group.Status, rule.To))
}

// CanEditMembers reports whether group members may be edited, added, or
// removed in the current status.
func CanEditMembers(status enums.ReservationStatus) bool {
	return status == enums.ReservationStatusPending ||
		status == enums.ReservationStatusAwaitingPayment
}

// CheckMemberEdit validates ownership and status for a member mutation.
func CheckMemberEdit(group *models.ReservationGroup, actor auth.Actor) error {
	if !actor.IsStaff() && group.UserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or staff can edit this group")
	}
	if !CanEditMembers(group.Status) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf(
			"group %s is %s and can no longer be edited", groupLabel(group), group.Status))
	}
	return nil
}

func groupLabel(group *models.ReservationGroup) string {
	if group.Reference != "" {
		return group.Reference
	}
	return group.ID.String()
}
