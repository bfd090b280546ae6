package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/internal/availability"
	"github.com/rentfleet/rentfleet-backend/internal/fleet"
	"github.com/rentfleet/rentfleet-backend/internal/pricing"
	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/broadcast"
	"github.com/rentfleet/rentfleet-backend/pkg/clock"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/effects"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

// intentCoordinator is the slice of the payment coordinator this service
// needs: keeping a group's live intent in sync with its current total, and
// voiding intents when the group leaves the payable path.
type intentCoordinator interface {
	EnsureIntentTx(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error
	CancelLiveIntentsTx(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error
}

type groupRebalancer interface {
	Apply(ctx context.Context, groupID uuid.UUID) error
}

type notifier interface {
	Notify(ctx context.Context, kind enums.NotificationKind, group *models.ReservationGroup) error
}

// Service orchestrates group transitions and member edits. Every mutation
// runs inside a single transaction with the group row locked; broadcasts,
// notifications, and fleet rebalancing are queued as commit-deferred effects.
type Service struct {
	runner     *effects.Runner
	repo       *Repository
	fleetRepo  *fleet.Repository
	intents    intentCoordinator
	rebalancer groupRebalancer
	publisher  broadcast.Publisher
	notifier   notifier
	clk        clock.Clock
	logg       *logger.Logger
}

// NewService wires the reservation service.
func NewService(
	runner *effects.Runner,
	repo *Repository,
	fleetRepo *fleet.Repository,
	intents intentCoordinator,
	rebalancer groupRebalancer,
	publisher broadcast.Publisher,
	notifier notifier,
	clk clock.Clock,
	logg *logger.Logger,
) *Service {
	return &Service{
		runner:     runner,
		repo:       repo,
		fleetRepo:  fleetRepo,
		intents:    intents,
		rebalancer: rebalancer,
		publisher:  publisher,
		notifier:   notifier,
		clk:        clk,
		logg:       logg,
	}
}

// GetGroup loads a group for the actor. Regular users only see their own.
func (s *Service) GetGroup(ctx context.Context, actor auth.Actor, groupID uuid.UUID) (*models.ReservationGroup, error) {
	group, err := s.repo.FindGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && group.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return group, nil
}

// ListMine returns the actor's groups, newest first.
func (s *Service) ListMine(ctx context.Context, actor auth.Actor) ([]models.ReservationGroup, error) {
	return s.repo.ListGroupsForUser(ctx, actor.UserID)
}

// Transition applies a named action to the group under its row lock. The
// status check and the write happen in the same transaction, so two racing
// actions serialize and the loser fails its source-status check.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, groupID uuid.UUID, action Action) (*models.ReservationGroup, error) {
	rule, err := TransitionFor(action)
	if err != nil {
		return nil, err
	}

	var group *models.ReservationGroup
	err = s.runner.InTx(ctx, func(tx *gorm.DB, fx *effects.Queue) error {
		repo := s.repo.WithTx(tx)

		locked, err := repo.LockGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := CheckTransition(rule, locked, actor); err != nil {
			return err
		}

		if err := repo.UpdateGroupStatus(ctx, locked.ID, rule.To); err != nil {
			return err
		}
		locked.Status = rule.To

		if rule.EnsureIntent {
			if err := s.intents.EnsureIntentTx(ctx, tx, locked.ID); err != nil {
				return err
			}
		}
		if rule.CancelIntents {
			if err := s.intents.CancelLiveIntentsTx(ctx, tx, locked.ID); err != nil {
				return err
			}
		}

		group = locked
		s.queueStatusEffects(fx, locked, rule.Rebalance)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(
		s.logg.WithGroupID(ctx, group.ID.String()),
		fmt.Sprintf("group transitioned to %s via %s", group.Status, action),
	)
	return group, nil
}

func (s *Service) queueStatusEffects(fx *effects.Queue, group *models.ReservationGroup, rebalance bool) {
	changedAt := s.clk.Now()
	snapshot := *group

	fx.Add("broadcast.group_status_changed", func(ctx context.Context) error {
		return s.publisher.Publish(ctx, broadcast.ChannelReservationsAll,
			broadcast.GroupEvent(broadcast.EventGroupStatusChanged, &snapshot, changedAt))
	})
	fx.Add("notify.group_status_changed", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, enums.NotificationGroupStatusChanged, &snapshot)
	})
	if rebalance {
		fx.Add("fleet.rebalance", func(ctx context.Context) error {
			return s.rebalancer.Apply(ctx, snapshot.ID)
		})
	}
}

// MemberInput describes a reservation's bookable attributes for an add or
// edit. Dates are half-open calendar days.
type MemberInput struct {
	VehicleID        uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	PickupLocationID uuid.UUID
	ReturnLocationID uuid.UUID
}

// AddVehicle appends a reservation to an editable group. The new member is
// validated against the vehicle's allowed locations and its busy calendar,
// priced, and snapshotted; a live intent is resized to the new total.
func (s *Service) AddVehicle(ctx context.Context, actor auth.Actor, groupID uuid.UUID, input MemberInput) (*models.VehicleReservation, error) {
	var created *models.VehicleReservation
	err := s.runner.InTx(ctx, func(tx *gorm.DB, fx *effects.Queue) error {
		repo := s.repo.WithTx(tx)

		group, err := repo.LockGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := CheckMemberEdit(group, actor); err != nil {
			return err
		}

		reservation, err := s.buildMember(ctx, tx, group.ID, input, nil)
		if err != nil {
			return err
		}
		if _, err := repo.CreateReservation(ctx, reservation); err != nil {
			return err
		}
		if err := s.resyncIntent(ctx, tx, group); err != nil {
			return err
		}

		created = reservation
		s.queueMemberEffects(fx, group, reservation, broadcast.EventReservationCreated, enums.NotificationVehicleAdded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EditReservation replaces a member's dates and locations, re-validating and
// re-pricing it against everything except its own current booking.
func (s *Service) EditReservation(ctx context.Context, actor auth.Actor, reservationID uuid.UUID, input MemberInput) (*models.VehicleReservation, error) {
	var edited *models.VehicleReservation
	err := s.runner.InTx(ctx, func(tx *gorm.DB, fx *effects.Queue) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		group, err := repo.LockGroup(ctx, existing.GroupID)
		if err != nil {
			return err
		}
		if err := CheckMemberEdit(group, actor); err != nil {
			return err
		}

		replacement, err := s.buildMember(ctx, tx, group.ID, input, &existing.ID)
		if err != nil {
			return err
		}
		replacement.ID = existing.ID
		replacement.CreatedAt = existing.CreatedAt
		if err := repo.SaveReservation(ctx, replacement); err != nil {
			return err
		}
		if err := s.resyncIntent(ctx, tx, group); err != nil {
			return err
		}

		edited = replacement
		s.queueMemberEffects(fx, group, replacement, broadcast.EventReservationUpdated, enums.NotificationReservationEdited)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// RemoveReservation deletes a member. Removing the last member is refused;
// the owner cancels the whole group instead.
func (s *Service) RemoveReservation(ctx context.Context, actor auth.Actor, reservationID uuid.UUID) error {
	return s.runner.InTx(ctx, func(tx *gorm.DB, fx *effects.Queue) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		group, err := repo.LockGroup(ctx, existing.GroupID)
		if err != nil {
			return err
		}
		if err := CheckMemberEdit(group, actor); err != nil {
			return err
		}

		members, err := repo.CountMembers(ctx, group.ID)
		if err != nil {
			return err
		}
		if members <= 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"cannot remove the last reservation; cancel the group instead")
		}

		if err := repo.DeleteReservation(ctx, existing.ID); err != nil {
			return err
		}
		if err := s.resyncIntent(ctx, tx, group); err != nil {
			return err
		}

		s.queueMemberEffects(fx, group, existing, broadcast.EventReservationDeleted, enums.NotificationVehicleRemoved)
		return nil
	})
}

// buildMember validates the input against the fleet and the vehicle's busy
// calendar, then returns a priced, snapshotted reservation row. excludeID
// exempts one existing reservation from the conflict check.
func (s *Service) buildMember(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, input MemberInput, excludeID *uuid.UUID) (*models.VehicleReservation, error) {
	if err := s.validateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	fleetRepo := s.fleetRepo.WithTx(tx)
	vehicle, err := fleetRepo.FindVehicle(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}

	pickup, err := fleetRepo.FindLocation(ctx, input.PickupLocationID)
	if err != nil {
		return nil, err
	}
	returnLoc, err := fleetRepo.FindLocation(ctx, input.ReturnLocationID)
	if err != nil {
		return nil, err
	}

	allowed, err := fleetRepo.PickupAllowed(ctx, vehicle.ID, pickup.ID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("pickup at %s is not offered for this vehicle", pickup.Name))
	}
	allowed, err = fleetRepo.ReturnAllowed(ctx, vehicle.ID, returnLoc.ID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("return at %s is not offered for this vehicle", returnLoc.Name))
	}

	window := availability.Interval{Start: input.StartDate, End: input.EndDate}
	busy, err := s.repo.WithTx(tx).BlockingIntervals(ctx, vehicle.ID, window, excludeID)
	if err != nil {
		return nil, err
	}
	if len(busy) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("%s is already booked in the requested range", vehicle.Name))
	}

	quote, err := pricing.QuoteRange(input.StartDate, input.EndDate, pricing.Rate{
		Day:      vehicle.DayRate,
		Currency: vehicle.Currency,
	})
	if err != nil {
		return nil, err
	}

	return &models.VehicleReservation{
		GroupID:                groupID,
		VehicleID:              &vehicle.ID,
		StartDate:              input.StartDate,
		EndDate:                input.EndDate,
		PickupLocationID:       &pickup.ID,
		ReturnLocationID:       &returnLoc.ID,
		VehicleNameSnapshot:    vehicle.Name,
		VehicleTypeSnapshot:    vehicle.VehicleType.String(),
		PickupLocationSnapshot: pickup.Name,
		ReturnLocationSnapshot: returnLoc.Name,
		TotalPrice:             quote.Total,
		Currency:               quote.Currency,
	}, nil
}

func (s *Service) validateRange(start, end time.Time) error {
	if !start.Before(end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	today := truncateToDay(s.clk.Now())
	if start.Before(today) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date cannot be in the past")
	}
	return nil
}

// resyncIntent keeps a live intent's amount in step with the group total
// after a member edit. Groups not yet approved carry no intent.
func (s *Service) resyncIntent(ctx context.Context, tx *gorm.DB, group *models.ReservationGroup) error {
	if group.Status != enums.ReservationStatusAwaitingPayment {
		return nil
	}
	return s.intents.EnsureIntentTx(ctx, tx, group.ID)
}

func (s *Service) queueMemberEffects(fx *effects.Queue, group *models.ReservationGroup, reservation *models.VehicleReservation, event string, kind enums.NotificationKind) {
	changedAt := s.clk.Now()
	groupSnapshot := *group
	memberSnapshot := *reservation

	fx.Add("broadcast."+event, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, broadcast.ChannelReservationsAll,
			broadcast.ReservationEvent(event, &memberSnapshot, groupSnapshot.Status.String(), changedAt))
	})
	fx.Add("notify."+kind.String(), func(ctx context.Context) error {
		return s.notifier.Notify(ctx, kind, &groupSnapshot)
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
