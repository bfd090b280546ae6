// Package checkout converts a cart of holds into reservation rows inside one
// transaction. Either every hold survives re-validation and the whole cart
// converts, or a single clash aborts the transaction and the cart is left
// untouched.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/internal/availability"
	cartpkg "github.com/rentfleet/rentfleet-backend/internal/cart"
	"github.com/rentfleet/rentfleet-backend/internal/fleet"
	"github.com/rentfleet/rentfleet-backend/internal/pricing"
	"github.com/rentfleet/rentfleet-backend/internal/reservations"
	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/broadcast"
	"github.com/rentfleet/rentfleet-backend/pkg/clock"
	dbpkg "github.com/rentfleet/rentfleet-backend/pkg/db"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/effects"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
	"github.com/rentfleet/rentfleet-backend/pkg/metrics"
)

const referenceAttempts = 5

type intentCoordinator interface {
	EnsureIntentTx(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error
}

type notifier interface {
	Notify(ctx context.Context, kind enums.NotificationKind, group *models.ReservationGroup) error
}

// Service runs the checkout transaction.
type Service struct {
	runner    *effects.Runner
	cartRepo  *cartpkg.Repository
	fleetRepo *fleet.Repository
	resRepo   *reservations.Repository
	intents   intentCoordinator
	publisher broadcast.Publisher
	notifier  notifier
	clk       clock.Clock
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
}

// NewService wires the checkout service.
func NewService(
	runner *effects.Runner,
	cartRepo *cartpkg.Repository,
	fleetRepo *fleet.Repository,
	resRepo *reservations.Repository,
	intents intentCoordinator,
	publisher broadcast.Publisher,
	notifier notifier,
	clk clock.Clock,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) *Service {
	return &Service{
		runner:    runner,
		cartRepo:  cartRepo,
		fleetRepo: fleetRepo,
		resRepo:   resRepo,
		intents:   intents,
		publisher: publisher,
		notifier:  notifier,
		clk:       clk,
		metrics:   checkoutMetrics,
		logg:      logg,
	}
}

// Result reports what a checkout produced.
type Result struct {
	Group        *models.ReservationGroup
	Reservations []models.VehicleReservation
	GroupReused  bool
}

// Checkout converts the actor's active cart. The cart row and every held
// vehicle are locked in a fixed order, each hold is re-validated against
// confirmed bookings and other carts' holds, and only then are reservation
// rows created and the cart marked converted. New members land in the
// actor's open group when one exists, otherwise a fresh PENDING group is
// created.
func (s *Service) Checkout(ctx context.Context, actor auth.Actor) (*Result, error) {
	started := s.clk.Now()
	result, err := s.checkout(ctx, actor)
	s.observe(started, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) checkout(ctx context.Context, actor auth.Actor) (*Result, error) {
	var result *Result
	err := s.runner.InTx(ctx, func(tx *gorm.DB, fx *effects.Queue) error {
		cartRepo := s.cartRepo.WithTx(tx)
		fleetRepo := s.fleetRepo.WithTx(tx)
		resRepo := s.resRepo.WithTx(tx)

		cart, err := cartRepo.LockActiveCart(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		if err := fleetRepo.LockVehicles(ctx, vehicleIDs(cart.Items)); err != nil {
			return err
		}
		for i := range cart.Items {
			if err := s.revalidateItem(ctx, cartRepo, resRepo, cart, &cart.Items[i]); err != nil {
				return err
			}
		}

		group, reused, err := s.targetGroup(ctx, resRepo, actor.UserID)
		if err != nil {
			return err
		}

		created := make([]models.VehicleReservation, 0, len(cart.Items))
		for i := range cart.Items {
			reservation, err := s.convertItem(ctx, fleetRepo, resRepo, group.ID, &cart.Items[i])
			if err != nil {
				return err
			}
			created = append(created, *reservation)
		}

		if reused && group.Status == enums.ReservationStatusAwaitingPayment {
			if err := s.intents.EnsureIntentTx(ctx, tx, group.ID); err != nil {
				return err
			}
		}

		if err := cartRepo.MarkCheckedOut(ctx, cart.ID); err != nil {
			return err
		}

		result = &Result{Group: group, Reservations: created, GroupReused: reused}
		s.queueEffects(fx, group, created, reused)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(
		s.logg.WithGroupID(ctx, result.Group.ID.String()),
		fmt.Sprintf("cart converted into %d reservations", len(result.Reservations)),
	)
	return result, nil
}

// revalidateItem re-checks one hold under the vehicle locks. Busy time is
// the union of confirmed bookings and holds in other users' active carts, so
// two carts racing for the same dates cannot both convert.
func (s *Service) revalidateItem(ctx context.Context, cartRepo *cartpkg.Repository, resRepo *reservations.Repository, cart *models.Cart, item *models.CartItem) error {
	window := availability.Interval{Start: item.StartDate, End: item.EndDate}

	booked, err := resRepo.BlockingIntervals(ctx, item.VehicleID, window, nil)
	if err != nil {
		return err
	}
	held, err := cartRepo.HeldIntervals(ctx, item.VehicleID, window, cart.ID)
	if err != nil {
		return err
	}

	if len(booked) > 0 || len(held) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			"a held vehicle is no longer available in the requested range").
			WithDetails(map[string]any{
				"vehicle_id": item.VehicleID,
				"start_date": item.StartDate.Format("2006-01-02"),
				"end_date":   item.EndDate.Format("2006-01-02"),
			})
	}
	return nil
}

// targetGroup reuses the actor's open group when one exists so staggered
// checkouts accumulate into a single approval unit.
func (s *Service) targetGroup(ctx context.Context, resRepo *reservations.Repository, userID uuid.UUID) (*models.ReservationGroup, bool, error) {
	open, err := resRepo.LatestOpenGroupForUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if open != nil {
		locked, err := resRepo.LockGroup(ctx, open.ID)
		if err != nil {
			return nil, false, err
		}
		return locked, true, nil
	}

	group, err := s.createGroup(ctx, resRepo, userID)
	if err != nil {
		return nil, false, err
	}
	return group, false, nil
}

// createGroup mints a group with a fresh human-facing reference, retrying on
// the rare reference collision.
func (s *Service) createGroup(ctx context.Context, resRepo *reservations.Repository, userID uuid.UUID) (*models.ReservationGroup, error) {
	var lastErr error
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		reference, err := newReference()
		if err != nil {
			return nil, err
		}
		group, err := resRepo.CreateGroup(ctx, &models.ReservationGroup{
			UserID:    userID,
			Reference: reference,
			Status:    enums.ReservationStatusPending,
		})
		if err == nil {
			return group, nil
		}
		if !dbpkg.IsUniqueViolation(err, "") {
			return nil, err
		}
		lastErr = err
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "could not allocate a group reference")
}

func (s *Service) convertItem(ctx context.Context, fleetRepo *fleet.Repository, resRepo *reservations.Repository, groupID uuid.UUID, item *models.CartItem) (*models.VehicleReservation, error) {
	vehicle, err := fleetRepo.FindVehicle(ctx, item.VehicleID)
	if err != nil {
		return nil, err
	}
	pickup, err := fleetRepo.FindLocation(ctx, item.PickupLocationID)
	if err != nil {
		return nil, err
	}
	returnLoc, err := fleetRepo.FindLocation(ctx, item.ReturnLocationID)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.QuoteRange(item.StartDate, item.EndDate, pricing.Rate{
		Day:      vehicle.DayRate,
		Currency: vehicle.Currency,
	})
	if err != nil {
		return nil, err
	}

	return resRepo.CreateReservation(ctx, &models.VehicleReservation{
		GroupID:                groupID,
		VehicleID:              &vehicle.ID,
		StartDate:              item.StartDate,
		EndDate:                item.EndDate,
		PickupLocationID:       &pickup.ID,
		ReturnLocationID:       &returnLoc.ID,
		VehicleNameSnapshot:    vehicle.Name,
		VehicleTypeSnapshot:    vehicle.VehicleType.String(),
		PickupLocationSnapshot: pickup.Name,
		ReturnLocationSnapshot: returnLoc.Name,
		TotalPrice:             quote.Total,
		Currency:               quote.Currency,
	})
}

func (s *Service) queueEffects(fx *effects.Queue, group *models.ReservationGroup, created []models.VehicleReservation, reused bool) {
	changedAt := s.clk.Now()
	groupSnapshot := *group

	if !reused {
		fx.Add("broadcast.group_created", func(ctx context.Context) error {
			return s.publisher.Publish(ctx, broadcast.ChannelReservationsAll,
				broadcast.GroupEvent(broadcast.EventGroupCreated, &groupSnapshot, changedAt))
		})
		fx.Add("notify.group_created", func(ctx context.Context) error {
			return s.notifier.Notify(ctx, enums.NotificationGroupCreated, &groupSnapshot)
		})
	}
	for i := range created {
		memberSnapshot := created[i]
		fx.Add("broadcast.reservation_created", func(ctx context.Context) error {
			return s.publisher.Publish(ctx, broadcast.ChannelReservationsAll,
				broadcast.ReservationEvent(broadcast.EventReservationCreated, &memberSnapshot,
					groupSnapshot.Status.String(), changedAt))
		})
	}
}

func (s *Service) observe(started time.Time, err error) {
	outcome := "converted"
	switch {
	case err == nil:
		s.metrics.IncConverted()
	case isConflict(err):
		outcome = "conflict"
		s.metrics.IncConflict()
	default:
		outcome = "failure"
		s.metrics.IncFailure()
	}
	s.metrics.ObserveDuration(outcome, s.clk.Now().Sub(started))
}

func isConflict(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	switch typed.Code() {
	case pkgerrors.CodeConflict, pkgerrors.CodeConcurrency:
		return true
	default:
		return false
	}
}

func vehicleIDs(items []models.CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if seen[item.VehicleID] {
			continue
		}
		seen[item.VehicleID] = true
		ids = append(ids, item.VehicleID)
	}
	return ids
}

func newReference() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating group reference: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
