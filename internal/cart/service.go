// Package cart manages the pre-checkout staging area. Items are holds, not
// bookings: nothing is priced or locked until checkout converts the cart.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/internal/availability"
	"github.com/rentfleet/rentfleet-backend/internal/fleet"
	"github.com/rentfleet/rentfleet-backend/internal/reservations"
	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/clock"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service implements cart staging operations. The reservations repository
// supplies the confirmed bookings that occupy a vehicle, so users learn
// about a clash when staging, not at checkout.
type Service struct {
	tx        txRunner
	repo      *Repository
	fleetRepo *fleet.Repository
	blocking  *reservations.Repository
	clk       clock.Clock
	logg      *logger.Logger
}

// NewService wires the cart service.
func NewService(tx txRunner, repo *Repository, fleetRepo *fleet.Repository, blocking *reservations.Repository, clk clock.Clock, logg *logger.Logger) *Service {
	return &Service{
		tx:        tx,
		repo:      repo,
		fleetRepo: fleetRepo,
		blocking:  blocking,
		clk:       clk,
		logg:      logg,
	}
}

// View returns the actor's active cart, opening an empty one on first use.
func (s *Service) View(ctx context.Context, actor auth.Actor) (*models.Cart, error) {
	existing, err := s.repo.ActiveCartForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.repo.CreateCart(ctx, actor.UserID)
	if err == nil {
		return created, nil
	}
	// Lost a create race; the winner's cart is the active one.
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
		return s.repo.ActiveCartForUser(ctx, actor.UserID)
	}
	return nil, err
}

// AddItemInput stages one vehicle hold.
type AddItemInput struct {
	VehicleID        uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	PickupLocationID uuid.UUID
	ReturnLocationID uuid.UUID
}

// AddItem stages a hold in the actor's cart. A new slice that overlaps or
// touches an existing hold on the same vehicle with the same locations is
// merged into one item; an overlap with different locations is rejected
// since a vehicle cannot be in two places at once.
func (s *Service) AddItem(ctx context.Context, actor auth.Actor, input AddItemInput) (*models.Cart, error) {
	if err := s.validateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fleetRepo := s.fleetRepo.WithTx(tx)

		cart, err := s.lockOrCreateCart(ctx, repo, actor.UserID)
		if err != nil {
			return err
		}

		vehicle, err := fleetRepo.FindVehicle(ctx, input.VehicleID)
		if err != nil {
			return err
		}
		if err := s.checkLocations(ctx, fleetRepo, vehicle.ID, input.PickupLocationID, input.ReturnLocationID); err != nil {
			return err
		}

		merged, absorbed, err := mergeWithExisting(cart.Items, input)
		if err != nil {
			return err
		}

		busy, err := s.blocking.WithTx(tx).BlockingIntervals(ctx, vehicle.ID, merged, nil)
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("%s is already booked in the requested range", vehicle.Name))
		}

		if len(absorbed) > 0 {
			target := absorbed[0]
			target.StartDate = merged.Start
			target.EndDate = merged.End
			if err := repo.SaveItem(ctx, target); err != nil {
				return err
			}
			extraIDs := make([]uuid.UUID, 0, len(absorbed)-1)
			for _, item := range absorbed[1:] {
				extraIDs = append(extraIDs, item.ID)
			}
			if err := repo.DeleteItems(ctx, extraIDs); err != nil {
				return err
			}
		} else {
			item := &models.CartItem{
				CartID:           cart.ID,
				VehicleID:        input.VehicleID,
				StartDate:        merged.Start,
				EndDate:          merged.End,
				PickupLocationID: input.PickupLocationID,
				ReturnLocationID: input.ReturnLocationID,
			}
			if _, err := repo.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		result, err = repo.ActiveCartForUser(ctx, actor.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem drops a hold from the actor's cart.
func (s *Service) RemoveItem(ctx context.Context, actor auth.Actor, itemID uuid.UUID) (*models.Cart, error) {
	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.LockActiveCart(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if cart == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		if err := repo.DeleteItem(ctx, cart.ID, itemID); err != nil {
			return err
		}

		result, err = repo.ActiveCartForUser(ctx, actor.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) lockOrCreateCart(ctx context.Context, repo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.LockActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	return repo.CreateCart(ctx, userID)
}

func (s *Service) checkLocations(ctx context.Context, fleetRepo *fleet.Repository, vehicleID, pickupID, returnID uuid.UUID) error {
	allowed, err := fleetRepo.PickupAllowed(ctx, vehicleID, pickupID)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup location is not offered for this vehicle")
	}
	allowed, err = fleetRepo.ReturnAllowed(ctx, vehicleID, returnID)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeValidation, "return location is not offered for this vehicle")
	}
	return nil
}

func (s *Service) validateRange(start, end time.Time) error {
	if !start.Before(end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	now := s.clk.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date cannot be in the past")
	}
	return nil
}

// mergeWithExisting folds the requested slice into the cart's holds on the
// same vehicle. It returns the final interval and the existing items it
// absorbed, in the order encountered. The requested slice keeps growing as
// it absorbs neighbours, so a hold bridging two earlier ones collapses all
// three into a single item.
func mergeWithExisting(items []models.CartItem, input AddItemInput) (availability.Interval, []*models.CartItem, error) {
	merged := availability.Interval{Start: input.StartDate, End: input.EndDate}
	var absorbed []*models.CartItem

	changed := true
	seen := make(map[uuid.UUID]bool)
	for changed {
		changed = false
		for i := range items {
			item := &items[i]
			if item.VehicleID != input.VehicleID || seen[item.ID] {
				continue
			}
			slice := availability.Interval{Start: item.StartDate, End: item.EndDate}
			sameLocations := item.PickupLocationID == input.PickupLocationID &&
				item.ReturnLocationID == input.ReturnLocationID

			if slice.Overlaps(merged) {
				if !sameLocations {
					return availability.Interval{}, nil, pkgerrors.New(pkgerrors.CodeConflict,
						"this vehicle is already in your cart for an overlapping range with different locations")
				}
			} else if !slice.Touches(merged) || !sameLocations {
				continue
			}

			if slice.Start.Before(merged.Start) {
				merged.Start = slice.Start
			}
			if slice.End.After(merged.End) {
				merged.End = slice.End
			}
			seen[item.ID] = true
			absorbed = append(absorbed, item)
			changed = true
		}
	}
	return merged, absorbed, nil
}
