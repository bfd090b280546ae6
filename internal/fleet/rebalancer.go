package fleet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Rebalancer grows vehicle location allowances after a group completes:
// each reservation's pickup joins the vehicle's allowed-return set and its
// return joins the allowed-pickup set, modeling circulation of the fleet
// across branches. Additions are set unions, so re-running for the same
// group is a no-op.
type Rebalancer struct {
	tx   txRunner
	logg *logger.Logger
}

// NewRebalancer builds a rebalancer over the transactional client.
func NewRebalancer(tx txRunner, logg *logger.Logger) *Rebalancer {
	return &Rebalancer{tx: tx, logg: logg}
}

// Apply runs the location loop for every reservation in the group. It is
// invoked as a commit-deferred effect, after the transaction that moved the
// group to COMPLETED became durable.
func (r *Rebalancer) Apply(ctx context.Context, groupID uuid.UUID) error {
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var reservations []models.VehicleReservation
		if err := tx.Where("group_id = ?", groupID).Find(&reservations).Error; err != nil {
			return err
		}

		repo := NewRepository(tx)
		for _, reservation := range reservations {
			if reservation.VehicleID == nil {
				continue
			}
			if reservation.PickupLocationID != nil {
				if err := repo.AddReturnLocation(ctx, *reservation.VehicleID, *reservation.PickupLocationID); err != nil {
					return err
				}
			}
			if reservation.ReturnLocationID != nil {
				if err := repo.AddPickupLocation(ctx, *reservation.VehicleID, *reservation.ReturnLocationID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebalancing group %s: %w", groupID, err)
	}
	if r.logg != nil {
		r.logg.Info(r.logg.WithGroupID(ctx, groupID.String()), "fleet locations rebalanced")
	}
	return nil
}
