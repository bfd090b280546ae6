package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/internal/availability"
	dbpkg "github.com/rentfleet/rentfleet-backend/pkg/db"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

// Repository exposes persistence operations for reservation groups and their
// members.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reservations repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateGroup inserts a new reservation group.
func (r *Repository) CreateGroup(ctx context.Context, group *models.ReservationGroup) (*models.ReservationGroup, error) {
	if group.Status == "" {
		group.Status = enums.ReservationStatusPending
	}
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// FindGroup loads a group with its members.
func (r *Repository) FindGroup(ctx context.Context, id uuid.UUID) (*models.ReservationGroup, error) {
	var group models.ReservationGroup
	err := r.db.WithContext(ctx).
		Preload("Reservations").
		First(&group, "id = ?", id).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation group not found")
		}
		return nil, err
	}
	return &group, nil
}

// LockGroup acquires an exclusive row lock on the group for a
// check-and-apply transition.
func (r *Repository) LockGroup(ctx context.Context, id uuid.UUID) (*models.ReservationGroup, error) {
	var group models.ReservationGroup
	err := dbpkg.ForUpdate(r.db.WithContext(ctx)).
		First(&group, "id = ?", id).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation group not found")
		}
		if dbpkg.IsLockTimeout(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConcurrency, err, "timed out locking reservation group")
		}
		return nil, err
	}
	return &group, nil
}

// LatestOpenGroupForUser returns the user's most recent group still in
// PENDING or AWAITING_PAYMENT, or nil when none exists.
func (r *Repository) LatestOpenGroupForUser(ctx context.Context, userID uuid.UUID) (*models.ReservationGroup, error) {
	var group models.ReservationGroup
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []enums.ReservationStatus{
			enums.ReservationStatusPending,
			enums.ReservationStatusAwaitingPayment,
		}).
		Order("created_at DESC").
		First(&group).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// UpdateGroupStatus persists a status change.
func (r *Repository) UpdateGroupStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ReservationGroup{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListGroupsForUser returns the user's groups, newest first.
func (r *Repository) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]models.ReservationGroup, error) {
	var groups []models.ReservationGroup
	err := r.db.WithContext(ctx).
		Preload("Reservations").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

// CreateReservation inserts a group member.
func (r *Repository) CreateReservation(ctx context.Context, reservation *models.VehicleReservation) (*models.VehicleReservation, error) {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// FindReservation loads a single member row.
func (r *Repository) FindReservation(ctx context.Context, id uuid.UUID) (*models.VehicleReservation, error) {
	var reservation models.VehicleReservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, err
	}
	return &reservation, nil
}

// SaveReservation persists member edits.
func (r *Repository) SaveReservation(ctx context.Context, reservation *models.VehicleReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// DeleteReservation removes a member row.
func (r *Repository) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VehicleReservation{}, "id = ?", id).Error
}

// CountMembers returns the number of reservations in a group.
func (r *Repository) CountMembers(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VehicleReservation{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

// GroupTotal sums the member totals for a group.
func (r *Repository) GroupTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	var reservations []models.VehicleReservation
	err := r.db.WithContext(ctx).
		Select("total_price").
		Where("group_id = ?", groupID).
		Find(&reservations).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, reservation := range reservations {
		total = total.Add(reservation.TotalPrice)
	}
	return total, nil
}

// BlockingIntervals returns the busy intervals for a vehicle inside the
// window, derived from reservations whose group status occupies the vehicle.
// excludeID drops one reservation from the set, used when re-validating an
// edit against everything but itself.
func (r *Repository) BlockingIntervals(ctx context.Context, vehicleID uuid.UUID, window availability.Interval, excludeID *uuid.UUID) ([]availability.Interval, error) {
	query := r.db.WithContext(ctx).
		Model(&models.VehicleReservation{}).
		Joins("JOIN reservation_groups ON reservation_groups.id = vehicle_reservations.group_id").
		Where("vehicle_reservations.vehicle_id = ?", vehicleID).
		Where("reservation_groups.status IN ?", enums.BlockingReservationStatuses()).
		Where("vehicle_reservations.start_date < ? AND vehicle_reservations.end_date > ?",
			window.End, window.Start)
	if excludeID != nil {
		query = query.Where("vehicle_reservations.id <> ?", *excludeID)
	}

	var rows []struct {
		StartDate time.Time
		EndDate   time.Time
	}
	if err := query.Select("vehicle_reservations.start_date, vehicle_reservations.end_date").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	intervals := make([]availability.Interval, 0, len(rows))
	for _, row := range rows {
		intervals = append(intervals, availability.Interval{Start: row.StartDate, End: row.EndDate})
	}
	return intervals, nil
}
