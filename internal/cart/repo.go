package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/internal/availability"
	dbpkg "github.com/rentfleet/rentfleet-backend/pkg/db"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
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

// ActiveCartForUser returns the user's open cart, or nil when none exists.
func (r *Repository) ActiveCartForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND checked_out = ?", userID, false).
		First(&cart).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// CreateCart opens a cart for the user. The partial unique index on
// (user_id) where checked_out is false turns a racing double-create into a
// conflict instead of a second active cart.
func (r *Repository) CreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has an active cart")
		}
		return nil, err
	}
	return cart, nil
}

// LockActiveCart loads and row-locks the user's open cart for checkout or
// item mutation, or returns nil when the user has none.
func (r *Repository) LockActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := dbpkg.ForUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND checked_out = ?", userID, false).
		First(&cart).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, nil
		}
		if dbpkg.IsLockTimeout(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConcurrency, err, "timed out locking cart")
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("start_date ASC").
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateItem inserts a cart item.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// SaveItem persists item edits.
func (r *Repository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes an item from a cart. Deleting an item of another cart
// is a not-found.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// DeleteItems removes several items in one statement.
func (r *Repository) DeleteItems(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", itemIDs).
		Delete(&models.CartItem{}).Error
}

// MarkCheckedOut converts the cart to its checked-out state.
func (r *Repository) MarkCheckedOut(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("checked_out", true).Error
}

// UserHeldIntervals returns the date slices the user's own active cart holds
// on a vehicle inside the window. Search treats these as busy so a user is
// never shown availability their own cart has already claimed.
func (r *Repository) UserHeldIntervals(ctx context.Context, userID, vehicleID uuid.UUID, window availability.Interval) ([]availability.Interval, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND carts.checked_out = ?", userID, false).
		Where("cart_items.vehicle_id = ?", vehicleID).
		Where("cart_items.start_date < ? AND cart_items.end_date > ?", window.End, window.Start).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	intervals := make([]availability.Interval, 0, len(items))
	for _, item := range items {
		intervals = append(intervals, availability.Interval{Start: item.StartDate, End: item.EndDate})
	}
	return intervals, nil
}

// HeldIntervals returns the date slices other users' active carts hold on a
// vehicle inside the window. Checkout treats these as busy so two carts
// cannot convert overlapping holds on the same vehicle.
func (r *Repository) HeldIntervals(ctx context.Context, vehicleID uuid.UUID, window availability.Interval, excludeCartID uuid.UUID) ([]availability.Interval, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.checked_out = ?", false).
		Where("cart_items.cart_id <> ?", excludeCartID).
		Where("cart_items.vehicle_id = ?", vehicleID).
		Where("cart_items.start_date < ? AND cart_items.end_date > ?", window.End, window.Start).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	intervals := make([]availability.Interval, 0, len(items))
	for _, item := range items {
		intervals = append(intervals, availability.Interval{Start: item.StartDate, End: item.EndDate})
	}
	return intervals, nil
}
