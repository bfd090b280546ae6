package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/rentfleet/rentfleet-backend/pkg/db"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

// Repository exposes persistence operations for payment intents.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payments repository bound to the provided DB.
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

// CreateIntent inserts a new intent row.
func (r *Repository) CreateIntent(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error) {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

// LiveIntentForGroup returns the group's CREATED intent, or nil when the
// group holds none.
func (r *Repository) LiveIntentForGroup(ctx context.Context, groupID uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, enums.PaymentIntentStatusCreated).
		Order("created_at DESC").
		First(&intent).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &intent, nil
}

// LockIntentBySecret loads an intent by client secret under an exclusive row
// lock, serializing concurrent confirm attempts on the same intent.
func (r *Repository) LockIntentBySecret(ctx context.Context, clientSecret string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := dbpkg.ForUpdate(r.db.WithContext(ctx)).
		First(&intent, "client_secret = ?", clientSecret).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		if dbpkg.IsLockTimeout(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConcurrency, err, "timed out locking payment intent")
		}
		return nil, err
	}
	return &intent, nil
}

// UpdateIntentStatus persists a status change.
func (r *Repository) UpdateIntentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentIntentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CancelLiveIntents voids every CREATED intent of the group. Returns the
// number of intents voided.
func (r *Repository) CancelLiveIntents(ctx context.Context, groupID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("group_id = ? AND status = ?", groupID, enums.PaymentIntentStatusCreated).
		Update("status", enums.PaymentIntentStatusCanceled)
	return result.RowsAffected, result.Error
}

// ExpireStale marks CREATED intents whose deadline has passed as EXPIRED.
// The owning groups stay in AWAITING_PAYMENT; a later payment attempt mints
// a fresh intent.
func (r *Repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("status = ? AND expires_at <= ?", enums.PaymentIntentStatusCreated, now).
		Update("status", enums.PaymentIntentStatusExpired)
	return result.RowsAffected, result.Error
}

// ListIntentsForGroup returns all intents of a group, newest first.
func (r *Repository) ListIntentsForGroup(ctx context.Context, groupID uuid.UUID) ([]models.PaymentIntent, error) {
	var intents []models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&intents).Error
	return intents, err
}
