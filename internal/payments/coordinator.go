// Package payments implements the mock payment coordinator. Intents mirror
// the shape of a real processor's payment intents (client secret, amount in
// minor units, expiry) but confirmation is simulated from well-known test
// card numbers, so the booking flow can be exercised end to end without a
// processor account.
package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/internal/pricing"
	"github.com/rentfleet/rentfleet-backend/internal/reservations"
	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/broadcast"
	"github.com/rentfleet/rentfleet-backend/pkg/clock"
	"github.com/rentfleet/rentfleet-backend/pkg/config"
	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/effects"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

// Test card numbers recognized by the simulator.
const (
	CardSuccess = "4242424242424242"
	CardDecline = "4000000000000002"
)

// Outcome overrides the card-derived result of a confirm attempt.
type Outcome string

const (
	OutcomeFromCard Outcome = ""
	OutcomeSucceed  Outcome = "succeed"
	OutcomeFail     Outcome = "fail"
	OutcomeCancel   Outcome = "cancel"
)

type notifier interface {
	Notify(ctx context.Context, kind enums.NotificationKind, group *models.ReservationGroup) error
}

// Coordinator manages the intent lifecycle for reservation groups. A group
// holds at most one live intent; its amount always equals the group total at
// mint time, and edits to the group supersede the intent with a fresh one.
type Coordinator struct {
	runner    *effects.Runner
	repo      *Repository
	groups    *reservations.Repository
	publisher broadcast.Publisher
	notifier  notifier
	clk       clock.Clock
	cfg       config.PaymentsConfig
	logg      *logger.Logger
}

// NewCoordinator wires the payment coordinator.
func NewCoordinator(
	runner *effects.Runner,
	repo *Repository,
	groups *reservations.Repository,
	publisher broadcast.Publisher,
	notifier notifier,
	clk clock.Clock,
	cfg config.PaymentsConfig,
	logg *logger.Logger,
) *Coordinator {
	return &Coordinator{
		runner:    runner,
		repo:      repo,
		groups:    groups,
		publisher: publisher,
		notifier:  notifier,
		clk:       clk,
		cfg:       cfg,
		logg:      logg,
	}
}

// EnsureIntentTx guarantees the group holds exactly one live intent whose
// amount matches the current group total. A live intent that already matches
// is kept; otherwise every live intent is voided and a fresh one is minted.
// Runs inside the caller's transaction.
func (c *Coordinator) EnsureIntentTx(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error {
	_, err := c.ensureIntentTx(ctx, tx, groupID)
	return err
}

func (c *Coordinator) ensureIntentTx(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (*models.PaymentIntent, error) {
	repo := c.repo.WithTx(tx)
	groups := c.groups.WithTx(tx)

	total, err := groups.GroupTotal(ctx, groupID)
	if err != nil {
		return nil, err
	}
	amount := pricing.MinorUnits(total)
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity,
			fmt.Sprintf("group %s has a non-positive total", groupID))
	}

	now := c.clk.Now()
	live, err := repo.LiveIntentForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if live != nil && live.AmountCents == amount && live.ExpiresAt.After(now) {
		return live, nil
	}

	if _, err := repo.CancelLiveIntents(ctx, groupID); err != nil {
		return nil, err
	}

	secret, err := newClientSecret()
	if err != nil {
		return nil, err
	}
	intent := &models.PaymentIntent{
		GroupID:      groupID,
		AmountCents:  amount,
		Currency:     enums.CurrencyEUR,
		ClientSecret: secret,
		Status:       enums.PaymentIntentStatusCreated,
		ExpiresAt:    now.Add(c.cfg.IntentTTL),
	}
	return repo.CreateIntent(ctx, intent)
}

// CancelLiveIntentsTx voids the group's live intents inside the caller's
// transaction.
func (c *Coordinator) CancelLiveIntentsTx(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error {
	_, err := c.repo.WithTx(tx).CancelLiveIntents(ctx, groupID)
	return err
}

// GetOrCreateIntent returns the group's live intent for the owner, minting
// one when the previous attempt failed, was canceled, or expired. The group
// must be awaiting payment.
func (c *Coordinator) GetOrCreateIntent(ctx context.Context, actor auth.Actor, groupID uuid.UUID) (*models.PaymentIntent, error) {
	var intent *models.PaymentIntent
	err := c.runner.InTx(ctx, func(tx *gorm.DB, _ *effects.Queue) error {
		group, err := c.groups.WithTx(tx).LockGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if !actor.IsStaff() && group.UserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
		}
		if group.Status != enums.ReservationStatusAwaitingPayment {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("group is %s, not awaiting payment", group.Status))
		}

		intent, err = c.ensureIntentTx(ctx, tx, group.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return intent, nil
}

// ConfirmInput carries a confirm attempt. Outcome, when set, overrides the
// card-derived result; otherwise the card number decides and unknown cards
// succeed.
type ConfirmInput struct {
	ClientSecret string
	CardNumber   string
	Outcome      Outcome
}

// Confirm resolves an intent. Success marks the intent SUCCEEDED and moves
// the group to RESERVED in the same transaction, so the paid state is all or
// nothing. A declined or abandoned attempt finalizes only the intent; the
// group stays AWAITING_PAYMENT and the next attempt mints a fresh intent.
func (c *Coordinator) Confirm(ctx context.Context, actor auth.Actor, input ConfirmInput) (*models.PaymentIntent, error) {
	outcome := input.Outcome
	if outcome == OutcomeFromCard {
		outcome = outcomeForCard(input.CardNumber)
	}
	if outcome != OutcomeSucceed && outcome != OutcomeFail && outcome != OutcomeCancel {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown confirm outcome %q", outcome))
	}

	var intent *models.PaymentIntent
	err := c.runner.InTx(ctx, func(tx *gorm.DB, fx *effects.Queue) error {
		repo := c.repo.WithTx(tx)
		groups := c.groups.WithTx(tx)

		locked, err := repo.LockIntentBySecret(ctx, input.ClientSecret)
		if err != nil {
			return err
		}
		group, err := groups.LockGroup(ctx, locked.GroupID)
		if err != nil {
			return err
		}
		if !actor.IsStaff() && group.UserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
		}
		if !locked.Status.IsLive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("payment intent is already %s", locked.Status))
		}

		if !locked.ExpiresAt.After(c.clk.Now()) {
			if err := repo.UpdateIntentStatus(ctx, locked.ID, enums.PaymentIntentStatusExpired); err != nil {
				return err
			}
			locked.Status = enums.PaymentIntentStatusExpired
			intent = locked
			return nil
		}

		switch outcome {
		case OutcomeSucceed:
			rule, err := reservations.TransitionFor(reservations.ActionPaySucceed)
			if err != nil {
				return err
			}
			if err := reservations.CheckTransition(rule, group, actor); err != nil {
				return err
			}
			if err := repo.UpdateIntentStatus(ctx, locked.ID, enums.PaymentIntentStatusSucceeded); err != nil {
				return err
			}
			if err := groups.UpdateGroupStatus(ctx, group.ID, rule.To); err != nil {
				return err
			}
			locked.Status = enums.PaymentIntentStatusSucceeded
			group.Status = rule.To
			c.queueStatusEffects(fx, group)
		case OutcomeFail:
			if err := repo.UpdateIntentStatus(ctx, locked.ID, enums.PaymentIntentStatusFailed); err != nil {
				return err
			}
			locked.Status = enums.PaymentIntentStatusFailed
		case OutcomeCancel:
			if err := repo.UpdateIntentStatus(ctx, locked.ID, enums.PaymentIntentStatusCanceled); err != nil {
				return err
			}
			locked.Status = enums.PaymentIntentStatusCanceled
		}

		intent = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch intent.Status {
	case enums.PaymentIntentStatusSucceeded:
		c.logg.Info(c.logg.WithGroupID(ctx, intent.GroupID.String()), "payment succeeded, group reserved")
		return intent, nil
	case enums.PaymentIntentStatusExpired:
		return intent, pkgerrors.New(pkgerrors.CodePayment, "payment intent has expired")
	case enums.PaymentIntentStatusFailed:
		return intent, pkgerrors.New(pkgerrors.CodePayment, "card was declined")
	default:
		return intent, pkgerrors.New(pkgerrors.CodePayment, "payment was canceled")
	}
}

// ExpireStale voids overdue live intents. Invoked from the cron worker.
func (c *Coordinator) ExpireStale(ctx context.Context) (int64, error) {
	expired, err := c.repo.ExpireStale(ctx, c.clk.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		c.logg.Info(ctx, fmt.Sprintf("expired %d stale payment intents", expired))
	}
	return expired, nil
}

func (c *Coordinator) queueStatusEffects(fx *effects.Queue, group *models.ReservationGroup) {
	changedAt := c.clk.Now()
	snapshot := *group

	fx.Add("broadcast.group_status_changed", func(ctx context.Context) error {
		return c.publisher.Publish(ctx, broadcast.ChannelReservationsAll,
			broadcast.GroupEvent(broadcast.EventGroupStatusChanged, &snapshot, changedAt))
	})
	fx.Add("notify.group_status_changed", func(ctx context.Context) error {
		return c.notifier.Notify(ctx, enums.NotificationGroupStatusChanged, &snapshot)
	})
}

func outcomeForCard(cardNumber string) Outcome {
	switch cardNumber {
	case CardDecline:
		return OutcomeFail
	default:
		return OutcomeSucceed
	}
}

func newClientSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating client secret: %w", err)
	}
	return "pi_" + hex.EncodeToString(buf), nil
}
