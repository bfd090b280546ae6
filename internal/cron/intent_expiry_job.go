package cron

import (
	"context"
	"fmt"

	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type intentExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// IntentExpiryJobParams configure the payment intent expiry sweep.
type IntentExpiryJobParams struct {
	Logger   *logger.Logger
	Payments intentExpirer
}

// NewIntentExpiryJob builds the job that voids overdue live payment intents.
// Groups whose intent expires stay in AWAITING_PAYMENT; the next payment
// attempt mints a fresh intent.
func NewIntentExpiryJob(params IntentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment coordinator required")
	}
	return &intentExpiryJob{
		logg:     params.Logger,
		payments: params.Payments,
	}, nil
}

type intentExpiryJob struct {
	logg     *logger.Logger
	payments intentExpirer
}

func (j *intentExpiryJob) Name() string { return "payment-intent-expiry" }

func (j *intentExpiryJob) Run(ctx context.Context) error {
	expired, err := j.payments.ExpireStale(ctx)
	if err != nil {
		return fmt.Errorf("intent expiry sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "intents_expired", expired)
	j.logg.Info(logCtx, "intent expiry sweep complete")
	return nil
}
