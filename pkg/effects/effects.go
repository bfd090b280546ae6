// Package effects defers externally visible side effects (notifications,
// broadcast events, fleet rebalancing) until the transaction that scheduled
// them has durably committed. Effects queued in a rolled-back transaction are
// discarded, so observers never see an effect for a booking that logically
// never happened.
package effects

import (
	"context"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

// Effect is a single deferred side effect.
type Effect struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue accumulates effects inside a unit of work. It is not safe for
// concurrent use; each transaction gets its own queue.
type Queue struct {
	effects []Effect
}

// Add schedules an effect to run after commit.
func (q *Queue) Add(name string, run func(ctx context.Context) error) {
	if run == nil {
		return
	}
	q.effects = append(q.effects, Effect{Name: name, Run: run})
}

// Len returns the number of queued effects.
func (q *Queue) Len() int {
	return len(q.effects)
}

func (q *Queue) drain(ctx context.Context) error {
	var combined error
	for _, effect := range q.effects {
		if err := effect.Run(ctx); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

// TxRunner is the transactional surface the runner wraps.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Runner couples a transaction with a commit-gated effect queue.
type Runner struct {
	tx   TxRunner
	logg *logger.Logger
}

// NewRunner builds a Runner over the provided transactional client.
func NewRunner(tx TxRunner, logg *logger.Logger) *Runner {
	return &Runner{tx: tx, logg: logg}
}

// InTx runs fn inside a transaction with a fresh effect queue. Effects are
// drained only after the commit succeeds. A failing effect never unwinds the
// committed transaction; it is logged and the remaining effects still run.
func (r *Runner) InTx(ctx context.Context, fn func(tx *gorm.DB, fx *Queue) error) error {
	queue := &Queue{}
	if err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(tx, queue)
	}); err != nil {
		return err
	}
	if err := queue.drain(ctx); err != nil && r.logg != nil {
		r.logg.Error(ctx, "post-commit effects failed", err)
	}
	return nil
}
