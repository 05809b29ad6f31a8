package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/domain/model"
	"github.com/SERG-KRUK/tgbot/internal/infra/metrics"
)

// CounterResetter is the slice of the user store the worker needs.
type CounterResetter interface {
	ResetAllDailyCounters(ctx context.Context) (int64, error)
}

// DailyResetWorker bulk-zeroes quota counters at UTC midnight. The
// sleep until the next boundary is recomputed from the clock on every
// iteration, so a process restart never inherits a stale deadline. A
// missed pass is harmless: per-user date rollover resets counters
// lazily anyway, the bulk pass just keeps the table tidy.
type DailyResetWorker struct {
	store CounterResetter
	now   func() time.Time
	log   *zerolog.Logger
}

func NewDailyResetWorker(store CounterResetter, logger *zerolog.Logger) *DailyResetWorker {
	l := logger.With().Str("component", "DailyResetWorker").Logger()
	return &DailyResetWorker{store: store, now: time.Now, log: &l}
}

// Run blocks until ctx is cancelled, firing one reset per UTC midnight.
func (w *DailyResetWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("starting daily reset worker")
	for {
		wait := w.untilNextReset()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info().Msg("stopping daily reset worker")
			return ctx.Err()
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

func (w *DailyResetWorker) untilNextReset() time.Duration {
	now := w.now()
	return model.NextRollover(now).Sub(now)
}

func (w *DailyResetWorker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	rows, err := w.store.ResetAllDailyCounters(runCtx)
	if err != nil {
		metrics.IncDailyReset("error")
		w.log.Error().Err(err).Msg("bulk quota reset failed")
		return
	}
	metrics.IncDailyReset("ok")
	metrics.AddDailyResetRows(rows)
	w.log.Info().Int64("rows", rows).Msg("daily quota counters reset")
}
