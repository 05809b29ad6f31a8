//go:build !integration

package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeResetter struct {
	calls int32
	rows  int64
	err   error
}

func (f *fakeResetter) ResetAllDailyCounters(ctx context.Context) (int64, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.rows, f.err
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestDailyResetWorker_UntilNextReset(t *testing.T) {
	w := NewDailyResetWorker(&fakeResetter{}, nopLogger())
	w.now = func() time.Time { return time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC) }

	if got, want := w.untilNextReset(), time.Hour; got != want {
		t.Errorf("untilNextReset = %v, want %v", got, want)
	}

	// Just past midnight the deadline is a full day away, not stale.
	w.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC) }
	if got := w.untilNextReset(); got > 24*time.Hour || got < 23*time.Hour {
		t.Errorf("untilNextReset after midnight = %v, want just under 24h", got)
	}
}

func TestDailyResetWorker_RunOnce(t *testing.T) {
	t.Run("reset idempotence", func(t *testing.T) {
		f := &fakeResetter{rows: 7}
		w := NewDailyResetWorker(f, nopLogger())

		w.runOnce(context.Background())
		f.rows = 0 // second pass finds nothing to zero
		w.runOnce(context.Background())

		if got := atomic.LoadInt32(&f.calls); got != 2 {
			t.Errorf("expected 2 reset calls, got %d", got)
		}
	})

	t.Run("reset error is absorbed", func(t *testing.T) {
		f := &fakeResetter{err: errors.New("store down")}
		w := NewDailyResetWorker(f, nopLogger())
		w.runOnce(context.Background()) // must not panic; next midnight retries
	})
}

func TestDailyResetWorker_RunStopsOnCancel(t *testing.T) {
	w := NewDailyResetWorker(&fakeResetter{}, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancellation")
	}
}
