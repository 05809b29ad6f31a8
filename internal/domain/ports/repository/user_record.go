package repository

import (
	"context"
	"time"

	"github.com/SERG-KRUK/tgbot/internal/domain/model"
)

// AdmissionReason explains how an admission decision was reached.
type AdmissionReason string

const (
	ReasonSubscribed     AdmissionReason = "subscribed"      // active subscription, quota not consulted
	ReasonRollover       AdmissionReason = "rollover"        // first request of a new calendar day
	ReasonWithinQuota    AdmissionReason = "within_quota"    // free quota incremented
	ReasonQuotaExhausted AdmissionReason = "quota_exhausted" // denied, no mutation
)

// AdmissionOutcome is the result of one atomic admission decision.
type AdmissionOutcome struct {
	Admitted  bool
	Reason    AdmissionReason
	Remaining int // advisory free-request balance after the decision
}

// UserRecordRepository owns the persisted per-user quota/subscription
// state. All mutation of a record goes through these operations; no
// caller may read-modify-write outside of them.
type UserRecordRepository interface {
	// GetOrCreate returns the record for userID, lazily creating one
	// with today's date and a zero counter.
	GetOrCreate(ctx context.Context, tx Tx, userID int64, now time.Time) (*model.UserRecord, error)

	// ApplyAdmissionDecision evaluates the admission policy for userID
	// at instant now as a single transaction over the user's row:
	// subscription overrides quota, a new day grants one fresh counted
	// request, otherwise the counter is incremented while below the
	// daily limit. Concurrent calls for the same user must not lose
	// updates.
	ApplyAdmissionDecision(ctx context.Context, userID int64, now time.Time) (AdmissionOutcome, error)

	// ExtendSubscription overwrites the subscription window end.
	ExtendSubscription(ctx context.Context, tx Tx, userID int64, until time.Time) error

	// SetPendingInvoice records (or clears, with nil) the invoice the
	// user is expected to settle next.
	SetPendingInvoice(ctx context.Context, tx Tx, userID int64, invoiceID *string) error

	// ResetAllDailyCounters zeroes requests_today for every record.
	// Atomic per row, not necessarily as one global transaction.
	ResetAllDailyCounters(ctx context.Context) (int64, error)

	// Find returns the record or domain.ErrNotFound. Pure read.
	Find(ctx context.Context, tx Tx, userID int64) (*model.UserRecord, error)
}
