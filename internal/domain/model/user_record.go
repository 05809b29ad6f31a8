package model

import "time"

// MaxFreeRequestsPerDay is the daily free quota for users without an
// active subscription.
const MaxFreeRequestsPerDay = 10

// UserRecord is the per-user state tracked by the bot: the daily free
// quota counter and the paid subscription window. One row per Telegram
// user. All date math is done in UTC.
type UserRecord struct {
	UserID           int64
	SubscribedUntil  *time.Time // nil or past means no active subscription
	LastRequestDate  *time.Time // calendar date (UTC midnight), nil means never requested
	RequestsToday    int
	PendingInvoiceID *string
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextRollover returns the next UTC midnight after now, the instant the
// free quota becomes available again.
func NextRollover(now time.Time) time.Time {
	return DateOf(now).Add(24 * time.Hour)
}

// Subscribed reports whether the record carries a subscription window
// that is still open at instant now.
func (u *UserRecord) Subscribed(now time.Time) bool {
	return u.SubscribedUntil != nil && now.Before(*u.SubscribedUntil)
}

// SameDay reports whether the last counted request happened on the
// calendar date of now. When false, RequestsToday is stale and must be
// treated as zero until the rollover is applied.
func (u *UserRecord) SameDay(now time.Time) bool {
	return u.LastRequestDate != nil && u.LastRequestDate.Equal(DateOf(now))
}

// Remaining returns the advisory free-request balance for the calendar
// date of now. A stale LastRequestDate yields the full limit.
func (u *UserRecord) Remaining(now time.Time) int {
	if !u.SameDay(now) {
		return MaxFreeRequestsPerDay
	}
	if r := MaxFreeRequestsPerDay - u.RequestsToday; r > 0 {
		return r
	}
	return 0
}
