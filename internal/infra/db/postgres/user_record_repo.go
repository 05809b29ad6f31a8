package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/model"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/repository"
)

var _ repository.UserRecordRepository = (*UserRecordRepo)(nil)

// UserRecordRepo persists per-user quota/subscription state in the
// users table. ApplyAdmissionDecision is the only admission path and
// runs as one row-locked transaction, so concurrent requests from the
// same user cannot lose counter updates.
type UserRecordRepo struct {
	pool *pgxpool.Pool
}

func NewUserRecordRepo(pool *pgxpool.Pool) *UserRecordRepo {
	return &UserRecordRepo{pool: pool}
}

const userColumns = `user_id, subscribed_until, last_request_date, requests_today, pending_invoice_id`

func scanUser(row pgx.Row) (*model.UserRecord, error) {
	var u model.UserRecord
	if err := row.Scan(&u.UserID, &u.SubscribedUntil, &u.LastRequestDate, &u.RequestsToday, &u.PendingInvoiceID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRecordRepo) Find(ctx context.Context, tx repository.Tx, userID int64) (*model.UserRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanUser(ex.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id=$1;`, userID))
}

func (r *UserRecordRepo) GetOrCreate(ctx context.Context, tx repository.Tx, userID int64, now time.Time) (*model.UserRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO users (user_id, last_request_date, requests_today)
VALUES ($1, $2, 0)
ON CONFLICT (user_id) DO UPDATE SET user_id = users.user_id
RETURNING ` + userColumns + `;`
	return scanUser(ex.QueryRow(ctx, q, userID, model.DateOf(now)))
}

// ApplyAdmissionDecision locks the user's row and applies the policy:
// subscription overrides quota, a new day grants one fresh counted
// request, otherwise the counter is incremented while below the limit.
func (r *UserRecordRepo) ApplyAdmissionDecision(ctx context.Context, userID int64, now time.Time) (repository.AdmissionOutcome, error) {
	var out repository.AdmissionOutcome
	today := model.DateOf(now)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return out, fmt.Errorf("begin admission tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id=$1 FOR UPDATE;`, userID))
	switch {
	case err == domain.ErrNotFound:
		// First admitted request creates the record with one consumed slot.
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (user_id, last_request_date, requests_today) VALUES ($1, $2, 1);`,
			userID, today); err != nil {
			return out, fmt.Errorf("create user record: %w", err)
		}
		out = repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonWithinQuota, Remaining: model.MaxFreeRequestsPerDay - 1}
	case err != nil:
		return out, fmt.Errorf("load user record: %w", err)
	case u.Subscribed(now):
		// No mutation: the counter is not consulted for subscribers.
		out = repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonSubscribed, Remaining: u.Remaining(now)}
	case !u.SameDay(now):
		if _, err := tx.Exec(ctx,
			`UPDATE users SET last_request_date=$2, requests_today=1 WHERE user_id=$1;`,
			userID, today); err != nil {
			return out, fmt.Errorf("apply rollover: %w", err)
		}
		out = repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonRollover, Remaining: model.MaxFreeRequestsPerDay - 1}
	case u.RequestsToday < model.MaxFreeRequestsPerDay:
		if _, err := tx.Exec(ctx,
			`UPDATE users SET requests_today = requests_today + 1 WHERE user_id=$1;`,
			userID); err != nil {
			return out, fmt.Errorf("increment counter: %w", err)
		}
		out = repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonWithinQuota, Remaining: model.MaxFreeRequestsPerDay - u.RequestsToday - 1}
	default:
		out = repository.AdmissionOutcome{Admitted: false, Reason: repository.ReasonQuotaExhausted, Remaining: 0}
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.AdmissionOutcome{}, fmt.Errorf("commit admission tx: %w", err)
	}
	return out, nil
}

func (r *UserRecordRepo) ExtendSubscription(ctx context.Context, tx repository.Tx, userID int64, until time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE users SET subscribed_until=$2 WHERE user_id=$1;`, userID, until)
	if err != nil {
		return fmt.Errorf("extend subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRecordRepo) SetPendingInvoice(ctx context.Context, tx repository.Tx, userID int64, invoiceID *string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, `UPDATE users SET pending_invoice_id=$2 WHERE user_id=$1;`, userID, invoiceID); err != nil {
		return fmt.Errorf("set pending invoice: %w", err)
	}
	return nil
}

// ResetAllDailyCounters zeroes every counter. Row-level atomicity is
// enough here: a reader may observe a partially finished pass.
func (r *UserRecordRepo) ResetAllDailyCounters(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET requests_today = 0 WHERE requests_today <> 0;`)
	if err != nil {
		return 0, fmt.Errorf("reset daily counters: %w", err)
	}
	return tag.RowsAffected(), nil
}
