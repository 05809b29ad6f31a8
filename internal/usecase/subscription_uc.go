// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/domain/ports/repository"
)

// subscriptionMonth is the fixed length of one purchased month. Not a
// calendar month on purpose: renewals stay predictable.
const subscriptionMonth = 30 * 24 * time.Hour

// SubscriptionUseCase extends a user's subscription window.
//
// By default a renewal overwrites the window end (now + 30d per month),
// matching the historical behavior: renewing early forfeits unused
// time. With stacking enabled the new window is appended to whichever
// is later, now or the current window end.
type SubscriptionUseCase struct {
	users    repository.UserRecordRepository
	stacking bool
	now      func() time.Time
	log      *zerolog.Logger
}

func NewSubscriptionUseCase(users repository.UserRecordRepository, stacking bool, logger *zerolog.Logger) *SubscriptionUseCase {
	l := logger.With().Str("component", "SubscriptionUC").Logger()
	return &SubscriptionUseCase{users: users, stacking: stacking, now: time.Now, log: &l}
}

// Extend grants months of subscription to userID, creating the record
// if the user was never seen. It accepts an optional transaction handle
// so activation can run inside the payment transaction.
func (uc *SubscriptionUseCase) Extend(ctx context.Context, tx repository.Tx, userID int64, months int) (time.Time, error) {
	if months <= 0 {
		months = 1
	}
	now := uc.now()
	base := now
	if uc.stacking {
		rec, err := uc.users.GetOrCreate(ctx, tx, userID, now)
		if err != nil {
			return time.Time{}, fmt.Errorf("extend subscription for user %d: %w", userID, err)
		}
		if rec.SubscribedUntil != nil && rec.SubscribedUntil.After(base) {
			base = *rec.SubscribedUntil
		}
	} else {
		if _, err := uc.users.GetOrCreate(ctx, tx, userID, now); err != nil {
			return time.Time{}, fmt.Errorf("extend subscription for user %d: %w", userID, err)
		}
	}

	until := base.Add(time.Duration(months) * subscriptionMonth)
	if err := uc.users.ExtendSubscription(ctx, tx, userID, until); err != nil {
		return time.Time{}, fmt.Errorf("extend subscription for user %d: %w", userID, err)
	}
	uc.log.Info().Int64("user_id", userID).Int("months", months).
		Time("until", until).Bool("stacking", uc.stacking).Msg("subscription extended")
	return until, nil
}
