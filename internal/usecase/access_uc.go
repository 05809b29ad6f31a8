// File: internal/usecase/access_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/model"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/repository"
	"github.com/SERG-KRUK/tgbot/internal/infra/metrics"
)

// AccessUseCase decides admission for metered requests. The decision
// itself runs as one atomic store operation per user; this layer adds
// logging and metrics around it.
type AccessUseCase struct {
	users repository.UserRecordRepository
	now   func() time.Time
	log   *zerolog.Logger
}

func NewAccessUseCase(users repository.UserRecordRepository, logger *zerolog.Logger) *AccessUseCase {
	l := logger.With().Str("component", "AccessUC").Logger()
	return &AccessUseCase{users: users, now: time.Now, log: &l}
}

// Admit applies the admission policy for userID: an active subscription
// always admits without touching the counter, a new calendar day grants
// one fresh counted request, otherwise the counter is incremented while
// below the daily limit. A store failure is returned as an error, never
// silently mapped to admit or deny.
func (uc *AccessUseCase) Admit(ctx context.Context, userID int64) (repository.AdmissionOutcome, error) {
	out, err := uc.users.ApplyAdmissionDecision(ctx, userID, uc.now())
	if err != nil {
		uc.log.Error().Err(err).Int64("user_id", userID).Msg("admission decision failed")
		return repository.AdmissionOutcome{}, fmt.Errorf("admit user %d: %w", userID, err)
	}
	metrics.IncAdmission(string(out.Reason))
	uc.log.Debug().Int64("user_id", userID).Bool("admitted", out.Admitted).
		Str("reason", string(out.Reason)).Int("remaining", out.Remaining).Msg("admission decided")
	return out, nil
}

// RemainingFreeRequests is the advisory free-request balance for today.
// It must never gate admission; that is Admit's sole responsibility.
func (uc *AccessUseCase) RemainingFreeRequests(ctx context.Context, userID int64) (int, error) {
	rec, err := uc.users.Find(ctx, nil, userID)
	if err != nil {
		if err == domain.ErrNotFound {
			return model.MaxFreeRequestsPerDay, nil
		}
		return 0, fmt.Errorf("remaining for user %d: %w", userID, err)
	}
	return rec.Remaining(uc.now()), nil
}

// TimeUntilRollover tells how long until the quota resets.
func (uc *AccessUseCase) TimeUntilRollover() time.Duration {
	now := uc.now()
	return model.NextRollover(now).Sub(now)
}
