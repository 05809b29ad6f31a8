// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/adapter"
	"github.com/SERG-KRUK/tgbot/internal/infra/metrics"
)

// completionTimeout bounds one provider round-trip; a timeout surfaces
// as ErrProviderFailure, a transient condition for the caller.
const completionTimeout = 45 * time.Second

// ChatUseCase is thin glue over the completion provider: bounded
// timeout, metrics, error classification. Admission is the caller's
// concern and happens before Ask.
type ChatUseCase struct {
	ai  adapter.CompletionAdapter
	log *zerolog.Logger
}

func NewChatUseCase(ai adapter.CompletionAdapter, logger *zerolog.Logger) *ChatUseCase {
	l := logger.With().Str("component", "ChatUC").Logger()
	return &ChatUseCase{ai: ai, log: &l}
}

// Ask sends the prompt to the provider and returns the assistant text.
// Overload and hard failure come back as the domain sentinels so the
// messaging layer can apologize instead of propagating.
func (uc *ChatUseCase) Ask(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	start := time.Now()
	text, err := uc.ai.Complete(ctx, prompt)
	metrics.ObserveAICall(uc.ai.ModelName(), err == nil, time.Since(start))
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrProviderOverloaded) {
			err = domain.ErrProviderFailure
		}
		uc.log.Warn().Err(err).Str("model", uc.ai.ModelName()).Msg("completion failed")
		return "", err
	}
	return text, nil
}
