package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	progerrors "github.com/AccelByte/extend-idle-progression/pkg/errors"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
)

// UnlockPublisher delivers fired unlocks (story events, achievements,
// promotions) to a system outside the engine. Delivery never changes game state.
type UnlockPublisher interface {
	// PublishUnlock sends one unlock for the given session.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - sessionID: Session the unlock belongs to
	//   - unlock: The fired unlock
	PublishUnlock(ctx context.Context, sessionID string, unlock domain.Unlock) error
}

// RetryConfig bounds PublishWithRetry.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig returns 3 attempts with 100ms, 200ms backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// PublishWithRetry publishes an unlock, retrying retryable failures with
// exponential backoff. Every attempt carries the same unlock ID, assigned here
// when the caller left it empty. Non-retryable errors fail immediately. The
// returned error is a PUBLISH_FAILED ProgressionError wrapping the last failure.
func PublishWithRetry(ctx context.Context, p UnlockPublisher, sessionID string, unlock domain.Unlock, cfg RetryConfig, log *slog.Logger) error {
	log = logger.OrDiscard(log)
	if unlock.ID == "" {
		unlock.ID = uuid.NewString()
	}
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = p.PublishUnlock(ctx, sessionID, unlock)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) || attempt == attempts {
			break
		}

		log.Warn("Unlock publish failed, retrying",
			"session_id", sessionID,
			"kind", unlock.Kind,
			"title", unlock.Title,
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return progerrors.ErrPublishFailed(string(unlock.Kind), unlock.Title, ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return progerrors.ErrPublishFailed(string(unlock.Kind), unlock.Title, err)
}
