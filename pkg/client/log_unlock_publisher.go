package client

import (
	"context"
	"log/slog"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
)

// LogUnlockPublisher is a publisher for local play.
// Unlike MockUnlockPublisher (testify/mock), it needs no setup and always
// succeeds, logging each unlock.
//
// Use this when UNLOCK_WEBHOOK_URL is empty. For tests, use MockUnlockPublisher.
type LogUnlockPublisher struct {
	logger *slog.Logger
}

// NewLogUnlockPublisher creates a new logging publisher.
func NewLogUnlockPublisher(log *slog.Logger) *LogUnlockPublisher {
	return &LogUnlockPublisher{logger: logger.OrDiscard(log)}
}

// PublishUnlock logs the unlock and returns success.
func (p *LogUnlockPublisher) PublishUnlock(ctx context.Context, sessionID string, unlock domain.Unlock) error {
	p.logger.InfoContext(ctx, "Unlock",
		"session_id", sessionID,
		"kind", unlock.Kind,
		"title", unlock.Title,
		"reward", unlock.Reward,
		"game_time", unlock.At,
	)
	return nil
}
