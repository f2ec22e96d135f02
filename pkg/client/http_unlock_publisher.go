package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
)

// unlockPayload is the JSON body POSTed to the webhook.
type unlockPayload struct {
	EventID     string  `json:"event_id"`
	SessionID   string  `json:"session_id"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Reward      float64 `json:"reward,omitempty"`
	GameTimeMs  int64   `json:"game_time_ms"`
}

// HTTPUnlockPublisher POSTs unlocks as JSON to a webhook URL.
type HTTPUnlockPublisher struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPUnlockPublisher creates a publisher for the given webhook URL.
// A nil httpClient uses a client with a 5 second timeout.
func NewHTTPUnlockPublisher(url string, httpClient *http.Client, log *slog.Logger) *HTTPUnlockPublisher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPUnlockPublisher{
		url:        url,
		httpClient: httpClient,
		logger:     logger.OrDiscard(log),
	}
}

// PublishUnlock sends the unlock. The unlock ID is the event_id receivers
// deduplicate on; an unlock without one gets a fresh ID. Non-2xx responses are
// mapped to typed errors so IsRetryableError can classify them.
func (p *HTTPUnlockPublisher) PublishUnlock(ctx context.Context, sessionID string, unlock domain.Unlock) error {
	eventID := unlock.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	body, err := json.Marshal(unlockPayload{
		EventID:     eventID,
		SessionID:   sessionID,
		Kind:        string(unlock.Kind),
		Title:       unlock.Title,
		Description: unlock.Description,
		Reward:      unlock.Reward,
		GameTimeMs:  unlock.At.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode unlock: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid argument: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post unlock: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.logger.Debug("Unlock published",
			"session_id", sessionID,
			"kind", unlock.Kind,
			"title", unlock.Title,
			"status", resp.StatusCode,
		)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return statusError(resp.StatusCode, p.url, string(bytes.TrimSpace(msg)))
}
