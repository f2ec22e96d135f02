package domain

import "time"

// Priority classifies a notification. It drives display duration and eviction.
type Priority string

const (
	// PriorityNormal is generic feedback.
	PriorityNormal Priority = "normal"

	// PriorityRandom is click flavor text. At most one is live at a time.
	PriorityRandom Priority = "random"

	// PriorityStory announces a story event. Evicted only after every other class.
	PriorityStory Priority = "story"

	// PriorityAchievement announces an unlocked achievement.
	PriorityAchievement Priority = "achievement"

	// PriorityPromotion announces a rank change.
	PriorityPromotion Priority = "promotion"
)

// IsValid returns true if the priority is a known class.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityRandom, PriorityStory, PriorityAchievement, PriorityPromotion:
		return true
	default:
		return false
	}
}

// Notification is a transient message surfaced to the player.
// CreatedAt is measured on the owning engine's clock (elapsed game time).
type Notification struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    Priority      `json:"priority"`
	CreatedAt   time.Duration `json:"created_at"`
	Duration    time.Duration `json:"duration"`
}

// Age returns how long the notification has been queued at now.
func (n *Notification) Age(now time.Duration) time.Duration {
	return now - n.CreatedAt
}

// IsExpired returns true once age >= duration.
func (n *Notification) IsExpired(now time.Duration) bool {
	return n.Age(now) >= n.Duration
}

// Opacity returns 1 - age/duration clamped to [0, 1], for fade-out.
func (n *Notification) Opacity(now time.Duration) float64 {
	if n.Duration <= 0 {
		return 0
	}
	alpha := 1 - float64(n.Age(now))/float64(n.Duration)
	switch {
	case alpha < 0:
		return 0
	case alpha > 1:
		return 1
	default:
		return alpha
	}
}
