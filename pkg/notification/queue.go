// Package notification holds the transient, priority-classed message queue
// surfaced to the player.
package notification

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

// Options configure a Queue.
type Options struct {
	Capacity int

	Normal      time.Duration
	Promotion   time.Duration
	Story       time.Duration
	Achievement time.Duration
	RandomMin   time.Duration
	RandomMax   time.Duration

	RandomPolicy config.RandomPolicy
}

// OptionsFromTuning converts catalog tuning into queue options.
func OptionsFromTuning(t config.Tuning) Options {
	ms := func(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
	return Options{
		Capacity:     t.QueueCapacity,
		Normal:       ms(t.NormalDurationMs),
		Promotion:    ms(t.PromotionDurationMs),
		Story:        ms(t.StoryDurationMs),
		Achievement:  ms(t.AchievementDurationMs),
		RandomMin:    ms(t.RandomMinDurationMs),
		RandomMax:    ms(t.RandomMaxDurationMs),
		RandomPolicy: t.RandomPolicy,
	}
}

// Queue is an ordered list of notifications, oldest first.
// It is not safe for concurrent use; the owning engine serializes access.
type Queue struct {
	opts  Options
	items []*domain.Notification
	rng   *rand.Rand
}

// NewQueue creates an empty queue. rng picks random-class durations; nil uses
// the global source.
func NewQueue(opts Options, rng *rand.Rand) *Queue {
	if opts.Capacity < 1 {
		opts.Capacity = 1
	}
	return &Queue{
		opts:  opts,
		items: make([]*domain.Notification, 0, opts.Capacity+1),
		rng:   rng,
	}
}

// Enqueue inserts a notification created at now. It returns the notification
// and true when it is present in the queue afterwards. It returns false when the
// same (title, description) pair is already queued, when a live random
// notification suppresses a new one, or when capacity eviction removed it.
func (q *Queue) Enqueue(title, description string, priority domain.Priority, now time.Duration) (*domain.Notification, bool) {
	q.Expire(now)

	for _, n := range q.items {
		if n.Title == title && n.Description == description {
			return nil, false
		}
	}

	if priority == domain.PriorityRandom && q.hasPriority(domain.PriorityRandom) {
		if q.opts.RandomPolicy != config.RandomPolicyReplace {
			return nil, false
		}
		q.items = slices.DeleteFunc(q.items, func(n *domain.Notification) bool {
			return n.Priority == domain.PriorityRandom
		})
	}

	n := &domain.Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Priority:    priority,
		CreatedAt:   now,
		Duration:    q.duration(priority),
	}
	q.items = append(q.items, n)

	for len(q.items) > q.opts.Capacity {
		q.evictOne()
	}

	return n, slices.Contains(q.items, n)
}

// evictOne removes the oldest non-story entry, or the oldest story entry when
// only stories remain.
func (q *Queue) evictOne() {
	idx := slices.IndexFunc(q.items, func(n *domain.Notification) bool {
		return n.Priority != domain.PriorityStory
	})
	if idx < 0 {
		idx = 0
	}
	q.items = slices.Delete(q.items, idx, idx+1)
}

// Expire removes every notification whose age is >= its duration and returns
// how many were removed.
func (q *Queue) Expire(now time.Duration) int {
	before := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(n *domain.Notification) bool {
		return n.IsExpired(now)
	})
	return before - len(q.items)
}

// Latest returns the most recently inserted live notification.
func (q *Queue) Latest(now time.Duration) (*domain.Notification, bool) {
	for i := len(q.items) - 1; i >= 0; i-- {
		if !q.items[i].IsExpired(now) {
			n := *q.items[i]
			return &n, true
		}
	}
	return nil, false
}

// Items returns a copy of the queued notifications, oldest first.
func (q *Queue) Items() []domain.Notification {
	out := make([]domain.Notification, len(q.items))
	for i, n := range q.items {
		out[i] = *n
	}
	return out
}

// Len returns the number of queued notifications, including expired entries
// not yet purged.
func (q *Queue) Len() int {
	return len(q.items)
}

// Clear drops every notification.
func (q *Queue) Clear() {
	q.items = q.items[:0]
}

func (q *Queue) hasPriority(p domain.Priority) bool {
	return slices.ContainsFunc(q.items, func(n *domain.Notification) bool {
		return n.Priority == p
	})
}

func (q *Queue) duration(p domain.Priority) time.Duration {
	switch p {
	case domain.PriorityStory:
		return q.opts.Story
	case domain.PriorityAchievement:
		return q.opts.Achievement
	case domain.PriorityPromotion:
		return q.opts.Promotion
	case domain.PriorityRandom:
		return q.randomDuration()
	default:
		return q.opts.Normal
	}
}

// randomDuration is uniform over [RandomMin, RandomMax].
func (q *Queue) randomDuration() time.Duration {
	span := int64(q.opts.RandomMax - q.opts.RandomMin)
	if span <= 0 {
		return q.opts.RandomMin
	}
	if q.rng != nil {
		return q.opts.RandomMin + time.Duration(q.rng.Int64N(span+1))
	}
	return q.opts.RandomMin + time.Duration(rand.Int64N(span+1))
}
