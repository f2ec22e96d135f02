package notification

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

func newTestQueue(policy config.RandomPolicy) *Queue {
	opts := OptionsFromTuning(config.DefaultTuning())
	opts.RandomPolicy = policy
	return NewQueue(opts, rand.New(rand.NewPCG(1, 2)))
}

func TestOptionsFromTuning(t *testing.T) {
	opts := OptionsFromTuning(config.DefaultTuning())

	assert.Equal(t, 5, opts.Capacity)
	assert.Equal(t, 5*time.Second, opts.Normal)
	assert.Equal(t, 5*time.Second, opts.Promotion)
	assert.Equal(t, 10*time.Second, opts.Story)
	assert.Equal(t, 10*time.Second, opts.Achievement)
	assert.Equal(t, 2*time.Second, opts.RandomMin)
	assert.Equal(t, 3*time.Second, opts.RandomMax)
	assert.Equal(t, config.RandomPolicySuppress, opts.RandomPolicy)
}

func TestQueue_Durations(t *testing.T) {
	q := newTestQueue(config.RandomPolicySuppress)

	tests := []struct {
		priority domain.Priority
		want     time.Duration
	}{
		{domain.PriorityNormal, 5 * time.Second},
		{domain.PriorityPromotion, 5 * time.Second},
		{domain.PriorityStory, 10 * time.Second},
		{domain.PriorityAchievement, 10 * time.Second},
	}

	for i, tt := range tests {
		n, ok := q.Enqueue(fmt.Sprintf("t%d", i), "", tt.priority, 0)
		require.True(t, ok)
		assert.Equal(t, tt.want, n.Duration, "priority %s", tt.priority)
		assert.NotEmpty(t, n.ID)
	}

	for i := 0; i < 50; i++ {
		d := q.randomDuration()
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

func TestQueue_Deduplication(t *testing.T) {
	q := newTestQueue(config.RandomPolicySuppress)

	_, ok := q.Enqueue("Premier Café", "La pause de 10h", domain.PriorityStory, 0)
	require.True(t, ok)

	_, ok = q.Enqueue("Premier Café", "La pause de 10h", domain.PriorityStory, time.Second)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())

	// same title, different description is a distinct message
	_, ok = q.Enqueue("Premier Café", "Encore une pause", domain.PriorityNormal, time.Second)
	assert.True(t, ok)
	assert.Equal(t, 2, q.Len())

	// once the first one expires the pair may be queued again
	_, ok = q.Enqueue("Premier Café", "La pause de 10h", domain.PriorityStory, 10*time.Second)
	assert.True(t, ok)
}

func TestQueue_RandomSuppress(t *testing.T) {
	q := newTestQueue(config.RandomPolicySuppress)

	first, ok := q.Enqueue("", "Encore un dossier !", domain.PriorityRandom, 0)
	require.True(t, ok)

	_, ok = q.Enqueue("", "Réunion dans 5 minutes", domain.PriorityRandom, 500*time.Millisecond)
	assert.False(t, ok, "live random notification suppresses a new one")

	items := q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)

	// after the first one expires, a new random is accepted even before a tick purges it
	second, ok := q.Enqueue("", "Réunion dans 5 minutes", domain.PriorityRandom, 3*time.Second)
	require.True(t, ok)
	items = q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestQueue_RandomReplace(t *testing.T) {
	q := newTestQueue(config.RandomPolicyReplace)

	_, ok := q.Enqueue("", "Encore un dossier !", domain.PriorityRandom, 0)
	require.True(t, ok)
	_, ok = q.Enqueue("Premier Jour", "Bienvenue", domain.PriorityStory, 0)
	require.True(t, ok)

	second, ok := q.Enqueue("", "Réunion dans 5 minutes", domain.PriorityRandom, 500*time.Millisecond)
	require.True(t, ok)

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, domain.PriorityStory, items[0].Priority)
	assert.Equal(t, second.ID, items[1].ID)
}

func TestQueue_CapacityEvictsOldestNonStory(t *testing.T) {
	q := newTestQueue(config.RandomPolicySuppress)

	q.Enqueue("story-1", "", domain.PriorityStory, 0)
	q.Enqueue("normal-1", "", domain.PriorityNormal, 0)
	q.Enqueue("story-2", "", domain.PriorityStory, 0)
	q.Enqueue("achievement-1", "", domain.PriorityAchievement, 0)
	q.Enqueue("normal-2", "", domain.PriorityNormal, 0)
	require.Equal(t, 5, q.Len())

	_, ok := q.Enqueue("promotion-1", "", domain.PriorityPromotion, 0)
	require.True(t, ok)

	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []string{"story-1", "story-2", "achievement-1", "normal-2", "promotion-1"}, titles(q))
}

func TestQueue_CapacityEvictsStoryLast(t *testing.T) {
	q := newTestQueue(config.RandomPolicySuppress)

	for i := 1; i <= 5; i++ {
		q.Enqueue(fmt.Sprintf("story-%d", i), "", domain.PriorityStory, 0)
	}

	// the only non-story entry is the new one, so it is the one evicted
	_, ok := q.Enqueue("normal-1", "", domain.PriorityNormal, 0)
	assert.False(t, ok)
	assert.Equal(t, 5, q.Len())

	// a sixth story evicts the oldest story
	_, ok = q.Enqueue("story-6", "", domain.PriorityStory, 0)
	assert.True(t, ok)
	assert.Equal(t, []string{"story-2", "story-3", "story-4", "story-5", "story-6"}, titles(q))
}

func TestQueue_NeverExceedsCapacity(t *testing.T) {
	q := newTestQueue(config.RandomPolicyReplace)
	priorities := []domain.Priority{
		domain.PriorityNormal, domain.PriorityRandom, domain.PriorityStory,
		domain.PriorityAchievement, domain.PriorityPromotion,
	}

	for i := 0; i < 200; i++ {
		q.Enqueue(fmt.Sprintf("n-%d", i), "", priorities[i%len(priorities)], time.Duration(i)*100*time.Millisecond)
		require.LessOrEqual(t, q.Len(), 5)

		randoms := 0
		for _, n := range q.Items() {
			if n.Priority == domain.PriorityRandom {
				randoms++
			}
		}
		require.LessOrEqual(t, randoms, 1)
	}
}

func TestQueue_Expire(t *testing.T) {
	q := newTestQueue(config.RandomPolicySuppress)

	q.Enqueue("normal", "", domain.PriorityNormal, 0)
	q.Enqueue("story", "", domain.PriorityStory, 0)

	assert.Equal(t, 0, q.Expire(4999*time.Millisecond))
	assert.Equal(t, 1, q.Expire(5*time.Second), "age == duration expires")
	assert.Equal(t, []string{"story"}, titles(q))
	assert.Equal(t, 1, q.Expire(time.Minute))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Latest(t *testing.T) {
	q := newTestQueue(config.RandomPolicySuppress)

	_, ok := q.Latest(0)
	assert.False(t, ok)

	q.Enqueue("story", "", domain.PriorityStory, 0)
	q.Enqueue("normal", "", domain.PriorityNormal, time.Second)

	latest, ok := q.Latest(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, "normal", latest.Title)

	// the newest expired before a purge, the previous live one shows
	latest, ok = q.Latest(6 * time.Second)
	require.True(t, ok)
	assert.Equal(t, "story", latest.Title)

	q.Clear()
	_, ok = q.Latest(6 * time.Second)
	assert.False(t, ok)
}

func titles(q *Queue) []string {
	var out []string
	for _, n := range q.Items() {
		out = append(out, n.Title)
	}
	return out
}
