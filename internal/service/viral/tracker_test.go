package viral

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misintel/internal/domain/post"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestTracker() *Tracker {
	config := DefaultTrackerConfig()
	config.Clock = func() time.Time { return testNow }
	return NewTracker(config, zerolog.Nop())
}

func TestFilterViralThreshold(t *testing.T) {
	tracker := newTestTracker()

	posts := []post.Post{
		{ID: "a", Platform: post.PlatformTwitter, Engagement: 5000, Timestamp: testNow},
		{ID: "b", Platform: post.PlatformReddit, Engagement: 50000, Timestamp: testNow},
		{ID: "c", Platform: post.PlatformTwitter, Engagement: 10000, Timestamp: testNow},
	}

	records := tracker.FilterViral(context.Background(), posts)

	require.Len(t, records, 1, "only engagement strictly above the threshold qualifies")
	assert.Equal(t, "b", records[0].PostID)

	// Base 0.5 plus a full recency boost of 0.2
	assert.InDelta(t, 0.7, records[0].ViralScore, 1e-9)
}

func TestFilterViralZeroEngagement(t *testing.T) {
	tracker := newTestTracker()

	records := tracker.FilterViral(context.Background(), []post.Post{
		{ID: "a", Engagement: 0, Timestamp: testNow},
	})

	assert.Empty(t, records)
}

func TestFilterViralEmptyInput(t *testing.T) {
	tracker := newTestTracker()

	records := tracker.FilterViral(context.Background(), nil)

	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFilterViralSortedDescending(t *testing.T) {
	tracker := newTestTracker()

	posts := []post.Post{
		{ID: "old", Engagement: 30000, Timestamp: testNow.Add(-72 * time.Hour)},
		{ID: "fresh", Engagement: 90000, Timestamp: testNow},
		{ID: "mid", Engagement: 60000, Timestamp: testNow.Add(-12 * time.Hour)},
	}

	records := tracker.FilterViral(context.Background(), posts)

	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i-1].ViralScore, records[i].ViralScore)
	}
	assert.Equal(t, "fresh", records[0].PostID)
}

func TestFilterViralStableTies(t *testing.T) {
	tracker := newTestTracker()

	// Identical engagement and timestamp produce identical scores; input
	// order must be preserved
	posts := []post.Post{
		{ID: "first", Engagement: 40000, Timestamp: testNow},
		{ID: "second", Engagement: 40000, Timestamp: testNow},
	}

	records := tracker.FilterViral(context.Background(), posts)

	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].PostID)
	assert.Equal(t, "second", records[1].PostID)
}

func TestViralScoreRecencyDecay(t *testing.T) {
	tracker := newTestTracker()

	fresh := tracker.viralScore(testNow, 50000)
	stale := tracker.viralScore(testNow.Add(-48*time.Hour), 50000)

	// Stale posts keep the base score only
	assert.InDelta(t, 0.7, fresh, 1e-9)
	assert.InDelta(t, 0.5, stale, 1e-9)
}

func TestViralScoreClamped(t *testing.T) {
	tracker := newTestTracker()

	score := tracker.viralScore(testNow, 5000000)
	assert.Equal(t, 1.0, score)
}

func TestViralScoreMissingTimestamp(t *testing.T) {
	tracker := newTestTracker()

	records := tracker.FilterViral(context.Background(), []post.Post{
		{ID: "undated", Platform: post.PlatformTwitter, Engagement: 50000},
	})

	require.Len(t, records, 1)

	// No timestamp means no recency boost, base score only
	assert.InDelta(t, 0.5, records[0].ViralScore, 1e-9)
	assert.False(t, records[0].Timestamp.IsZero(), "record still carries a defaulted timestamp")
}

func TestVelocityDeterministicAndMonotonic(t *testing.T) {
	tracker := newTestTracker()

	low := tracker.velocity(20000)
	high := tracker.velocity(80000)
	again := tracker.velocity(20000)

	assert.Equal(t, low, again, "identical engagement reproduces the identical velocity")
	assert.Greater(t, high, low)
	assert.GreaterOrEqual(t, low, 0.0)

	// Default spread rate of 1.25 over the 10000 divisor
	assert.InDelta(t, 2.5, low, 1e-9)
}
