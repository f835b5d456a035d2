package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misintel/internal/domain/post"
)

type staticSource struct {
	name  string
	posts []post.Post
	err   error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) FetchPosts(ctx context.Context, query string, limit int) ([]post.Post, error) {
	return s.posts, s.err
}

func newTestMonitor() *Monitor {
	return NewMonitor(MonitorConfig{MaxResults: 50}, zerolog.Nop())
}

func TestCollectPostsMergesAndSorts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	m := newTestMonitor()
	m.AddSource(staticSource{name: "one", posts: []post.Post{
		{ID: "old", Timestamp: now.Add(-2 * time.Hour), Engagement: 10},
		{ID: "newest", Timestamp: now, Engagement: 20},
	}})
	m.AddSource(staticSource{name: "two", posts: []post.Post{
		{ID: "mid", Timestamp: now.Add(-1 * time.Hour), Engagement: 30},
	}})

	posts := m.CollectPosts(context.Background(), "@vip", 10)

	require.Len(t, posts, 3)
	assert.Equal(t, "newest", posts[0].ID)
	assert.Equal(t, "mid", posts[1].ID)
	assert.Equal(t, "old", posts[2].ID)
}

func TestCollectPostsSkipsFailingSource(t *testing.T) {
	m := newTestMonitor()
	m.AddSource(staticSource{name: "broken", err: errors.New("rate limited")})
	m.AddSource(staticSource{name: "working", posts: []post.Post{
		{ID: "a", Timestamp: time.Now(), Engagement: 5},
	}})

	posts := m.CollectPosts(context.Background(), "@vip", 10)

	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].ID)
}

func TestCollectPostsNoSources(t *testing.T) {
	m := newTestMonitor()

	posts := m.CollectPosts(context.Background(), "@vip", 10)

	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestCollectPostsNormalizesDefaults(t *testing.T) {
	m := newTestMonitor()
	m.AddSource(staticSource{name: "sparse", posts: []post.Post{
		{ID: "bare", Engagement: -5},
	}})

	posts := m.CollectPosts(context.Background(), "@vip", 10)

	require.Len(t, posts, 1)
	assert.False(t, posts[0].Timestamp.IsZero())
	assert.Equal(t, 0, posts[0].Engagement)
}

func TestCollectPostsCapsResults(t *testing.T) {
	many := make([]post.Post, 30)
	for i := range many {
		many[i] = post.Post{ID: "p", Timestamp: time.Now()}
	}

	m := newTestMonitor()
	m.AddSource(staticSource{name: "chatty", posts: many})

	posts := m.CollectPosts(context.Background(), "@vip", 10)
	assert.Len(t, posts, 10)
}

func TestDemoSourceDeterministic(t *testing.T) {
	first, err := NewDemoSource(99).FetchPosts(context.Background(), "@vip", 20)
	require.NoError(t, err)
	second, err := NewDemoSource(99).FetchPosts(context.Background(), "@vip", 20)
	require.NoError(t, err)

	require.Len(t, first, 20)
	for i := range first {
		// Timestamps derive from the wall clock; everything else must match
		first[i].Timestamp = time.Time{}
		second[i].Timestamp = time.Time{}
	}
	assert.Equal(t, first, second)
}

func TestDemoSourceContentMentionsQuery(t *testing.T) {
	posts, err := NewDemoSource(7).FetchPosts(context.Background(), "@somebody", 10)
	require.NoError(t, err)

	for _, p := range posts {
		assert.Contains(t, p.Content, "somebody")
		assert.GreaterOrEqual(t, p.Engagement, 0)
		assert.Equal(t, "simulated", p.Source)
	}
}
