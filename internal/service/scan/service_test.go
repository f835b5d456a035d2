package scan

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misintel/internal/domain/post"
	"misintel/internal/service/factcheck"
	"misintel/internal/service/monitor"
	viralService "misintel/internal/service/viral"
)

type staticSource struct {
	posts []post.Post
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) FetchPosts(ctx context.Context, query string, limit int) ([]post.Post, error) {
	return s.posts, nil
}

func newTestService(posts []post.Post) *Service {
	logger := zerolog.Nop()

	mon := monitor.NewMonitor(monitor.MonitorConfig{MaxResults: 100}, logger)
	mon.AddSource(staticSource{posts: posts})

	return NewService(
		mon,
		factcheck.NewScorer(nil, nil, logger),
		viralService.NewTracker(viralService.DefaultTrackerConfig(), logger),
		nil,
		nil,
		ServiceConfig{},
		logger,
	)
}

func TestRunScansAndRanksPosts(t *testing.T) {
	now := time.Now()
	service := newTestService([]post.Post{
		{
			ID:         "benign",
			Platform:   post.PlatformReddit,
			Content:    "According to verified research, the study shows the confirmed figures",
			Timestamp:  now,
			Engagement: 100,
		},
		{
			ID:         "risky",
			Platform:   post.PlatformTwitter,
			Content:    "BREAKING: leaked scandal allegedly unconfirmed reportedly exclusive!!",
			Timestamp:  now,
			Engagement: 50000,
		},
	})

	result, err := service.Run(context.Background(), "@vip", 10, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "@vip", result.Query)
	require.Len(t, result.Posts, 2)

	// Posts are ordered by risk descending
	assert.Equal(t, "risky", result.Posts[0].ID)
	assert.Equal(t, "benign", result.Posts[1].ID)
	assert.Greater(t, result.Posts[0].MisinformationScore, result.Posts[1].MisinformationScore)

	// Only the 50000-engagement post is viral
	require.Len(t, result.ViralRecords, 1)
	assert.Equal(t, "risky", result.ViralRecords[0].PostID)

	assert.Equal(t, 2, result.Summary.TotalPosts)
	assert.Equal(t, 50100, result.Summary.TotalEngagement)
	assert.Equal(t, 1, result.Summary.HighRisk)
	assert.Equal(t, 1, result.Summary.LowRisk)
}

func TestRunMinEngagementFilter(t *testing.T) {
	now := time.Now()
	service := newTestService([]post.Post{
		{ID: "small", Content: "quiet post", Timestamp: now, Engagement: 10},
		{ID: "large", Content: "busy post", Timestamp: now, Engagement: 5000},
	})

	result, err := service.Run(context.Background(), "@vip", 10, 1000)
	require.NoError(t, err)

	require.Len(t, result.Posts, 1)
	assert.Equal(t, "large", result.Posts[0].ID)
}

func TestRunEmptyCollection(t *testing.T) {
	service := newTestService(nil)

	result, err := service.Run(context.Background(), "@vip", 10, 0)
	require.NoError(t, err)

	assert.Empty(t, result.Posts)
	assert.Empty(t, result.ViralRecords)
	assert.Equal(t, 0, result.Summary.TotalPosts)
}

func TestRunScoresEmptyContentSafely(t *testing.T) {
	service := newTestService([]post.Post{
		{ID: "empty", Content: "", Timestamp: time.Now(), Engagement: 5},
	})

	result, err := service.Run(context.Background(), "@vip", 10, 0)
	require.NoError(t, err)

	require.Len(t, result.Posts, 1)
	assert.Empty(t, result.Posts[0].Flags)
	assert.InDelta(t, 0.4, result.Posts[0].MisinformationScore, 1e-9)
}
