// internal/adapter/social/reddit.go

package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"misintel/internal/domain/post"
)

// RedditConfig contains configuration for the Reddit collector
type RedditConfig struct {
	// UserAgent identifies the client to Reddit; required to avoid rate
	// limiting on the public JSON endpoints
	UserAgent string
}

// redditSubmission is one post from Reddit's search listing
type redditSubmission struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	SelfText  string  `json:"selftext"`
	Author    string  `json:"author"`
	Subreddit string  `json:"subreddit"`
	Score     int     `json:"score"`
	Created   float64 `json:"created_utc"`
	Permalink string  `json:"permalink"`
}

// redditListing is the envelope Reddit wraps listings in
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditSubmission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditSource collects posts from Reddit's public search endpoint
type RedditSource struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     zerolog.Logger
}

// NewRedditSource creates a new Reddit collector
func NewRedditSource(config RedditConfig, logger zerolog.Logger) *RedditSource {
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "misintel/1.0"
	}
	return &RedditSource{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://www.reddit.com",
		userAgent:  userAgent,
		logger:     logger.With().Str("component", "reddit").Logger(),
	}
}

// Name returns the collector name
func (r *RedditSource) Name() string {
	return "reddit"
}

// FetchPosts searches Reddit for submissions mentioning the query
func (r *RedditSource) FetchPosts(ctx context.Context, query string, limit int) ([]post.Post, error) {
	if limit <= 0 {
		limit = 25
	}

	clean := strings.TrimPrefix(strings.TrimSpace(query), "@")
	searchURL := fmt.Sprintf("%s/search.json?q=%s&sort=new&limit=%d", r.baseURL, url.QueryEscape(clean), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Reddit API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reddit API returned status code %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode Reddit API response: %w", err)
	}

	posts := make([]post.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		s := child.Data

		author := s.Author
		if author == "" || author == "[deleted]" {
			author = "deleted"
		}

		content := s.SelfText
		if content == "" {
			content = s.Title
		}

		p := post.Post{
			ID:         fmt.Sprintf("reddit_%s", s.ID),
			Platform:   post.PlatformReddit,
			Username:   "u/" + author,
			Content:    content,
			Timestamp:  time.Unix(int64(s.Created), 0),
			Engagement: s.Score,
			URL:        r.baseURL + s.Permalink,
			Source:     "Reddit API",
		}
		posts = append(posts, p.Normalized())
	}

	r.logger.Debug().Int("posts", len(posts)).Str("query", clean).Msg("reddit search complete")
	return posts, nil
}
