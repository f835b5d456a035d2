// internal/adapter/social/twitter.go

package social

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/rs/zerolog"

	"misintel/internal/domain/post"
)

// TwitterConfig contains credentials for the Twitter collector. A bearer
// token is sufficient; full consumer/access credentials switch the client
// to OAuth1 user context.
type TwitterConfig struct {
	BearerToken    string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Configured reports whether any usable credential set is present
func (c TwitterConfig) Configured() bool {
	return c.BearerToken != "" || (c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessSecret != "")
}

// bearerAuthorizer adds app-only bearer auth to API requests
type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// signedAuthorizer is a no-op Authorizer used when the underlying HTTP
// client already signs requests (OAuth1 user context)
type signedAuthorizer struct{}

func (signedAuthorizer) Add(*http.Request) {}

// TwitterSource collects posts from the Twitter API v2 recent search
type TwitterSource struct {
	client *twitter.Client
	logger zerolog.Logger
}

// NewTwitterSource creates a new Twitter collector
func NewTwitterSource(config TwitterConfig, logger zerolog.Logger) (*TwitterSource, error) {
	if !config.Configured() {
		return nil, fmt.Errorf("twitter credentials not configured")
	}

	client := &twitter.Client{
		Host:   "https://api.twitter.com",
		Client: &http.Client{Timeout: 10 * time.Second},
	}

	if config.ConsumerKey != "" && config.ConsumerSecret != "" && config.AccessToken != "" && config.AccessSecret != "" {
		oauthConfig := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret)
		token := oauth1.NewToken(config.AccessToken, config.AccessSecret)
		client.Client = oauthConfig.Client(oauth1.NoContext, token)
		client.Authorizer = signedAuthorizer{}
	} else {
		client.Authorizer = bearerAuthorizer{token: config.BearerToken}
	}

	return &TwitterSource{
		client: client,
		logger: logger.With().Str("component", "twitter").Logger(),
	}, nil
}

// Name returns the collector name
func (t *TwitterSource) Name() string {
	return "twitter"
}

// FetchPosts searches recent tweets mentioning the query
func (t *TwitterSource) FetchPosts(ctx context.Context, query string, limit int) ([]post.Post, error) {
	// Recent search accepts 10..100 results per request
	maxResults := limit
	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	opts := twitter.TweetRecentSearchOpts{
		MaxResults: maxResults,
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldPublicMetrics,
			twitter.TweetFieldAuthorID,
		},
		Expansions: []twitter.Expansion{twitter.ExpansionAuthorID},
		UserFields: []twitter.UserField{twitter.UserFieldUserName},
	}

	resp, err := t.client.TweetRecentSearch(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("twitter recent search: %w", err)
	}
	if resp.Raw == nil {
		return []post.Post{}, nil
	}

	usernames := make(map[string]string)
	if resp.Raw.Includes != nil {
		for _, user := range resp.Raw.Includes.Users {
			usernames[user.ID] = user.UserName
		}
	}

	posts := make([]post.Post, 0, len(resp.Raw.Tweets))
	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil {
			continue
		}
		if len(posts) >= limit {
			break
		}

		timestamp, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			timestamp = time.Time{}
		}

		engagement := 0
		if tweet.PublicMetrics != nil {
			engagement = tweet.PublicMetrics.Likes + tweet.PublicMetrics.Retweets + tweet.PublicMetrics.Replies + tweet.PublicMetrics.Quotes
		}

		username := usernames[tweet.AuthorID]
		url := ""
		if username != "" {
			url = fmt.Sprintf("https://twitter.com/%s/status/%s", username, tweet.ID)
			username = "@" + username
		}

		p := post.Post{
			ID:         fmt.Sprintf("twitter_%s", tweet.ID),
			Platform:   post.PlatformTwitter,
			Username:   username,
			Content:    tweet.Text,
			Timestamp:  timestamp,
			Engagement: engagement,
			URL:        url,
			Source:     "Twitter API",
		}
		posts = append(posts, p.Normalized())
	}

	t.logger.Debug().Int("posts", len(posts)).Str("query", query).Msg("twitter search complete")
	return posts, nil
}
