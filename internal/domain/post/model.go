package post

import (
	"context"
	"time"
)

// Platform identifies the social platform a post was collected from
type Platform string

const (
	PlatformTwitter   Platform = "Twitter"
	PlatformReddit    Platform = "Reddit"
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformYouTube   Platform = "YouTube"
	PlatformTikTok    Platform = "TikTok"
)

// Post is the normalized record every collector produces. Content may be
// empty; downstream scorers must handle that without failing.
type Post struct {
	ID         string    `json:"id"`
	Platform   Platform  `json:"platform"`
	Username   string    `json:"username"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Engagement int       `json:"engagement"`
	URL        string    `json:"url,omitempty"`
	Source     string    `json:"source,omitempty"`
}

// Normalized returns a copy with defaults applied: a zero timestamp becomes
// now, negative engagement becomes zero.
func (p Post) Normalized() Post {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	if p.Engagement < 0 {
		p.Engagement = 0
	}
	return p
}

// Source defines a platform collector that produces normalized posts
type Source interface {
	// Name returns the collector name
	Name() string

	// FetchPosts returns posts matching the query, up to limit
	FetchPosts(ctx context.Context, query string, limit int) ([]Post, error)
}
