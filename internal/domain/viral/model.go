package viral

import (
	"context"
	"time"

	"misintel/internal/domain/post"
)

// Record represents a post that crossed the viral engagement threshold
type Record struct {
	PostID     string        `json:"post_id"`
	Platform   post.Platform `json:"platform"`
	Engagement int           `json:"engagement"`
	ViralScore float64       `json:"viral_score"`
	Velocity   float64       `json:"velocity"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Tracker filters a batch of posts down to viral records
type Tracker interface {
	// FilterViral returns a record for each post whose engagement exceeds
	// the viral threshold, sorted by viral score descending
	FilterViral(ctx context.Context, posts []post.Post) []Record
}
