// internal/service/monitor/demo.go

package monitor

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"misintel/internal/domain/post"
)

var demoPlatforms = []post.Platform{
	post.PlatformTwitter,
	post.PlatformReddit,
	post.PlatformFacebook,
	post.PlatformYouTube,
}

// Post templates span the scorer's risk spectrum so demo scans produce a
// realistic verdict mix
var demoTemplates = []string{
	"BREAKING: Leaked documents allegedly show %s involved in major scandal!!",
	"EXCLUSIVE: Unconfirmed reports say %s is reportedly stepping down",
	"According to verified sources, %s confirmed the announcement earlier today",
	"New research on %s published; study shows earlier claims were wrong",
	"%s spotted at the event yesterday, crowd reaction was huge",
	"Thread: everything we actually know about the %s story so far",
	"Allegedly %s has been hiding this for YEARS, share before it gets DELETED",
	"Official statement from %s confirmed by multiple outlets",
}

// DemoSource generates deterministic simulated posts from a seeded
// randomness source. It stands in for live collectors when no platform
// credentials are configured.
type DemoSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewDemoSource creates a demo source from a seed. Identical seeds
// reproduce identical posts for identical queries.
func NewDemoSource(seed int64) *DemoSource {
	return &DemoSource{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Name returns the collector name
func (d *DemoSource) Name() string {
	return "simulated"
}

// FetchPosts synthesizes posts about the query
func (d *DemoSource) FetchPosts(ctx context.Context, query string, limit int) ([]post.Post, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	subject := strings.TrimPrefix(strings.TrimSpace(query), "@")
	if subject == "" {
		subject = "the subject"
	}

	now := d.now()
	posts := make([]post.Post, 0, limit)
	for i := 0; i < limit; i++ {
		platform := demoPlatforms[d.rng.Intn(len(demoPlatforms))]
		template := demoTemplates[d.rng.Intn(len(demoTemplates))]

		engagement := d.rng.Intn(40000)
		// Occasional outlier well past the viral threshold
		if d.rng.Intn(8) == 0 {
			engagement += 60000 + d.rng.Intn(120000)
		}

		posts = append(posts, post.Post{
			ID:         fmt.Sprintf("sim_%s_%04d", strings.ToLower(string(platform)), d.rng.Intn(10000)),
			Platform:   platform,
			Username:   d.username(platform),
			Content:    fmt.Sprintf(template, subject),
			Timestamp:  now.Add(-time.Duration(d.rng.Intn(48*60)) * time.Minute),
			Engagement: engagement,
			Source:     d.Name(),
		})
	}

	return posts, nil
}

func (d *DemoSource) username(platform post.Platform) string {
	if platform == post.PlatformReddit {
		return fmt.Sprintf("u/user%04d", d.rng.Intn(10000))
	}
	return fmt.Sprintf("@account%04d", d.rng.Intn(10000))
}
