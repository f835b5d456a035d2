// internal/service/viral/tracker.go

package viral

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"misintel/internal/domain/post"
	"misintel/internal/domain/viral"
)

// TrackerConfig contains configuration for the viral tracker
type TrackerConfig struct {
	// ViralThreshold is the engagement cutoff; posts must exceed it
	ViralThreshold int

	// SpreadRate scales the velocity measure
	SpreadRate float64

	// Clock overrides the time source, used by tests
	Clock func() time.Time
}

// DefaultTrackerConfig returns the default tracker configuration
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		ViralThreshold: 10000,
		SpreadRate:     1.25,
	}
}

// Tracker filters posts for viral amplification. It is pure: no state is
// shared across calls beyond the configured thresholds.
type Tracker struct {
	config TrackerConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates a new viral tracker
func NewTracker(config TrackerConfig, logger zerolog.Logger) *Tracker {
	if config.ViralThreshold <= 0 {
		config.ViralThreshold = 10000
	}
	if config.SpreadRate <= 0 {
		config.SpreadRate = 1.25
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		config: config,
		logger: logger.With().Str("component", "viral").Logger(),
		now:    now,
	}
}

// FilterViral returns a record for each post whose engagement exceeds the
// viral threshold, sorted by viral score descending. Ties keep input order.
func (t *Tracker) FilterViral(ctx context.Context, posts []post.Post) []viral.Record {
	records := []viral.Record{}

	for _, p := range posts {
		// Score off the original timestamp: a post without one gets no
		// recency boost, even though the record carries a defaulted time.
		observedAt := p.Timestamp
		p = p.Normalized()
		if p.Engagement <= t.config.ViralThreshold {
			continue
		}

		records = append(records, viral.Record{
			PostID:     p.ID,
			Platform:   p.Platform,
			Engagement: p.Engagement,
			ViralScore: t.viralScore(observedAt, p.Engagement),
			Velocity:   t.velocity(p.Engagement),
			Timestamp:  p.Timestamp,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ViralScore > records[j].ViralScore
	})

	if len(records) > 0 {
		t.logger.Debug().Int("viral", len(records)).Int("scanned", len(posts)).Msg("viral filter complete")
	}
	return records
}

// viralScore combines an engagement base with a recency boost that decays
// to zero over 24 hours. A zero timestamp earns no boost.
func (t *Tracker) viralScore(timestamp time.Time, engagement int) float64 {
	base := math.Min(float64(engagement)/100000, 1.0)

	boost := 0.0
	if !timestamp.IsZero() {
		hoursAgo := t.now().Sub(timestamp).Hours()
		boost = math.Max(0, 1-hoursAgo/24)
	}

	return math.Min(base+0.2*boost, 1.0)
}

// velocity is a deterministic spread measure, monotonic in engagement
func (t *Tracker) velocity(engagement int) float64 {
	return t.config.SpreadRate * float64(engagement) / 10000
}
