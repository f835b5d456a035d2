// internal/service/trace/tracer.go

package trace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"misintel/internal/domain/post"
	"misintel/internal/domain/trace"
)

// Amplification thresholds for key spreaders
const (
	spreaderEngagementThreshold = 10000
	spreaderReachThreshold      = 100000
	highRiskReachThreshold      = 500000
)

var hopPlatforms = []post.Platform{
	post.PlatformTwitter,
	post.PlatformReddit,
	post.PlatformFacebook,
	post.PlatformInstagram,
	post.PlatformYouTube,
	post.PlatformTikTok,
}

// TracerConfig contains configuration for the origin tracer
type TracerConfig struct {
	// Rand is the randomness source used when synthesizing candidates and
	// hops without live data. A fixed seed reproduces identical traces.
	Rand *rand.Rand

	// Clock overrides the time source, used by tests
	Clock func() time.Time
}

// Tracer builds propagation traces. Each call builds a private graph; no
// state beyond the seeded randomness source survives between calls.
type Tracer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
	logger zerolog.Logger
}

// NewTracer creates a new origin tracer
func NewTracer(config TracerConfig, logger zerolog.Logger) *Tracer {
	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}
	return &Tracer{
		rng:    rng,
		now:    now,
		logger: logger.With().Str("component", "trace").Logger(),
	}
}

// Trace analyzes how the content propagated: origin candidates, the
// propagation path, the influence graph with its metrics, key spreaders,
// an overall trace confidence and recommended actions.
func (t *Tracer) Trace(ctx context.Context, content string, suspectAccounts []string) (trace.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := trace.Result{
		ContentHash:        contentHash(content),
		SearchContent:      content,
		OriginCandidates:   []trace.OriginCandidate{},
		PropagationPath:    []trace.Hop{},
		KeySpreaders:       []trace.KeySpreader{},
		Network:            emptyNetwork(),
		RecommendedActions: []trace.Action{},
		TracedAt:           t.now(),
	}

	if strings.TrimSpace(content) == "" {
		// Nothing to trace; confidence 0.0 marks the result unusable
		return result, nil
	}

	result.OriginCandidates = t.originCandidates(suspectAccounts)
	result.PropagationPath = t.propagationPath(result.OriginCandidates[0])
	result.Network = analyzeNetwork(result.PropagationPath)
	result.KeySpreaders = keySpreaders(result.PropagationPath)
	result.TraceConfidence = traceConfidence(result.OriginCandidates, result.PropagationPath)
	result.RecommendedActions = recommendedActions(result.OriginCandidates, result.KeySpreaders)

	t.logger.Debug().
		Str("content_hash", result.ContentHash).
		Int("hops", len(result.PropagationPath)).
		Float64("confidence", result.TraceConfidence).
		Msg("trace complete")

	return result, nil
}

// contentHash returns the stable trace identifier for a content string
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:12]
}

// originCandidates builds the ranked candidate list. Without live data a
// baseline simulated candidate is always present; each suspect account
// contributes one candidate with a bounded random confidence.
func (t *Tracer) originCandidates(suspectAccounts []string) []trace.OriginCandidate {
	now := t.now()

	candidates := []trace.OriginCandidate{
		{
			Account:    "@unknown_origin",
			Platform:   post.PlatformTwitter,
			Confidence: 0.7,
			FirstPost:  now.Add(-48 * time.Hour),
		},
	}

	for _, account := range suspectAccounts {
		account = strings.TrimSpace(account)
		if account == "" {
			continue
		}
		if !strings.HasPrefix(account, "@") && !strings.HasPrefix(account, "u/") {
			account = "@" + account
		}

		candidates = append(candidates, trace.OriginCandidate{
			Account:    account,
			Platform:   hopPlatforms[t.rng.Intn(len(hopPlatforms))],
			Confidence: 0.4 + t.rng.Float64()*0.5,
			FirstPost:  now.Add(-time.Duration(24+t.rng.Intn(48)) * time.Hour),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// propagationPath synthesizes the hop sequence from the top origin
// candidate outward. Hop 0 is the putative origin; sequence indices are
// strictly increasing and timestamps non-decreasing.
func (t *Tracer) propagationPath(origin trace.OriginCandidate) []trace.Hop {
	hopCount := 4 + t.rng.Intn(3)

	engagement := 500 + t.rng.Intn(1500)
	timestamp := origin.FirstPost

	path := []trace.Hop{
		{
			SequenceIndex: 0,
			Platform:      origin.Platform,
			Account:       origin.Account,
			Timestamp:     timestamp,
			Engagement:    engagement,
			Reach:         engagement * (10 + t.rng.Intn(40)),
			AccountType:   trace.AccountAnonymous,
		},
	}

	for i := 1; i < hopCount; i++ {
		timestamp = timestamp.Add(time.Duration(30+t.rng.Intn(330)) * time.Minute)
		engagement = int(float64(engagement) * (1.2 + t.rng.Float64()*1.8))

		accountType := t.hopAccountType()
		path = append(path, trace.Hop{
			SequenceIndex: i,
			Platform:      hopPlatforms[t.rng.Intn(len(hopPlatforms))],
			Account:       t.hopAccount(accountType, i),
			Timestamp:     timestamp,
			Engagement:    engagement,
			Reach:         engagement * (5 + t.rng.Intn(25)),
			AccountType:   accountType,
		})
	}

	return path
}

func (t *Tracer) hopAccountType() trace.AccountType {
	switch t.rng.Intn(4) {
	case 0:
		return trace.AccountNewsAggregator
	case 1:
		return trace.AccountInfluencer
	case 2:
		return trace.AccountMedia
	default:
		return trace.AccountAnonymous
	}
}

func (t *Tracer) hopAccount(accountType trace.AccountType, index int) string {
	switch accountType {
	case trace.AccountNewsAggregator:
		return fmt.Sprintf("@newswire_%02d", t.rng.Intn(100))
	case trace.AccountInfluencer:
		return fmt.Sprintf("@influencer_%02d", t.rng.Intn(100))
	case trace.AccountMedia:
		return fmt.Sprintf("@media_%02d", t.rng.Intn(100))
	default:
		return fmt.Sprintf("@user_%04d", t.rng.Intn(10000))
	}
}

// keySpreaders selects hops whose amplification crosses the thresholds,
// sorted by reach descending
func keySpreaders(path []trace.Hop) []trace.KeySpreader {
	spreaders := []trace.KeySpreader{}
	for _, hop := range path {
		if hop.Engagement <= spreaderEngagementThreshold && hop.Reach <= spreaderReachThreshold {
			continue
		}

		risk := "medium"
		if hop.Reach > highRiskReachThreshold {
			risk = "high"
		}

		spreaders = append(spreaders, trace.KeySpreader{
			Account:    hop.Account,
			Platform:   hop.Platform,
			Engagement: hop.Engagement,
			Reach:      hop.Reach,
			RiskLevel:  risk,
		})
	}

	sort.SliceStable(spreaders, func(i, j int) bool {
		return spreaders[i].Reach > spreaders[j].Reach
	})
	return spreaders
}

// traceConfidence combines origin confidence, path depth and temporal
// consistency, rounded to 3 decimal places. Empty candidates or an empty
// path yield exactly 0.0.
func traceConfidence(candidates []trace.OriginCandidate, path []trace.Hop) float64 {
	if len(candidates) == 0 || len(path) == 0 {
		return 0.0
	}

	maxConfidence := 0.0
	for _, c := range candidates {
		if c.Confidence > maxConfidence {
			maxConfidence = c.Confidence
		}
	}

	pathScore := math.Min(float64(len(path))/5, 1.0)

	temporal := 1.0
	for i := 1; i < len(path); i++ {
		if path[i].Timestamp.Before(path[i-1].Timestamp) {
			temporal = 0.5
			break
		}
	}

	confidence := 0.4*maxConfidence + 0.3*pathScore + 0.3*temporal
	return math.Round(confidence*1000) / 1000
}

// recommendedActions derives the analyst action list: at most one origin
// investigation plus up to three spreader monitors
func recommendedActions(candidates []trace.OriginCandidate, spreaders []trace.KeySpreader) []trace.Action {
	actions := []trace.Action{}

	if len(candidates) > 0 && candidates[0].Confidence > 0.8 {
		actions = append(actions, trace.Action{
			Priority: "HIGH",
			Action:   "Investigate Origin",
			Target:   candidates[0].Account,
			Platform: candidates[0].Platform,
			Details:  "High-confidence origin candidate; verify first post and account history",
		})
	}

	count := 0
	for _, s := range spreaders {
		if count >= 3 {
			break
		}
		if s.RiskLevel != "high" {
			continue
		}
		actions = append(actions, trace.Action{
			Priority: "MEDIUM",
			Action:   "Monitor Spreader",
			Target:   s.Account,
			Platform: s.Platform,
			Details:  fmt.Sprintf("Reach %d on %s; continue monitoring for spread patterns", s.Reach, s.Platform),
		})
		count++
	}

	return actions
}
