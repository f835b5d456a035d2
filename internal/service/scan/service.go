// internal/service/scan/service.go

package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"misintel/internal/domain/analysis"
	"misintel/internal/domain/post"
	"misintel/internal/domain/viral"
	"misintel/internal/service/monitor"
)

// ScannedPost is a collected post with its risk analysis attached
type ScannedPost struct {
	post.Post
	MisinformationScore float64         `json:"misinformation_score"`
	Verdict             string          `json:"verdict"`
	Flags               []analysis.Flag `json:"flags"`
}

// Summary aggregates a scan's risk distribution
type Summary struct {
	HighRisk        int `json:"high_risk"`
	MediumRisk      int `json:"medium_risk"`
	LowRisk         int `json:"low_risk"`
	TotalPosts      int `json:"total_posts"`
	TotalEngagement int `json:"total_engagement"`
}

// Result is one completed scan, posts sorted by risk descending
type Result struct {
	ID            string         `json:"id"`
	Query         string         `json:"query"`
	MinEngagement int            `json:"min_engagement"`
	Posts         []ScannedPost  `json:"posts"`
	ViralRecords  []viral.Record `json:"viral_records"`
	Summary       Summary        `json:"summary"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   time.Time      `json:"completed_at"`
}

// Store defines persistence for scan results
type Store interface {
	SaveScan(ctx context.Context, result Result) error
	GetScan(ctx context.Context, id string) (*Result, error)
	ListScans(ctx context.Context, limit int) ([]Result, error)
}

// ServiceConfig contains configuration for the scan service
type ServiceConfig struct {
	// EventsTopic is the NATS subject prefix for alert events
	EventsTopic string

	// HighRiskThreshold marks a scored post as high risk
	HighRiskThreshold float64

	// MediumRiskThreshold marks a scored post as medium risk
	MediumRiskThreshold float64
}

// Service runs the scan pipeline: collect posts about a query, score each
// one, extract viral records, persist the result and publish alerts.
// Store and event bus are optional; the pipeline runs without either.
type Service struct {
	monitor  *monitor.Monitor
	scorer   analysis.Scorer
	tracker  viral.Tracker
	store    Store
	eventBus *nats.Conn
	config   ServiceConfig
	logger   zerolog.Logger
}

// NewService creates a new scan service
func NewService(
	m *monitor.Monitor,
	scorer analysis.Scorer,
	tracker viral.Tracker,
	store Store,
	eventBus *nats.Conn,
	config ServiceConfig,
	logger zerolog.Logger,
) *Service {
	if config.EventsTopic == "" {
		config.EventsTopic = "alerts"
	}
	if config.HighRiskThreshold <= 0 {
		config.HighRiskThreshold = 0.7
	}
	if config.MediumRiskThreshold <= 0 {
		config.MediumRiskThreshold = 0.5
	}
	return &Service{
		monitor:  m,
		scorer:   scorer,
		tracker:  tracker,
		store:    store,
		eventBus: eventBus,
		config:   config,
		logger:   logger.With().Str("component", "scan").Logger(),
	}
}

// Run executes one scan. An empty collection yields an empty result, not
// an error.
func (s *Service) Run(ctx context.Context, query string, maxPosts, minEngagement int) (Result, error) {
	started := time.Now()

	collected := s.monitor.CollectPosts(ctx, query, maxPosts)

	filtered := make([]post.Post, 0, len(collected))
	for _, p := range collected {
		if p.Engagement >= minEngagement {
			filtered = append(filtered, p)
		}
	}

	// Posts are scored in parallel; the scorer holds no cross-post state
	scanned := make([]ScannedPost, len(filtered))
	var wg sync.WaitGroup
	for i, p := range filtered {
		wg.Add(1)
		go func(i int, p post.Post) {
			defer wg.Done()
			a := s.scorer.Score(ctx, p.Content)
			scanned[i] = ScannedPost{
				Post:                p,
				MisinformationScore: a.MisinformationProbability,
				Verdict:             a.Verdict,
				Flags:               a.Flags,
			}
		}(i, p)
	}
	wg.Wait()

	sort.SliceStable(scanned, func(i, j int) bool {
		return scanned[i].MisinformationScore > scanned[j].MisinformationScore
	})

	result := Result{
		ID:            uuid.New().String(),
		Query:         query,
		MinEngagement: minEngagement,
		Posts:         scanned,
		ViralRecords:  s.tracker.FilterViral(ctx, filtered),
		Summary:       summarize(scanned, s.config.HighRiskThreshold, s.config.MediumRiskThreshold),
		StartedAt:     started,
		CompletedAt:   time.Now(),
	}

	if s.store != nil {
		if err := s.store.SaveScan(ctx, result); err != nil {
			s.logger.Warn().Err(err).Str("scan_id", result.ID).Msg("failed to persist scan")
		}
	}

	s.publishAlerts(result)

	s.logger.Info().
		Str("scan_id", result.ID).
		Str("query", query).
		Int("posts", len(scanned)).
		Int("viral", len(result.ViralRecords)).
		Int("high_risk", result.Summary.HighRisk).
		Msg("scan complete")

	return result, nil
}

// GetScan returns a stored scan by ID
func (s *Service) GetScan(ctx context.Context, id string) (*Result, error) {
	if s.store == nil {
		return nil, fmt.Errorf("scan storage not configured")
	}
	return s.store.GetScan(ctx, id)
}

// ListScans returns the most recent stored scans
func (s *Service) ListScans(ctx context.Context, limit int) ([]Result, error) {
	if s.store == nil {
		return nil, fmt.Errorf("scan storage not configured")
	}
	return s.store.ListScans(ctx, limit)
}

func summarize(posts []ScannedPost, highThreshold, mediumThreshold float64) Summary {
	summary := Summary{TotalPosts: len(posts)}
	for _, p := range posts {
		switch {
		case p.MisinformationScore >= highThreshold:
			summary.HighRisk++
		case p.MisinformationScore >= mediumThreshold:
			summary.MediumRisk++
		default:
			summary.LowRisk++
		}
		summary.TotalEngagement += p.Engagement
	}
	return summary
}

// publishAlerts emits one event per high-risk post and per viral record
func (s *Service) publishAlerts(result Result) {
	if s.eventBus == nil {
		return
	}

	for _, p := range result.Posts {
		if p.MisinformationScore < s.config.HighRiskThreshold {
			continue
		}
		data, err := json.Marshal(p)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to encode high-risk alert")
			continue
		}
		subject := fmt.Sprintf("%s.highrisk", s.config.EventsTopic)
		if err := s.eventBus.Publish(subject, data); err != nil {
			s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish high-risk alert")
		}
	}

	for _, r := range result.ViralRecords {
		data, err := json.Marshal(r)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to encode viral alert")
			continue
		}
		subject := fmt.Sprintf("%s.viral", s.config.EventsTopic)
		if err := s.eventBus.Publish(subject, data); err != nil {
			s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish viral alert")
		}
	}
}
