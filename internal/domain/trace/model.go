package trace

import (
	"context"
	"time"

	"misintel/internal/domain/post"
)

// AccountType classifies the kind of account behind a propagation hop
type AccountType string

const (
	AccountAnonymous      AccountType = "anonymous"
	AccountNewsAggregator AccountType = "news_aggregator"
	AccountInfluencer     AccountType = "influencer"
	AccountMedia          AccountType = "media"
	AccountUnknown        AccountType = "unknown"
)

// Hop is one observed or inferred re-share event in a propagation path
type Hop struct {
	SequenceIndex int           `json:"sequence_index"`
	Platform      post.Platform `json:"platform"`
	Account       string        `json:"account"`
	Timestamp     time.Time     `json:"timestamp"`
	Engagement    int           `json:"engagement"`
	Reach         int           `json:"reach"`
	AccountType   AccountType   `json:"account_type"`
}

// OriginCandidate is a possible first poster of the traced content. No
// candidate is authoritative without manual review.
type OriginCandidate struct {
	Account    string        `json:"account"`
	Platform   post.Platform `json:"platform"`
	Confidence float64       `json:"confidence"`
	FirstPost  time.Time     `json:"first_post"`
}

// Node is an account in the influence graph with its computed metrics
type Node struct {
	Account     string        `json:"account"`
	Platform    post.Platform `json:"platform"`
	Reach       int           `json:"reach"`
	Engagement  int           `json:"engagement"`
	Betweenness float64       `json:"betweenness"`
	Influence   float64       `json:"influence"`
}

// Edge is a hand-off between two consecutive hops, weighted by the hours
// elapsed between their posts
type Edge struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	ElapsedHours float64 `json:"elapsed_hours"`
}

// NetworkAnalysis summarizes the influence graph built for one trace
type NetworkAnalysis struct {
	Nodes     []Node  `json:"nodes"`
	Edges     []Edge  `json:"edges"`
	NodeCount int     `json:"node_count"`
	EdgeCount int     `json:"edge_count"`
	Density   float64 `json:"density"`
}

// KeySpreader is an account whose engagement or reach crossed the
// amplification thresholds
type KeySpreader struct {
	Account    string        `json:"account"`
	Platform   post.Platform `json:"platform"`
	Engagement int           `json:"engagement"`
	Reach      int           `json:"reach"`
	RiskLevel  string        `json:"risk_level"`
}

// Action is a recommended follow-up for analysts
type Action struct {
	Priority string        `json:"priority"`
	Action   string        `json:"action"`
	Target   string        `json:"target"`
	Platform post.Platform `json:"platform"`
	Details  string        `json:"details"`
}

// Result is the full outcome of one origin trace. A TraceConfidence of 0.0
// means no usable result.
type Result struct {
	ContentHash        string            `json:"content_hash"`
	SearchContent      string            `json:"search_content"`
	OriginCandidates   []OriginCandidate `json:"origin_candidates"`
	PropagationPath    []Hop             `json:"propagation_path"`
	KeySpreaders       []KeySpreader     `json:"key_spreaders"`
	Network            NetworkAnalysis   `json:"network_analysis"`
	TraceConfidence    float64           `json:"trace_confidence"`
	RecommendedActions []Action          `json:"recommended_actions"`
	TracedAt           time.Time         `json:"traced_at"`
}

// Tracer builds and analyzes a propagation trace for one content item.
// Each call is independent; no graph state survives between calls.
type Tracer interface {
	Trace(ctx context.Context, content string, suspectAccounts []string) (Result, error)
}
