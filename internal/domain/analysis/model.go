package analysis

import (
	"context"
	"time"
)

// Flag is a boolean warning tag attached to a content analysis
type Flag string

const (
	FlagSensational   Flag = "Sensational"
	FlagUnverified    Flag = "Unverified"
	FlagExcessivePunc Flag = "Excessive !"
	FlagExcessiveCaps Flag = "Excessive CAPS"
)

// Mode identifies which scoring pipeline (and therefore which verdict
// threshold table) produced an analysis
type Mode string

const (
	// ModePatternOnly means only the rule-based pattern sub-score was used;
	// verdicts come from the 0.7/0.5/0.3 table
	ModePatternOnly Mode = "pattern_only"

	// ModeFullPipeline means pattern, ML and verification sub-scores were
	// combined; verdicts come from the 0.8/0.6/0.4/0.2 table
	ModeFullPipeline Mode = "full_pipeline"
)

// Verification is the result of an external fact-check lookup
type Verification struct {
	Found    bool `json:"found"`
	Credible bool `json:"credible"`
}

// Breakdown exposes the sub-scores and weights behind a final probability
type Breakdown struct {
	ContentPatterns    float64      `json:"content_patterns"`
	MLPrediction       float64      `json:"ml_prediction"`
	Verification       Verification `json:"verification"`
	Mode               Mode         `json:"mode"`
	PatternWeight      float64      `json:"pattern_weight"`
	MLWeight           float64      `json:"ml_weight"`
	VerificationWeight float64      `json:"verification_weight"`
}

// ContentAnalysis is the immutable result of scoring one piece of content
type ContentAnalysis struct {
	MisinformationProbability float64   `json:"misinformation_probability"`
	Verdict                   string    `json:"verdict"`
	Confidence                float64   `json:"confidence"`
	Flags                     []Flag    `json:"flags"`
	Analysis                  Breakdown `json:"analysis"`
	Fallback                  bool      `json:"fallback"`
	Timestamp                 time.Time `json:"timestamp"`
}

// Scorer turns raw text into a content analysis. Implementations never
// fail: on any internal error they return a fallback analysis instead.
type Scorer interface {
	Score(ctx context.Context, text string) ContentAnalysis
}

// MLProvider is an optional machine-learning classifier. When absent the
// scorer runs in pattern-only mode.
type MLProvider interface {
	// ScoreText returns a misinformation probability in [0,1] for the text
	ScoreText(ctx context.Context, text string) (float64, error)
}

// VerificationProvider is an optional external fact-check source
type VerificationProvider interface {
	// Verify looks the text up against known fact checks
	Verify(ctx context.Context, text string) (Verification, error)
}
