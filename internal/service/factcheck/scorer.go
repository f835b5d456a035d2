// internal/service/factcheck/scorer.go

package factcheck

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"misintel/internal/domain/analysis"
)

// Fixed term sets for the pattern sub-score
var (
	suspiciousTerms = []string{"breaking", "exclusive", "leaked", "allegedly", "unconfirmed", "reportedly", "scandal"}
	credibleTerms   = []string{"according to", "confirmed", "verified", "research", "study shows"}

	sensationalTerms = []string{"breaking", "exclusive", "leaked"}
	hedgingTerms     = []string{"allegedly", "reportedly"}
)

// Sub-score weights when the full pipeline runs. They sum to 1.0.
const (
	patternWeight      = 0.3
	mlWeight           = 0.5
	verificationWeight = 0.2
)

// placeholderContent substitutes for missing input so scoring never fails
const placeholderContent = "No content provided"

// Scorer is the rule-based content risk scorer. ML and verification
// providers are optional: without an ML provider the scorer runs in
// pattern-only mode, and a missing verification provider is treated as
// a not-found lookup.
type Scorer struct {
	ml       analysis.MLProvider
	verifier analysis.VerificationProvider
	logger   zerolog.Logger
	now      func() time.Time
}

// NewScorer creates a new content risk scorer
func NewScorer(ml analysis.MLProvider, verifier analysis.VerificationProvider, logger zerolog.Logger) *Scorer {
	return &Scorer{
		ml:       ml,
		verifier: verifier,
		logger:   logger.With().Str("component", "factcheck").Logger(),
		now:      time.Now,
	}
}

// Score analyzes text and returns a content analysis. It never fails: on
// any internal error it returns the system-fallback analysis instead.
func (s *Scorer) Score(ctx context.Context, text string) (result analysis.ContentAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("scorer recovered, returning fallback analysis")
			result = s.fallbackAnalysis()
		}
	}()

	if strings.TrimSpace(text) == "" {
		text = placeholderContent
	}

	patternScore := contentPatternScore(text)

	breakdown := analysis.Breakdown{
		ContentPatterns: patternScore,
		MLPrediction:    0.5,
		Verification:    analysis.Verification{},
		Mode:            analysis.ModePatternOnly,
	}

	probability := patternScore
	fullPipeline := s.ml != nil

	if fullPipeline {
		mlScore := s.mlScore(ctx, text)
		verification := s.verify(ctx, text)

		breakdown.MLPrediction = mlScore
		breakdown.Verification = verification
		breakdown.Mode = analysis.ModeFullPipeline
		breakdown.PatternWeight = patternWeight
		breakdown.MLWeight = mlWeight
		breakdown.VerificationWeight = verificationWeight

		probability = clamp01(patternWeight*patternScore + mlWeight*mlScore + verificationWeight*verificationScore(verification))
	}

	confidence := math.Min(probability*1.1, 1.0)
	if fullPipeline {
		confidence = math.Min(probability*1.2, 1.0)
	}

	return analysis.ContentAnalysis{
		MisinformationProbability: probability,
		Verdict:                   verdict(probability, breakdown.Mode),
		Confidence:                confidence,
		Flags:                     warningFlags(text),
		Analysis:                  breakdown,
		Timestamp:                 s.now(),
	}
}

// mlScore queries the ML provider, falling back to neutral when it errors
func (s *Scorer) mlScore(ctx context.Context, text string) float64 {
	score, err := s.ml.ScoreText(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("ml provider unavailable, using neutral score")
		return 0.5
	}
	return clamp01(score)
}

// verify queries the verification provider, treating a missing provider
// and lookup errors as not-found
func (s *Scorer) verify(ctx context.Context, text string) analysis.Verification {
	if s.verifier == nil {
		return analysis.Verification{}
	}
	v, err := s.verifier.Verify(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("verification provider unavailable, treating as not found")
		return analysis.Verification{}
	}
	return v
}

func (s *Scorer) fallbackAnalysis() analysis.ContentAnalysis {
	return analysis.ContentAnalysis{
		MisinformationProbability: 0.5,
		Verdict:                   "Medium Risk - System Fallback",
		Confidence:                0.5,
		Flags:                     []analysis.Flag{},
		Analysis: analysis.Breakdown{
			ContentPatterns: 0.5,
			MLPrediction:    0.5,
			Mode:            analysis.ModePatternOnly,
		},
		Fallback:  true,
		Timestamp: s.now(),
	}
}

// contentPatternScore computes the rule-based sub-score: suspicious-term
// density per 10 words minus credible-term density, on a 0.4 baseline,
// clamped to [0,1].
func contentPatternScore(text string) float64 {
	lower := strings.ToLower(text)

	var suspicious, credible int
	for _, term := range suspiciousTerms {
		suspicious += strings.Count(lower, term)
	}
	for _, term := range credibleTerms {
		credible += strings.Count(lower, term)
	}

	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}

	raw := float64(suspicious-credible)/(float64(words)/10) + 0.4
	return clamp01(raw)
}

// verificationScore maps a fact-check lookup onto [0,1]: not found is
// neutral, a credible match lowers risk, a debunked match raises it
func verificationScore(v analysis.Verification) float64 {
	switch {
	case !v.Found:
		return 0.5
	case v.Credible:
		return 0.1
	default:
		return 0.9
	}
}

// verdict maps a probability onto the threshold table for the given mode.
// The full pipeline uses the five-label table; pattern-only mode uses the
// rule-based 0.7/0.5/0.3 cut points.
func verdict(p float64, mode analysis.Mode) string {
	if mode == analysis.ModeFullPipeline {
		switch {
		case p >= 0.8:
			return "High Risk - Likely Misinformation"
		case p >= 0.6:
			return "Medium-High Risk - Needs Verification"
		case p >= 0.4:
			return "Medium Risk - Uncertain"
		case p >= 0.2:
			return "Low Risk - Likely Accurate"
		default:
			return "Verified - Highly Credible"
		}
	}

	switch {
	case p >= 0.7:
		return "High Risk - Likely Misinformation"
	case p >= 0.5:
		return "Medium Risk - Needs Verification"
	case p >= 0.3:
		return "Low Risk - Likely Accurate"
	default:
		return "Verified - Highly Credible"
	}
}

// warningFlags runs the independent boolean checks; all may fire together
func warningFlags(text string) []analysis.Flag {
	flags := []analysis.Flag{}
	lower := strings.ToLower(text)

	for _, term := range sensationalTerms {
		if strings.Contains(lower, term) {
			flags = append(flags, analysis.FlagSensational)
			break
		}
	}

	for _, term := range hedgingTerms {
		if strings.Contains(lower, term) {
			flags = append(flags, analysis.FlagUnverified)
			break
		}
	}

	if strings.Count(text, "!") > 3 {
		flags = append(flags, analysis.FlagExcessivePunc)
	}

	if excessiveCaps(text) {
		flags = append(flags, analysis.FlagExcessiveCaps)
	}

	return flags
}

// excessiveCaps fires when uppercase letters exceed 30% of all characters,
// or the text contains at least two all-caps words of length two or more
func excessiveCaps(text string) bool {
	var upper int
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	total := len([]rune(text))
	if total > 0 && float64(upper) > float64(total)*0.3 {
		return true
	}

	var capsWords int
	for _, word := range strings.Fields(text) {
		trimmed := strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if len([]rune(trimmed)) < 2 {
			continue
		}
		allUpper := true
		for _, r := range trimmed {
			if !unicode.IsUpper(r) {
				allUpper = false
				break
			}
		}
		if allUpper {
			capsWords++
		}
	}
	return capsWords >= 2
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
