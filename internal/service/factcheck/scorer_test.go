package factcheck

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misintel/internal/domain/analysis"
)

type stubML struct {
	score float64
	err   error
}

func (s stubML) ScoreText(ctx context.Context, text string) (float64, error) {
	return s.score, s.err
}

type stubVerifier struct {
	result analysis.Verification
	err    error
}

func (s stubVerifier) Verify(ctx context.Context, text string) (analysis.Verification, error) {
	return s.result, s.err
}

func newTestScorer() *Scorer {
	return NewScorer(nil, nil, zerolog.Nop())
}

func TestScoreProbabilityBounds(t *testing.T) {
	scorer := newTestScorer()

	texts := []string{
		"",
		"plain statement with no loaded terms at all",
		"BREAKING BREAKING BREAKING leaked leaked scandal scandal scandal",
		"according to confirmed verified research study shows study shows",
		strings.Repeat("word ", 500),
		"breaking",
	}

	for _, text := range texts {
		result := scorer.Score(context.Background(), text)
		assert.GreaterOrEqual(t, result.MisinformationProbability, 0.0, "text: %q", text)
		assert.LessOrEqual(t, result.MisinformationProbability, 1.0, "text: %q", text)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}

func TestScoreEmptyText(t *testing.T) {
	scorer := newTestScorer()

	for _, text := range []string{"", "   ", "\n\t"} {
		result := scorer.Score(context.Background(), text)

		assert.Empty(t, result.Flags, "empty input must produce no flags")
		assert.False(t, result.Fallback)
		assert.InDelta(t, 0.4, result.MisinformationProbability, 1e-9, "placeholder text scores at the baseline")
		assert.Equal(t, analysis.ModePatternOnly, result.Analysis.Mode)
	}
}

func TestScoreSuspiciousTermsMonotonic(t *testing.T) {
	scorer := newTestScorer()

	base := "the senator gave a speech about the economy in the capital today"
	loaded := base + " breaking leaked scandal"

	baseResult := scorer.Score(context.Background(), base)
	loadedResult := scorer.Score(context.Background(), loaded)

	assert.Greater(t, loadedResult.Analysis.ContentPatterns, baseResult.Analysis.ContentPatterns)
}

func TestPatternOnlyVerdictTable(t *testing.T) {
	cases := []struct {
		probability float64
		verdict     string
	}{
		{0.71, "High Risk - Likely Misinformation"},
		{0.7, "High Risk - Likely Misinformation"},
		{0.69, "Medium Risk - Needs Verification"},
		{0.5, "Medium Risk - Needs Verification"},
		{0.49, "Low Risk - Likely Accurate"},
		{0.3, "Low Risk - Likely Accurate"},
		{0.29, "Verified - Highly Credible"},
		{0.0, "Verified - Highly Credible"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.verdict, verdict(tc.probability, analysis.ModePatternOnly), "probability %v", tc.probability)
	}
}

func TestFullPipelineVerdictTable(t *testing.T) {
	cases := []struct {
		probability float64
		verdict     string
	}{
		{0.8, "High Risk - Likely Misinformation"},
		{0.79, "Medium-High Risk - Needs Verification"},
		{0.6, "Medium-High Risk - Needs Verification"},
		{0.59, "Medium Risk - Uncertain"},
		{0.4, "Medium Risk - Uncertain"},
		{0.39, "Low Risk - Likely Accurate"},
		{0.2, "Low Risk - Likely Accurate"},
		{0.19, "Verified - Highly Credible"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.verdict, verdict(tc.probability, analysis.ModeFullPipeline), "probability %v", tc.probability)
	}
}

func TestScoreSensationalScenario(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(context.Background(), "BREAKING: Leaked documents allegedly confirm the story")

	assert.Contains(t, result.Flags, analysis.FlagSensational)
	assert.Contains(t, result.Flags, analysis.FlagUnverified)
	assert.Greater(t, result.MisinformationProbability, 0.4)
}

func TestScoreExcessivePunctuation(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(context.Background(), "you will not believe what happened today!!!!")
	assert.Contains(t, result.Flags, analysis.FlagExcessivePunc)

	// Exactly three does not fire
	result = scorer.Score(context.Background(), "really!!! strange")
	assert.NotContains(t, result.Flags, analysis.FlagExcessivePunc)
}

func TestScoreExcessiveCaps(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(context.Background(), "THIS IS ABSOLUTELY OUTRAGEOUS AND EVERYONE SHOULD KNOW")
	assert.Contains(t, result.Flags, analysis.FlagExcessiveCaps)

	// Two all-caps words are enough even below the 30% ratio
	result = scorer.Score(context.Background(), "the documents were SHOCKING and the response was WILD according to people who watched the whole long hearing yesterday")
	assert.Contains(t, result.Flags, analysis.FlagExcessiveCaps)

	result = scorer.Score(context.Background(), "a perfectly calm sentence about the news")
	assert.NotContains(t, result.Flags, analysis.FlagExcessiveCaps)
}

func TestScorePatternOnlyMode(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.Score(context.Background(), "some ordinary content")

	assert.Equal(t, analysis.ModePatternOnly, result.Analysis.Mode)
	assert.InDelta(t, result.MisinformationProbability*1.1, result.Confidence, 1e-9)
}

func TestScoreFullPipeline(t *testing.T) {
	scorer := NewScorer(
		stubML{score: 0.9},
		stubVerifier{result: analysis.Verification{Found: true, Credible: false}},
		zerolog.Nop(),
	)

	text := "a reasonable sentence with nothing notable in it"
	result := scorer.Score(context.Background(), text)

	require.Equal(t, analysis.ModeFullPipeline, result.Analysis.Mode)
	assert.Equal(t, 0.3, result.Analysis.PatternWeight)
	assert.Equal(t, 0.5, result.Analysis.MLWeight)
	assert.Equal(t, 0.2, result.Analysis.VerificationWeight)

	pattern := result.Analysis.ContentPatterns
	expected := 0.3*pattern + 0.5*0.9 + 0.2*0.9
	assert.InDelta(t, expected, result.MisinformationProbability, 1e-9)
	assert.InDelta(t, min(result.MisinformationProbability*1.2, 1.0), result.Confidence, 1e-9)
}

func TestScoreMLWithoutVerifier(t *testing.T) {
	scorer := NewScorer(stubML{score: 0.95}, nil, zerolog.Nop())

	result := scorer.Score(context.Background(), "a reasonable sentence with nothing notable in it")

	require.Equal(t, analysis.ModeFullPipeline, result.Analysis.Mode, "a wired ML provider must not be discarded")
	assert.Equal(t, 0.95, result.Analysis.MLPrediction)
	assert.False(t, result.Analysis.Verification.Found, "missing verifier reads as not found")

	// Not-found verification contributes the neutral 0.5 sub-score
	expected := 0.3*result.Analysis.ContentPatterns + 0.5*0.95 + 0.2*0.5
	assert.InDelta(t, expected, result.MisinformationProbability, 1e-9)
	assert.InDelta(t, min(result.MisinformationProbability*1.2, 1.0), result.Confidence, 1e-9)
}

func TestScoreVerifierWithoutML(t *testing.T) {
	scorer := NewScorer(nil, stubVerifier{result: analysis.Verification{Found: true, Credible: true}}, zerolog.Nop())

	result := scorer.Score(context.Background(), "a reasonable sentence with nothing notable in it")

	assert.Equal(t, analysis.ModePatternOnly, result.Analysis.Mode, "no ML provider means pattern-only scoring")
	assert.False(t, result.Analysis.Verification.Found)
}

func TestScoreProviderErrorsFallBackToNeutral(t *testing.T) {
	scorer := NewScorer(
		stubML{err: errors.New("model offline")},
		stubVerifier{err: errors.New("quota exceeded")},
		zerolog.Nop(),
	)

	result := scorer.Score(context.Background(), "a reasonable sentence with nothing notable in it")

	require.Equal(t, analysis.ModeFullPipeline, result.Analysis.Mode)
	assert.Equal(t, 0.5, result.Analysis.MLPrediction)
	assert.False(t, result.Analysis.Verification.Found)
	assert.False(t, result.Fallback, "degraded providers are not a system fallback")
}

func TestContentPatternScore(t *testing.T) {
	// 2 suspicious, 0 credible, 10 words: (2-0)/(10/10) + 0.4 clamps to 1
	text := "breaking leaked one two three four five six seven eight"
	assert.InDelta(t, 1.0, contentPatternScore(text), 1e-9)

	// Credible terms pull the score below the baseline
	credible := "according to confirmed research one two three four five six"
	assert.Less(t, contentPatternScore(credible), 0.4)
}
