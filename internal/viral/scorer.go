package viral

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/internal/capability"
	"github.com/manifestlabs/manifest/internal/ffmpeg"
)

// Sentiment classification only sees the head of the transcript
const sentimentMaxChars = 512

// Analysis is the scorer's output: a normalized score plus suggestions
type Analysis struct {
	Score    float64  `json:"score"`
	Titles   []string `json:"titles"`
	Hashtags []string `json:"hashtags"`
}

// Scorer combines resolution and frame-rate quality signals with an
// optional sentiment signal into a heuristic viral-potential score
type Scorer struct {
	logger    zerolog.Logger
	sentiment capability.SentimentClassifier
	jitter    JitterPolicy
}

// NewScorer creates a scorer. The classifier may be the explicit
// unavailable variant; its failures contribute 0 points.
func NewScorer(logger zerolog.Logger, sentiment capability.SentimentClassifier, jitter JitterPolicy) *Scorer {
	if sentiment == nil {
		sentiment = capability.UnavailableSentiment{}
	}
	if jitter == nil {
		jitter = NewSeededJitter(1)
	}

	return &Scorer{
		logger:    logger.With().Str("component", "viral-scorer").Logger(),
		sentiment: sentiment,
		jitter:    jitter,
	}
}

// Score rates the asset on a 0-100 point scale, then normalizes to
// [0,1]. Points: resolution (+20 full HD, +10 HD), frame rate (+10 at
// 30fps), positive sentiment (confidence * 30), plus the jitter term.
func (s *Scorer) Score(ctx context.Context, info *ffmpeg.VideoInfo, transcript string) Analysis {
	score := 0.0

	if info.Width >= 1920 && info.Height >= 1080 {
		score += 20
	} else if info.Width >= 1280 && info.Height >= 720 {
		score += 10
	}

	if info.FPS >= 30 {
		score += 10
	}

	titles := DefaultTitles
	hashtags := DefaultHashtags

	if transcript != "" {
		score += s.sentimentPoints(ctx, transcript)
		titles = SuggestTitles(transcript)
		hashtags = SuggestHashtags(ExtractKeywords(transcript))
	}

	score += float64(s.jitter.Jitter())

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	s.logger.Info().
		Float64("score", score/100).
		Bool("has_transcript", transcript != "").
		Msg("viral analysis complete")

	return Analysis{
		Score:    score / 100,
		Titles:   titles,
		Hashtags: hashtags,
	}
}

// sentimentPoints classifies the transcript head; any failure is
// swallowed and contributes nothing
func (s *Scorer) sentimentPoints(ctx context.Context, transcript string) float64 {
	snippet := []rune(transcript)
	if len(snippet) > sentimentMaxChars {
		snippet = snippet[:sentimentMaxChars]
	}

	sent, err := s.sentiment.Classify(ctx, string(snippet))
	if err != nil {
		if !errors.Is(err, capability.ErrUnavailable) {
			s.logger.Warn().Err(err).Msg("sentiment classification failed, contributing 0")
		}
		return 0
	}

	if sent.Label != capability.LabelPositive {
		return 0
	}
	return sent.Confidence * 30
}
