// Package capability defines the optional external collaborators the
// pipeline consumes. Every capability has an explicit unavailable
// variant; absence degrades a pipeline stage, never fails it.
package capability

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates a capability is not present in this process.
// Stages that hit it fall back to their empty output.
var ErrUnavailable = errors.New("capability unavailable")

// LabelPositive is the sentiment label that contributes to scoring
const LabelPositive = "POSITIVE"

// SpeechToText transcribes the audio track of a media file
type SpeechToText interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Sentiment is a classification outcome with confidence in [0,1]
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"score"`
}

// SentimentClassifier classifies a short text span
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (Sentiment, error)
}

// KeyValueCache stores analysis results best-effort. Write failures are
// ignored by callers; Get returns ok=false on miss.
type KeyValueCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// UnavailableSpeechToText is the explicit stand-in for an absent transcriber
type UnavailableSpeechToText struct{}

func (UnavailableSpeechToText) Transcribe(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// UnavailableSentiment is the explicit stand-in for an absent classifier
type UnavailableSentiment struct{}

func (UnavailableSentiment) Classify(context.Context, string) (Sentiment, error) {
	return Sentiment{}, ErrUnavailable
}

// NopCache discards writes and always misses
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopCache) SetWithTTL(context.Context, string, []byte, time.Duration) error { return nil }

func (NopCache) Close() error { return nil }
