package viral

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/internal/capability"
	"github.com/manifestlabs/manifest/internal/ffmpeg"
)

type fakeClassifier struct {
	sentiment capability.Sentiment
	err       error
	calls     int
	lastText  string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (capability.Sentiment, error) {
	f.calls++
	f.lastText = text
	return f.sentiment, f.err
}

func fullHD() *ffmpeg.VideoInfo {
	return &ffmpeg.VideoInfo{Width: 1920, Height: 1080, FPS: 60}
}

func newTestScorer(classifier capability.SentimentClassifier, jitter JitterPolicy) *Scorer {
	return NewScorer(zerolog.Nop(), classifier, jitter)
}

func TestScoreQualityPoints(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		fps        float64
		wantPoints float64
	}{
		{"full hd 60fps", 1920, 1080, 60, 30},
		{"full hd 24fps", 1920, 1080, 24, 20},
		{"hd 30fps", 1280, 720, 30, 20},
		{"sd 30fps", 640, 480, 30, 10},
		{"sd low fps", 640, 480, 15, 0},
		{"unknown fps", 1920, 1080, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := newTestScorer(nil, FixedJitter(0))
			info := &ffmpeg.VideoInfo{Width: tt.width, Height: tt.height, FPS: tt.fps}

			analysis := scorer.Score(context.Background(), info, "")

			if got := analysis.Score * 100; math.Abs(got-tt.wantPoints) > 1e-9 {
				t.Errorf("points = %f, want %f", got, tt.wantPoints)
			}
		})
	}
}

func TestScoreWithinUnitInterval(t *testing.T) {
	for _, jitter := range []FixedJitter{10, 40, 100} {
		scorer := newTestScorer(&fakeClassifier{
			sentiment: capability.Sentiment{Label: capability.LabelPositive, Confidence: 1},
		}, jitter)

		analysis := scorer.Score(context.Background(), fullHD(), "great stuff")
		if analysis.Score < 0 || analysis.Score > 1 {
			t.Errorf("score %f outside [0,1] with jitter %d", analysis.Score, jitter)
		}
	}
}

func TestScorePositiveSentiment(t *testing.T) {
	classifier := &fakeClassifier{
		sentiment: capability.Sentiment{Label: capability.LabelPositive, Confidence: 0.8},
	}
	scorer := newTestScorer(classifier, FixedJitter(0))

	analysis := scorer.Score(context.Background(), fullHD(), "wonderful launch footage")

	// 20 resolution + 10 fps + 0.8*30 sentiment
	want := (20 + 10 + 24.0) / 100
	if math.Abs(analysis.Score-want) > 1e-9 {
		t.Errorf("score = %f, want %f", analysis.Score, want)
	}
	if classifier.calls != 1 {
		t.Errorf("classifier called %d times, want 1", classifier.calls)
	}
}

func TestScoreNegativeSentimentContributesNothing(t *testing.T) {
	classifier := &fakeClassifier{
		sentiment: capability.Sentiment{Label: "NEGATIVE", Confidence: 0.9},
	}
	scorer := newTestScorer(classifier, FixedJitter(0))

	analysis := scorer.Score(context.Background(), fullHD(), "terrible")

	if math.Abs(analysis.Score-0.30) > 1e-9 {
		t.Errorf("score = %f, want 0.30", analysis.Score)
	}
}

func TestScoreClassifierFailureSwallowed(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("model exploded")}
	scorer := newTestScorer(classifier, FixedJitter(0))

	analysis := scorer.Score(context.Background(), fullHD(), "some transcript")

	if math.Abs(analysis.Score-0.30) > 1e-9 {
		t.Errorf("score = %f, want 0.30", analysis.Score)
	}
}

func TestScoreTruncatesClassifierInput(t *testing.T) {
	classifier := &fakeClassifier{}
	scorer := newTestScorer(classifier, FixedJitter(0))

	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}
	scorer.Score(context.Background(), fullHD(), string(long))

	if len(classifier.lastText) != sentimentMaxChars {
		t.Errorf("classifier saw %d chars, want %d", len(classifier.lastText), sentimentMaxChars)
	}
}

func TestScoreNoTranscriptSkipsClassifierAndUsesDefaults(t *testing.T) {
	classifier := &fakeClassifier{}
	scorer := newTestScorer(classifier, FixedJitter(10))

	analysis := scorer.Score(context.Background(), fullHD(), "")

	if classifier.calls != 0 {
		t.Errorf("classifier called %d times for empty transcript", classifier.calls)
	}
	if !reflect.DeepEqual(analysis.Titles, DefaultTitles) {
		t.Errorf("titles = %v, want defaults", analysis.Titles)
	}
	if !reflect.DeepEqual(analysis.Hashtags, DefaultHashtags) {
		t.Errorf("hashtags = %v, want defaults", analysis.Hashtags)
	}
}

func TestScoreStopWordTranscriptYieldsPlatformTags(t *testing.T) {
	// A transcript that produces no keywords still gets the platform
	// tags; the short defaults are reserved for the no-transcript case
	scorer := newTestScorer(nil, FixedJitter(0))

	analysis := scorer.Score(context.Background(), fullHD(), "go go go the and or")

	want := []string{"#viral", "#trending", "#fyp", "#foryou", "#mustwatch"}
	if !reflect.DeepEqual(analysis.Hashtags, want) {
		t.Errorf("hashtags = %v, want %v", analysis.Hashtags, want)
	}
	if reflect.DeepEqual(analysis.Hashtags, DefaultHashtags) {
		t.Error("no-transcript defaults leaked into keyword-less transcript")
	}
}

func TestScoreDeterministicWithSeededJitter(t *testing.T) {
	run := func() Analysis {
		scorer := newTestScorer(nil, NewSeededJitter(42))
		return scorer.Score(context.Background(), fullHD(), "the same transcript every time")
	}

	first := run()
	second := run()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("seeded runs differ: %+v vs %+v", first, second)
	}
}

func TestSeededJitterBounds(t *testing.T) {
	jitter := NewSeededJitter(7)
	for i := 0; i < 1000; i++ {
		v := jitter.Jitter()
		if v < jitterMin || v > jitterMax {
			t.Fatalf("jitter %d outside [%d,%d]", v, jitterMin, jitterMax)
		}
	}
}
