package pipeline

import (
	"context"

	"github.com/manifestlabs/manifest/internal/clips"
	"github.com/manifestlabs/manifest/internal/ffmpeg"
	"github.com/manifestlabs/manifest/internal/segment"
	"github.com/manifestlabs/manifest/internal/viral"
)

// Settings configures a pipeline run
type Settings struct {
	Transcribe    bool    `json:"transcribe"`
	DetectScenes  bool    `json:"detectScenes"`
	AnalyzeViral  bool    `json:"analyzeViral"`
	GenerateClips bool    `json:"generateClips"`
	NumClips      int     `json:"numClips"`
	ClipDuration  float64 `json:"clipDuration"`
	Platform      string  `json:"platform"`
	ThumbQuality  int     `json:"thumbQuality,omitempty"`
}

// DefaultSettings returns the recognized option defaults
func DefaultSettings() Settings {
	return Settings{
		Transcribe:    true,
		DetectScenes:  true,
		AnalyzeViral:  true,
		GenerateClips: true,
		NumClips:      5,
		ClipDuration:  30,
		Platform:      string(clips.PlatformYouTubeShort),
		ThumbQuality:  85,
	}
}

// AnalysisResult is the aggregate output of a run. A run always returns
// a complete, schema-valid result; optional fields degrade to empty.
type AnalysisResult struct {
	Transcript        string          `json:"transcript,omitempty"`
	Keywords          []string        `json:"keywords"`
	ViralScore        float64         `json:"viral_score"`
	SuggestedTitles   []string        `json:"suggested_titles"`
	SuggestedHashtags []string        `json:"suggested_hashtags"`
	Scenes            []segment.Scene `json:"scenes"`
	Clips             []clips.Clip    `json:"clips"`
	Duration          float64         `json:"duration"`
}

// Stage names a pipeline state; runs move linearly with optional skips
type Stage string

const (
	StageProbing        Stage = "probing"
	StageTranscribing   Stage = "transcribing"
	StageSceneDetecting Stage = "scene_detecting"
	StageScoring        Stage = "scoring"
	StageClipGenerating Stage = "clip_generating"
	StageDone           Stage = "done"
)

// Prober extracts asset facts (duration, frame rate, resolution)
type Prober interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// SceneSegmenter partitions an asset's timeline into scenes
type SceneSegmenter interface {
	Segment(ctx context.Context, info *ffmpeg.VideoInfo) ([]segment.Scene, error)
}

// ViralScorer rates an asset and suggests titles and hashtags
type ViralScorer interface {
	Score(ctx context.Context, info *ffmpeg.VideoInfo, transcript string) viral.Analysis
}

// ClipSynthesizer extracts platform-formatted clips from scenes
type ClipSynthesizer interface {
	Synthesize(ctx context.Context, input string, scenes []segment.Scene, opts clips.Options) ([]clips.Clip, error)
}
