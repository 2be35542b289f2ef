package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/internal/capability"
	"github.com/manifestlabs/manifest/internal/clips"
	"github.com/manifestlabs/manifest/internal/segment"
	"github.com/manifestlabs/manifest/internal/viral"
)

// Cache keys are namespaced so an external API layer can look results
// up by video id
const cacheKeyPrefix = "video_analysis:"

// DefaultCacheTTL is how long analysis results stay cached
const DefaultCacheTTL = time.Hour

// Deps are the injected collaborators of a pipeline. SpeechToText and
// Cache may be nil; they are normalized to their explicit unavailable
// variants.
type Deps struct {
	Prober       Prober
	Segmenter    SceneSegmenter
	Scorer       ViralScorer
	Synthesizer  ClipSynthesizer
	SpeechToText capability.SpeechToText
	Cache        capability.KeyValueCache
}

// Pipeline sequences probe, transcription, segmentation, scoring and
// clip generation for one video at a time. Distinct runs are
// independent and safe to execute in parallel.
type Pipeline struct {
	logger   zerolog.Logger
	deps     Deps
	cacheTTL time.Duration
}

// New creates a pipeline. Prober, Segmenter, Scorer and Synthesizer are
// required; optional capabilities default to unavailable.
func New(logger zerolog.Logger, deps Deps, cacheTTL time.Duration) (*Pipeline, error) {
	if deps.Prober == nil || deps.Segmenter == nil || deps.Scorer == nil || deps.Synthesizer == nil {
		return nil, fmt.Errorf("prober, segmenter, scorer and synthesizer are required")
	}
	if deps.SpeechToText == nil {
		deps.SpeechToText = capability.UnavailableSpeechToText{}
	}
	if deps.Cache == nil {
		deps.Cache = capability.NopCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		deps:     deps,
		cacheTTL: cacheTTL,
	}, nil
}

// Process runs the full analysis pipeline over one video. Probe failure
// is the only fatal condition; every other stage degrades to its empty
// output with a logged warning. The context is checked before each
// stage transition.
func (p *Pipeline) Process(ctx context.Context, videoID, videoPath string, settings Settings) (*AnalysisResult, error) {
	logger := p.logger.With().Str("video_id", videoID).Logger()
	logger.Info().Str("input", videoPath).Msg("starting analysis pipeline")

	if cached := p.cachedResult(ctx, videoID); cached != nil {
		logger.Info().Msg("returning cached analysis")
		return cached, nil
	}

	// Probing: the only stage whose failure aborts the run
	info, err := p.deps.Prober.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}

	logger.Info().
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Msg("video metadata extracted")

	result := &AnalysisResult{
		Keywords:          []string{},
		SuggestedTitles:   []string{},
		SuggestedHashtags: []string{},
		Scenes:            []segment.Scene{},
		Clips:             []clips.Clip{},
		Duration:          info.Duration.Seconds(),
	}

	if settings.Transcribe {
		if err := p.checkCancel(ctx, StageTranscribing); err != nil {
			return nil, err
		}
		p.transcribe(ctx, logger, videoPath, result)
	}

	if settings.DetectScenes {
		if err := p.checkCancel(ctx, StageSceneDetecting); err != nil {
			return nil, err
		}
		scenes, err := p.deps.Segmenter.Segment(ctx, info)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn().Err(err).Msg("scene detection failed, continuing with no scenes")
		} else {
			result.Scenes = scenes
		}
	}

	if settings.AnalyzeViral {
		if err := p.checkCancel(ctx, StageScoring); err != nil {
			return nil, err
		}
		analysis := p.deps.Scorer.Score(ctx, info, result.Transcript)
		result.ViralScore = analysis.Score
		result.SuggestedTitles = analysis.Titles
		result.SuggestedHashtags = analysis.Hashtags
	}

	if settings.GenerateClips {
		if err := p.checkCancel(ctx, StageClipGenerating); err != nil {
			return nil, err
		}
		produced, err := p.deps.Synthesizer.Synthesize(ctx, videoPath, result.Scenes, clips.Options{
			NumClips:     settings.NumClips,
			ClipDuration: settings.ClipDuration,
			Platform:     clips.ParsePlatform(settings.Platform),
			ThumbQuality: settings.ThumbQuality,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn().Err(err).Msg("clip generation failed, continuing with no clips")
		} else {
			result.Clips = produced
		}
	}

	p.cacheResult(ctx, logger, videoID, result)

	logger.Info().
		Int("scenes", len(result.Scenes)).
		Int("clips", len(result.Clips)).
		Float64("viral_score", result.ViralScore).
		Msg("analysis pipeline complete")

	return result, nil
}

// transcribe fills transcript and keywords; capability absence or
// failure leaves them empty
func (p *Pipeline) transcribe(ctx context.Context, logger zerolog.Logger, videoPath string, result *AnalysisResult) {
	text, err := p.deps.SpeechToText.Transcribe(ctx, videoPath)
	if err != nil {
		if errors.Is(err, capability.ErrUnavailable) {
			logger.Debug().Msg("transcription capability unavailable, skipping")
		} else {
			logger.Warn().Err(err).Msg("transcription failed, continuing without transcript")
		}
		return
	}

	result.Transcript = text
	if keywords := viral.ExtractKeywords(text); keywords != nil {
		result.Keywords = keywords
	}
}

// cachedResult returns a previously stored analysis, or nil. Cache
// errors are ignored.
func (p *Pipeline) cachedResult(ctx context.Context, videoID string) *AnalysisResult {
	data, ok, err := p.deps.Cache.Get(ctx, cacheKeyPrefix+videoID)
	if err != nil || !ok {
		return nil
	}

	var result AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// cacheResult stores the analysis best-effort; write failures never
// fail the run
func (p *Pipeline) cacheResult(ctx context.Context, logger zerolog.Logger, videoID string, result *AnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to encode result for caching")
		return
	}

	if err := p.deps.Cache.SetWithTTL(ctx, cacheKeyPrefix+videoID, data, p.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("cache write failed, ignoring")
	}
}

// checkCancel enforces cooperative cancellation between stages
func (p *Pipeline) checkCancel(ctx context.Context, next Stage) error {
	if err := ctx.Err(); err != nil {
		p.logger.Info().Str("stage", string(next)).Msg("run cancelled before stage")
		return err
	}
	p.logger.Debug().Str("stage", string(next)).Msg("entering stage")
	return nil
}
