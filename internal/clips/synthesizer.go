package clips

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/internal/ffmpeg"
	"github.com/manifestlabs/manifest/internal/segment"
	"github.com/manifestlabs/manifest/pkg/util"
)

// Clip is an extracted, platform-reformatted sub-range of the source.
// Thumbnail is empty when thumbnail generation failed.
type Clip struct {
	Filename   string   `json:"filename"`
	Duration   float64  `json:"duration"`
	Platform   Platform `json:"platform"`
	Published  bool     `json:"published"`
	ViralScore float64  `json:"viral_score"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
}

// Extractor is the encoding surface the synthesizer needs
type Extractor interface {
	ExtractClip(ctx context.Context, input string, opts ffmpeg.ClipOptions) error
	GenerateThumbnail(ctx context.Context, input, output string, opts ffmpeg.ThumbnailOptions) error
}

// Options configures a synthesis run
type Options struct {
	NumClips     int
	ClipDuration float64 // seconds; clips are bounded to this length
	Platform     Platform
	ThumbQuality int
}

// Synthesizer turns selected scenes into platform-formatted clip files
// with thumbnails
type Synthesizer struct {
	logger       zerolog.Logger
	exec         Extractor
	clipsDir     string
	processedDir string
	now          func() time.Time
	runTag       func() string
}

// New creates a synthesizer writing clips and thumbnails into the given
// directories
func New(logger zerolog.Logger, exec Extractor, clipsDir, processedDir string) *Synthesizer {
	return &Synthesizer{
		logger:       logger.With().Str("component", "clip-synthesizer").Logger(),
		exec:         exec,
		clipsDir:     clipsDir,
		processedDir: processedDir,
		now:          time.Now,
		runTag:       func() string { return uuid.New().String()[:8] },
	}
}

// SelectScenes orders scenes by duration descending (longer scenes make
// better clip candidates) and returns the first min(n, len(scenes))
func SelectScenes(scenes []segment.Scene, n int) []segment.Scene {
	selected := make([]segment.Scene, len(scenes))
	copy(selected, scenes)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Duration > selected[j].Duration
	})

	if n < 0 {
		n = 0
	}
	if n > len(selected) {
		n = len(selected)
	}
	return selected[:n]
}

// Synthesize extracts one clip per selected scene. A scene whose
// extraction fails is skipped; the context is checked between clips so
// a long run can be aborted cooperatively.
func (s *Synthesizer) Synthesize(ctx context.Context, input string, scenes []segment.Scene, opts Options) ([]Clip, error) {
	if err := util.EnsureDir(s.clipsDir); err != nil {
		return nil, fmt.Errorf("failed to create clips dir: %w", err)
	}
	if err := util.EnsureDir(s.processedDir); err != nil {
		return nil, fmt.Errorf("failed to create processed dir: %w", err)
	}

	selected := SelectScenes(scenes, opts.NumClips)

	// The timestamp has second granularity; the run tag keeps output
	// names of concurrent runs from colliding
	timestamp := s.now().Format("20060102_150405")
	tag := s.runTag()

	s.logger.Info().
		Int("scenes", len(scenes)).
		Int("selected", len(selected)).
		Str("platform", string(opts.Platform)).
		Msg("synthesizing clips")

	produced := make([]Clip, 0, len(selected))

	for i, scene := range selected {
		if err := ctx.Err(); err != nil {
			return produced, err
		}

		start := scene.Start
		end := scene.End
		if opts.ClipDuration > 0 && end > start+opts.ClipDuration {
			end = start + opts.ClipDuration
		}

		filename := fmt.Sprintf("clip_%s_%s_%d.mp4", timestamp, tag, i+1)
		outputPath := filepath.Join(s.clipsDir, filename)

		err := s.exec.ExtractClip(ctx, input, ffmpeg.ClipOptions{
			Start:  time.Duration(start * float64(time.Second)),
			End:    time.Duration(end * float64(time.Second)),
			Output: outputPath,
			Filter: opts.Platform.Filter(),
		})
		if err != nil {
			if ctx.Err() != nil {
				return produced, ctx.Err()
			}
			s.logger.Warn().Err(err).
				Str("clip", filename).
				Float64("start", start).
				Msg("clip extraction failed, skipping scene")
			continue
		}

		clip := Clip{
			Filename:   filename,
			Duration:   end - start,
			Platform:   opts.Platform,
			Published:  false,
			ViralScore: 0.7 + float64(i)*0.05,
		}

		clip.Thumbnail = s.writeThumbnail(ctx, outputPath, filename, clip.Duration, opts.ThumbQuality)
		produced = append(produced, clip)
	}

	s.logger.Info().Int("clips", len(produced)).Msg("clip synthesis complete")
	return produced, nil
}

// writeThumbnail captures the frame at one third of the clip's duration.
// Failure is recorded as an absent thumbnail, not a failed clip.
func (s *Synthesizer) writeThumbnail(ctx context.Context, clipPath, clipName string, duration float64, quality int) string {
	thumbName := util.ReplaceExt(clipName, "_thumb", ".jpg")
	thumbPath := filepath.Join(s.processedDir, thumbName)

	err := s.exec.GenerateThumbnail(ctx, clipPath, thumbPath, ffmpeg.ThumbnailOptions{
		Timestamp: time.Duration(duration / 3 * float64(time.Second)),
		Quality:   quality,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("clip", clipName).Msg("thumbnail generation failed")
		return ""
	}
	return thumbName
}
