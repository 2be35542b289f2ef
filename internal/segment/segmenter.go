package segment

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/internal/config"
	"github.com/manifestlabs/manifest/internal/ffmpeg"
)

// Scene is a contiguous time range of the source video with visually
// stable content, in seconds. Scenes produced by the segmenter are
// ordered, contiguous and gap-free: the first starts at 0 and the last
// ends at the asset's duration.
type Scene struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// FrameSource yields single-channel intensity frames in presentation
// order with their timestamps. Next returns io.EOF at end of stream.
type FrameSource interface {
	Next() ([]byte, float64, error)
	Close() error
}

// Segmenter detects scene cuts by thresholded frame differencing
type Segmenter struct {
	logger         zerolog.Logger
	exec           *ffmpeg.Executor
	threshold      float64
	interval       float64
	fallbackStride int
}

// New creates a segmenter from config
func New(logger zerolog.Logger, exec *ffmpeg.Executor, cfg config.SegmenterConfig) *Segmenter {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 30
	}
	interval := cfg.SampleInterval
	if interval <= 0 {
		interval = 1
	}
	stride := cfg.FallbackStride
	if stride <= 0 {
		stride = 30
	}

	return &Segmenter{
		logger:         logger.With().Str("component", "segmenter").Logger(),
		exec:           exec,
		threshold:      threshold,
		interval:       interval,
		fallbackStride: stride,
	}
}

// Segment partitions the asset's timeline into scenes. One frame is
// sampled per interval; a cut opens a new scene whenever the mean
// absolute intensity difference against the previous sample exceeds the
// threshold. The final scene always closes at the asset's true end.
func (s *Segmenter) Segment(ctx context.Context, info *ffmpeg.VideoInfo) ([]Scene, error) {
	duration := info.Duration.Seconds()

	s.logger.Info().
		Str("input", info.FilePath).
		Float64("duration", duration).
		Float64("threshold", s.threshold).
		Msg("segmenting scenes")

	if duration <= 0 || info.Width <= 0 || info.Height <= 0 {
		// Nothing to sample; the whole asset is one scene
		return []Scene{{Start: 0, End: duration, Duration: duration}}, nil
	}

	stream, err := s.exec.SampleFrames(ctx, info.FilePath, ffmpeg.SampleOptions{
		Width:          info.Width,
		Height:         info.Height,
		FPS:            info.FPS,
		Interval:       s.interval,
		FallbackStride: s.fallbackStride,
	})
	if err != nil {
		return nil, fmt.Errorf("frame sampling failed: %w", err)
	}
	defer stream.Close()

	scenes, err := s.scanScenes(stream, duration)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("scenes", len(scenes)).Msg("scene segmentation complete")
	return scenes, nil
}

// scanScenes walks sampled frames and closes a scene at each detected
// cut. Fewer than two samples yields a single scene spanning the asset.
func (s *Segmenter) scanScenes(src FrameSource, duration float64) ([]Scene, error) {
	var scenes []Scene
	var prev []byte
	sceneStart := 0.0

	for {
		frame, t, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame read failed: %w", err)
		}

		if prev != nil {
			diff := meanAbsDiff(prev, frame)
			if diff > s.threshold && t > sceneStart && t < duration {
				scenes = append(scenes, Scene{
					Start:    sceneStart,
					End:      t,
					Duration: t - sceneStart,
				})
				sceneStart = t
			}
		}
		prev = frame
	}

	// Close the final open scene at the asset's true end so total
	// coverage equals the duration
	scenes = append(scenes, Scene{
		Start:    sceneStart,
		End:      duration,
		Duration: duration - sceneStart,
	})

	return scenes, nil
}

// meanAbsDiff computes the mean absolute intensity difference between
// two frames on a 0-255 scale
func meanAbsDiff(a, b []byte) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var sum int64
	for i := 0; i < n; i++ {
		d := int64(a[i]) - int64(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(n)
}
