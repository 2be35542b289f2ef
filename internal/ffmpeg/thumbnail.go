package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/manifestlabs/manifest/pkg/util"
)

// ThumbnailOptions configures still-frame capture
type ThumbnailOptions struct {
	Timestamp time.Duration
	Quality   int // JPEG quality on a 0-100 scale, default 85
}

// GenerateThumbnail captures a single frame as a compressed JPEG
func (e *Executor) GenerateThumbnail(ctx context.Context, input, output string, opts ThumbnailOptions) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = 85
	}

	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Dur("timestamp", opts.Timestamp).
		Int("quality", quality).
		Msg("generating thumbnail")

	args := []string{
		"-ss", util.FormatDuration(opts.Timestamp),
		"-i", input,
		"-vframes", "1",
		"-q:v", fmt.Sprintf("%d", jpegQScale(quality)),
		output,
	}

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("thumbnail generation")
		},
	}

	return e.Run(ctx, runOpts)
}

// jpegQScale maps a 0-100 quality setting onto ffmpeg's inverted 2-31
// qscale range (lower qscale = better quality).
func jpegQScale(quality int) int {
	if quality > 100 {
		quality = 100
	}
	if quality < 0 {
		quality = 0
	}
	q := (100 - quality) * 31 / 100
	if q < 2 {
		q = 2
	}
	return q
}
