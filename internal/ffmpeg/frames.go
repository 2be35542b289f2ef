package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// SampleOptions configures grayscale frame sampling
type SampleOptions struct {
	Width          int     // source width in pixels
	Height         int     // source height in pixels
	FPS            float64 // source frame rate, 0 = unknown
	Interval       float64 // seconds between samples, default 1
	FallbackStride int     // frame stride when FPS is unknown, default 30
}

// FrameStream reads single-channel intensity frames from a running
// ffmpeg decode. Frames arrive in presentation order at the sampling
// cadence. Callers must Close the stream to reap the process.
type FrameStream struct {
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	interval float64
	size     int
	index    int
}

// SampleFrames starts an ffmpeg decode that emits one grayscale frame
// per sampling interval as raw bytes (width*height per frame). When the
// source frame rate is unknown a fixed frame stride is used instead of
// a time-based cadence.
func (e *Executor) SampleFrames(ctx context.Context, input string, opts SampleOptions) (*FrameStream, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame geometry %dx%d", opts.Width, opts.Height)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 1
	}

	var filter string
	if opts.FPS > 0 {
		filter = fmt.Sprintf("fps=%g,format=gray", 1/interval)
	} else {
		stride := opts.FallbackStride
		if stride <= 0 {
			stride = 30
		}
		filter = fmt.Sprintf("select=not(mod(n\\,%d)),format=gray", stride)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", input,
		"-vf", filter,
		"-fps_mode", "vfr",
		"-f", "rawvideo",
		"pipe:1",
	}

	e.logger.Debug().
		Str("input", input).
		Str("filter", filter).
		Msg("sampling intensity frames")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			e.logger.Debug().Str("ffmpeg", scanner.Text()).Msg("frame sampling")
		}
	}()

	return &FrameStream{
		cmd:      cmd,
		stdout:   stdout,
		interval: interval,
		size:     opts.Width * opts.Height,
	}, nil
}

// Next returns the next sampled frame and its timestamp in seconds.
// io.EOF signals the end of the stream.
func (fs *FrameStream) Next() ([]byte, float64, error) {
	buf := make([]byte, fs.size)
	if _, err := io.ReadFull(fs.stdout, buf); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, err
	}

	t := float64(fs.index) * fs.interval
	fs.index++
	return buf, t, nil
}

// Close drains the decode and reaps the ffmpeg process
func (fs *FrameStream) Close() error {
	_ = fs.stdout.Close()
	return fs.cmd.Wait()
}
