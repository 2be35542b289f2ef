package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// WhisperTranscriber shells out to Python's OpenAI Whisper. The model
// is a process-wide shared resource, so transcriptions are serialized
// behind a mutex rather than duplicated per run.
type WhisperTranscriber struct {
	logger zerolog.Logger
	model  string
	python string
	mu     sync.Mutex
}

// NewWhisperTranscriber creates a transcriber for the given model name
// (tiny, base, small, medium, large). It fails only when no python
// interpreter is on PATH; whisper itself is verified on first use.
func NewWhisperTranscriber(logger zerolog.Logger, model string) (*WhisperTranscriber, error) {
	python, err := exec.LookPath("python3")
	if err != nil {
		python, err = exec.LookPath("python")
		if err != nil {
			return nil, fmt.Errorf("python not found in PATH: %w", err)
		}
	}

	if model == "" {
		model = "base"
	}

	return &WhisperTranscriber{
		logger: logger.With().Str("component", "whisper").Logger(),
		model:  model,
		python: python,
	}, nil
}

// Transcribe runs whisper over the media file and returns the full text
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	wt.logger.Info().Str("input", path).Str("model", wt.model).Msg("transcribing")

	tempDir, err := os.MkdirTemp("", "whisper_output")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve input path: %w", err)
	}

	cmd := exec.CommandContext(ctx, wt.python, "-m", "whisper",
		absPath,
		"--model", wt.model,
		"--output_dir", tempDir,
		"--output_format", "json",
		"--fp16", "False",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	jsonPath := filepath.Join(tempDir, baseName+".json")

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", fmt.Errorf("failed to read whisper output: %w", err)
	}

	var result whisperOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to parse whisper JSON: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	wt.logger.Info().Int("chars", len(text)).Msg("transcription complete")
	return text, nil
}

// whisperOutput matches the whisper JSON output file
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}
