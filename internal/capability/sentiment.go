package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// CommandClassifier runs an external sentiment command. The command
// reads text on stdin and prints a single JSON object of the form
// {"label": "POSITIVE", "score": 0.98} on stdout. Like the whisper
// adapter, invocations are serialized: the backing model is shared
// process-wide state.
type CommandClassifier struct {
	logger  zerolog.Logger
	command []string
	mu      sync.Mutex
}

// NewCommandClassifier creates a classifier from an argv slice
func NewCommandClassifier(logger zerolog.Logger, command []string) (*CommandClassifier, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("sentiment command is required")
	}
	if _, err := exec.LookPath(command[0]); err != nil {
		return nil, fmt.Errorf("sentiment command not found: %w", err)
	}

	return &CommandClassifier{
		logger:  logger.With().Str("component", "sentiment").Logger(),
		command: command,
	}, nil
}

// Classify runs the external command over the given text
func (cc *CommandClassifier) Classify(ctx context.Context, text string) (Sentiment, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cmd := exec.CommandContext(ctx, cc.command[0], cc.command[1:]...)
	cmd.Stdin = strings.NewReader(text)

	output, err := cmd.Output()
	if err != nil {
		return Sentiment{}, fmt.Errorf("sentiment classification failed: %w", err)
	}

	var result Sentiment
	if err := json.Unmarshal(output, &result); err != nil {
		return Sentiment{}, fmt.Errorf("failed to parse sentiment output: %w", err)
	}

	cc.logger.Debug().
		Str("label", result.Label).
		Float64("confidence", result.Confidence).
		Msg("classified text")

	return result, nil
}
