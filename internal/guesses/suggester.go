package guesses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pinpoint/internal/logging"
	"pinpoint/internal/puzzle"
	"pinpoint/internal/services/llm"
)

// Completer is the subset of the LLM client the suggester needs.
type Completer interface {
	Configured() bool
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Suggestion is the outcome of one decoy request. OK is false when no decoys
// are available; Decoys is then empty.
type Suggestion struct {
	Decoys []string
	OK     bool
}

// None is the empty suggestion.
func None() Suggestion { return Suggestion{} }

// Suggester produces decoy guesses for a puzzle.
type Suggester struct {
	client Completer
	logger *slog.Logger
}

// New builds a suggester over client. A nil client always yields None.
func New(client Completer, logger *slog.Logger) *Suggester {
	return &Suggester{client: client, logger: logging.NewComponentLogger(logger, "guesses")}
}

// Suggest requests decoys for task. The returned error explains why the
// suggestion is None; it is informational and never fatal to a run.
func (s *Suggester) Suggest(ctx context.Context, task puzzle.Task) (Suggestion, error) {
	if s == nil || s.client == nil || !s.client.Configured() {
		return None(), fmt.Errorf("guess suggestion skipped: %w", llm.ErrMissingAPIKey)
	}
	if !task.Valid() {
		return None(), errors.New("guess suggestion skipped: task has no answer")
	}

	content, err := s.client.CompleteJSON(ctx, SystemPrompt, UserPrompt(task.Clues, task.Answer))
	if err != nil {
		return None(), fmt.Errorf("guess suggestion request: %w", err)
	}

	candidates, err := parseCandidates(content)
	if err != nil {
		return None(), fmt.Errorf("guess suggestion parse: %w", err)
	}

	decoys := puzzle.FilterDecoys(candidates, task.Answer)
	if len(decoys) == 0 {
		return None(), errors.New("guess suggestion returned no usable decoys")
	}
	s.logger.Debug("decoys suggested", logging.Int("count", len(decoys)), logging.Int("raw_count", len(candidates)))
	return Suggestion{Decoys: decoys, OK: true}, nil
}

// parseCandidates accepts either a bare JSON array of strings or an object with
// a "guesses" array.
func parseCandidates(content string) ([]string, error) {
	trimmed := strings.TrimSpace(content)
	var list []string
	if err := llm.DecodeLLMJSON(trimmed, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Guesses []string `json:"guesses"`
	}
	if err := llm.DecodeLLMJSON(trimmed, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Guesses, nil
}
