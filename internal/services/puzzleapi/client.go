package puzzleapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"pinpoint/internal/puzzle"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 1 << 20

// ErrUnavailable marks responses that do not carry a playable puzzle.
var ErrUnavailable = errors.New("puzzle unavailable")

// Client requests today's puzzle.
type Client struct {
	url        string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a client for endpoint with the given request timeout.
func New(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		url:        strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type envelope struct {
	Success bool         `json:"success"`
	Data    *payloadData `json:"data"`
}

type payloadData struct {
	Answer string   `json:"answer"`
	Clues  []string `json:"clues"`
	Date   string   `json:"date"`
}

// Today fetches and validates the current puzzle.
func (c *Client) Today(ctx context.Context) (puzzle.Task, error) {
	if c.url == "" {
		return puzzle.Task{}, fmt.Errorf("puzzle request: %w: endpoint not configured", ErrUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return puzzle.Task{}, fmt.Errorf("puzzle request: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return puzzle.Task{}, fmt.Errorf("puzzle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return puzzle.Task{}, fmt.Errorf("puzzle request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return puzzle.Task{}, fmt.Errorf("puzzle request: %w: http %d: %s", ErrUnavailable, resp.StatusCode, snippet(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return puzzle.Task{}, fmt.Errorf("puzzle request: %w: decode response: %v", ErrUnavailable, err)
	}
	if !env.Success {
		return puzzle.Task{}, fmt.Errorf("puzzle request: %w: provider reported success=false", ErrUnavailable)
	}
	if env.Data == nil {
		return puzzle.Task{}, fmt.Errorf("puzzle request: %w: response has no data", ErrUnavailable)
	}

	task := puzzle.Task{
		Date:   strings.TrimSpace(env.Data.Date),
		Answer: strings.TrimSpace(env.Data.Answer),
	}
	for _, clue := range env.Data.Clues {
		if trimmed := strings.TrimSpace(clue); trimmed != "" {
			task.Clues = append(task.Clues, trimmed)
		}
	}
	if !task.Valid() {
		return puzzle.Task{}, fmt.Errorf("puzzle request: %w: empty answer", ErrUnavailable)
	}
	return task, nil
}

func snippet(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	if text == "" {
		return "<empty>"
	}
	const limit = 160
	if len(text) > limit {
		end := limit
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		return text[:end] + "..."
	}
	return text
}
