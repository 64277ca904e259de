package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pinpoint/internal/config"
)

const userAgent = "Pinpoint-Go/0.1.0"

// Event identifies a notification kind.
type Event string

const (
	EventRunStarted   Event = "run_started"
	EventRunCompleted Event = "run_completed"
	EventError        Event = "error"
	EventTest         Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is set.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventRunStarted:   cfg.Notifications.RunStarted,
			EventRunCompleted: cfg.Notifications.RunCompleted,
			EventError:        cfg.Notifications.Errors,
			EventTest:         true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || n.client == nil || !n.enabled[event] {
		return nil
	}
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventRunStarted:
		date := field(payload, "date", "today")
		body := fmt.Sprintf("▶️ Pinpoint run started for %s", date)
		if dry, _ := payload["dryRun"].(bool); dry {
			body += " (dry run)"
		}
		return message{
			title: "Pinpoint - Run Started",
			body:  body,
			tags:  []string{"pinpoint", "run", "started"},
		}, true
	case EventRunCompleted:
		date := field(payload, "date", "today")
		body := fmt.Sprintf("✅ Pinpoint %s complete", date)
		if id := field(payload, "videoID", ""); id != "" {
			body = fmt.Sprintf("%s\nhttps://youtu.be/%s", body, id)
		} else if path := field(payload, "videoPath", ""); path != "" {
			body = fmt.Sprintf("%s\nFile: %s", body, path)
		}
		if d, ok := payload["duration"].(time.Duration); ok {
			body = fmt.Sprintf("%s\nDuration: %s", body, formatDuration(d))
		}
		return message{
			title:    "Pinpoint - Complete",
			body:     body,
			tags:     []string{"pinpoint", "run", "completed"},
			priority: "high",
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("❌ Error")
		if label := field(payload, "context", ""); label != "" {
			b.WriteString(" during ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		b.WriteString(field(payload, "error", "unknown"))
		return message{
			title:    "Pinpoint - Error",
			body:     b.String(),
			tags:     []string{"pinpoint", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Pinpoint - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"pinpoint", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func field(payload Payload, key, fallback string) string {
	if payload == nil {
		return fallback
	}
	value, ok := payload[key]
	if !ok || value == nil {
		return fallback
	}
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case error:
		text = v.Error()
	case fmt.Stringer:
		text = v.String()
	default:
		text = fmt.Sprint(v)
	}
	if text = strings.TrimSpace(text); text == "" {
		return fallback
	}
	return text
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
