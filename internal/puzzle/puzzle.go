// Package puzzle defines the daily puzzle handed between pipeline stages.
package puzzle

import (
	"strings"
	"time"
)

// MaxDecoys bounds how many wrong guesses are played before the answer.
const MaxDecoys = 2

// DateLayout is the provider's date format.
const DateLayout = "2006-01-02"

// Task is one day's puzzle. Fetch fills Date, Answer and Clues; Enrich may add
// DecoyGuesses. Consumers treat a Task as read-only.
type Task struct {
	Date         string
	Answer       string
	Clues        []string
	DecoyGuesses []string
}

// Valid reports whether the task carries an answer worth playing.
func (t Task) Valid() bool {
	return strings.TrimSpace(t.Answer) != ""
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	out := t
	out.Clues = append([]string(nil), t.Clues...)
	out.DecoyGuesses = append([]string(nil), t.DecoyGuesses...)
	return out
}

// WithDecoys returns a copy of t carrying decoys filtered by FilterDecoys.
func (t Task) WithDecoys(decoys []string) Task {
	out := t.Clone()
	out.DecoyGuesses = FilterDecoys(decoys, t.Answer)
	return out
}

// ParsedDate returns the task date, or false when it does not follow DateLayout.
func (t Task) ParsedDate() (time.Time, bool) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(t.Date))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// FilterDecoys trims candidates, drops blanks, duplicates and anything equal to
// the answer (case-insensitive), and keeps at most MaxDecoys in order.
func FilterDecoys(candidates []string, answer string) []string {
	answerKey := strings.ToLower(strings.TrimSpace(answer))
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, MaxDecoys)
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if key == answerKey {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
		if len(out) == MaxDecoys {
			break
		}
	}
	return out
}
