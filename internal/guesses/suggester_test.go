package guesses

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"pinpoint/internal/puzzle"
	"pinpoint/internal/services/llm"
)

type stubCompleter struct {
	configured bool
	content    string
	err        error
	calls      int
	userPrompt string
}

func (s *stubCompleter) Configured() bool { return s.configured }

func (s *stubCompleter) CompleteJSON(_ context.Context, _, userPrompt string) (string, error) {
	s.calls++
	s.userPrompt = userPrompt
	return s.content, s.err
}

var coffee = puzzle.Task{Date: "2025-03-14", Answer: "Coffee", Clues: []string{"bean", "roast"}}

func TestSuggestReturnsFilteredDecoys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "object", content: `{"guesses":["Tea","Espresso","Juice"]}`, want: []string{"Tea", "Espresso"}},
		{name: "bare array", content: `["Tea","Espresso"]`, want: []string{"Tea", "Espresso"}},
		{name: "fenced", content: "```json\n[\"Tea\"]\n```", want: []string{"Tea"}},
		{name: "drops answer", content: `["coffee","Tea"]`, want: []string{"Tea"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCompleter{configured: true, content: tt.content}
			got, err := New(stub, nil).Suggest(context.Background(), coffee)
			if err != nil {
				t.Fatalf("Suggest returned error: %v", err)
			}
			if !got.OK || !reflect.DeepEqual(got.Decoys, tt.want) {
				t.Fatalf("Suggest = %+v, want decoys %v", got, tt.want)
			}
		})
	}
}

func TestSuggestWithoutKeyIsNone(t *testing.T) {
	stub := &stubCompleter{configured: false}
	got, err := New(stub, nil).Suggest(context.Background(), coffee)
	if got.OK || len(got.Decoys) != 0 {
		t.Fatalf("expected None, got %+v", got)
	}
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no request without key, got %d", stub.calls)
	}
}

func TestSuggestFailuresAreNone(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{name: "request error", stub: &stubCompleter{configured: true, err: errors.New("boom")}},
		{name: "garbage", stub: &stubCompleter{configured: true, content: "no json here"}},
		{name: "only answer", stub: &stubCompleter{configured: true, content: `["Coffee"," "]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.stub, nil).Suggest(context.Background(), coffee)
			if got.OK || len(got.Decoys) != 0 {
				t.Fatalf("expected None, got %+v", got)
			}
			if err == nil {
				t.Fatal("expected explanatory error")
			}
		})
	}
}

func TestSuggestNilSuggester(t *testing.T) {
	var s *Suggester
	if got, _ := s.Suggest(context.Background(), coffee); got.OK {
		t.Fatalf("nil suggester should yield None, got %+v", got)
	}
}

func TestUserPromptIncludesCluesAndAnswer(t *testing.T) {
	prompt := UserPrompt([]string{"bean", "roast"}, "Coffee")
	for _, want := range []string{"- bean", "- roast", `"Coffee"`} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %s", want, prompt)
		}
	}
}
