package guesses

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the decoy request. The user prompt carries the clues.
const SystemPrompt = `You help simulate a person playing Pinpoint, a daily word game where the goal is to guess the category that links a set of clues.

The player does not know the answer immediately. Suggest plausible but INCORRECT guesses that a human might make from the clues.

Rules:

- Each guess is a single word or a short phrase.
- Never repeat the correct answer or a trivial variation of it.
- Return exactly 2 guesses.

You must respond ONLY with a JSON object like: {"guesses": ["guess one", "guess two"]}`

// UserPrompt renders the clues and the answer the decoys must avoid.
func UserPrompt(clues []string, answer string) string {
	var b strings.Builder
	b.WriteString("Clues revealed so far:\n")
	if len(clues) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, clue := range clues {
		fmt.Fprintf(&b, "- %s\n", clue)
	}
	fmt.Fprintf(&b, "\nThe correct answer is: %q", answer)
	return b.String()
}
