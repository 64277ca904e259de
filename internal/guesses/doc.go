// Package guesses asks a language model for plausible wrong answers so the
// recorded session shows some trial and error before the real answer.
//
// The result is a tagged optional: Suggestion.OK is false whenever no usable
// decoys came back, including when no API key is configured. Callers treat a
// missing suggestion as "play the answer directly", never as a failure.
package guesses
