// Package session drives one recorded play-through of the daily puzzle.
//
// Driver is an explicit state machine (Init, Loaded, Ready, Finalizing,
// Completed, Fatal) over an abstract Surface, so the browser can be swapped
// for a fake in tests. Decoy guesses are optional: a decoy whose input cannot
// be found is skipped. The final answer is mandatory: a missing input there is
// fatal. Every path through Play closes the surface, which flushes the
// recording, and relocates whatever recording exists to the caller's output
// path before an Outcome is returned.
package session
