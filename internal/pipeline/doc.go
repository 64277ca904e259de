// Package pipeline runs the five stages of a pinpoint run in order: fetch
// today's puzzle, enrich it with decoy guesses, play and record it, produce
// the finished video and publish it.
//
// A stage only runs when every required stage before it succeeded; nothing is
// retried and nothing is persisted between runs. Enrich is optional and never
// fails a run. A dry run stops after produce and reports the artifact path.
//
// Runner.Run returns a Result whose ExitReason names the failing stage and
// whose ExitCode maps to the process exit status.
package pipeline
