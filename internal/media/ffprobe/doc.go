// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Media assembly uses it to decide which clips need synthesized silence
// (HasAudio) and to estimate the finished video's length (Duration).
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Parse: decodes captured ffprobe JSON
package ffprobe
