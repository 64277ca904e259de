// Package production assembles the publishable video.
//
// Plan orders the clip sources (intro when present, the gameplay recording,
// outro when present). Assembler turns the plan into ffmpeg arguments: a lone
// recording is re-encoded directly; several clips are normalized to one canvas
// and frame rate, given synthesized silence where they lack audio, and
// concatenated in order. Output is always H.264/AAC MP4 at 24 fps with the
// moov atom up front.
//
// The encoder sits behind the Encoder interface so tests can count invocations
// without running ffmpeg.
package production
