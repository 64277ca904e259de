// Package deps checks that the external binaries a run needs (ffmpeg, ffprobe
// and a Chrome build) can be found before any stage starts.
package deps
