package production

import (
	"context"

	"pinpoint/internal/media/ffprobe"
)

// clipProbe is the ffprobe function used by the production package.
// It is a package-level variable so tests can override it.
var clipProbe = ffprobe.Inspect

// SetProbeForTests overrides the ffprobe runner during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := clipProbe
	clipProbe = fn
	return func() {
		clipProbe = previous
	}
}
