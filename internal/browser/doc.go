// Package browser implements the game Surface on top of chromedp.
//
// The browser is launched lazily by Navigate with the context settings a real
// desktop visitor would have (viewport, user agent, locale, timezone) and an
// init script that hides navigator.webdriver. While the page is open a
// screencast streams JPEG frames; a sampler goroutine feeds the most recent
// frame to an ffmpeg process at a fixed rate, producing a WebM file.
//
// Close stops the screencast, joins the sampler, waits for ffmpeg to flush and
// only then shuts the browser down, so the recording is complete before the
// browsing context goes away.
package browser
