// Package puzzleapi fetches the daily Pinpoint puzzle from the worker endpoint.
//
// The endpoint answers with {"success": bool, "data": {...}}. Anything other
// than a 2xx response carrying success=true and a non-empty answer is reported
// as ErrUnavailable so the pipeline can classify the run as a fetch failure.
// Requests are bounded by the configured timeout and never retried.
package puzzleapi
