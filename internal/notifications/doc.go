// Package notifications delivers run events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Each event kind can be switched off in the
// [notifications] section; suppressed events return nil without a request.
package notifications
