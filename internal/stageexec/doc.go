// Package stageexec runs a single pipeline stage with consistent logging,
// timing, status tracking and failure notification.
package stageexec
