// Package timing models the pace of a human player.
//
// Delays are drawn uniformly from fixed windows (keystroke cadence) or caller
// supplied windows (thinking pauses). A Pacer turns those draws into waits that
// honour context cancellation; the Human pacer can be seeded for reproducible
// runs and the Instant pacer skips waiting entirely.
package timing
