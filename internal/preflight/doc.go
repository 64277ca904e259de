// Package preflight provides readiness checks for the tools, directories and
// services a pinpoint run depends on.
//
// "pinpoint preflight" renders every check as a table. "pinpoint run" calls
// RunAll before touching the network and refuses to start when a required
// check fails; optional checks (LLM, intro/outro clips, YouTube credentials on
// a dry run) only warn.
package preflight
