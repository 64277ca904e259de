// Package main hosts the pinpoint CLI.
//
// "pinpoint run" is the scheduled entry point: it takes the run lock, checks
// local prerequisites, then drives the pipeline once and prints a stage
// summary. The remaining commands are operator tooling around it: preflight
// checks, config scaffolding, the one-time YouTube OAuth consent flow and a
// notification smoke test.
//
// Configuration is resolved once per invocation in PersistentPreRunE; commands
// annotated with skipConfigLoad run without it.
package main
