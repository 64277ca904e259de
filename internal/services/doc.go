// Package services defines shared utilities consumed by the pipeline stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and puzzle dates for
//     logging and notifications.
//   - Structured error markers plus the Wrap helper so every stage failure
//     carries the stage, the operation, and a human-readable message.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
