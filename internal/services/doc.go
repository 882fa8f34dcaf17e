// Package services defines shared utilities consumed by the pipeline stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and worker names for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     reporting consistent across stages.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
