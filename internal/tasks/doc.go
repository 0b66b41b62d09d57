// Package tasks orchestrates playlist synchronization between sources and the
// target library with real-time progress reporting.
//
// # Core Operations
//
// [Engine] exposes five operations:
//
//  1. [Engine.Import] : Sync a source playlist into a named library playlist
//     - Reads the source refs and resolves each one against the library
//     - Finds or creates the target playlist by name
//     - Computes a minimal edit script and applies it sequentially
//
//  2. [Engine.Convert] : Copy a source playlist into a brand new playlist
//
//  3. [Engine.Export] : Write a library playlist to an m3u file
//
//  4. [Engine.Delete] : Remove a library playlist by name or ID
//
//  5. [Engine.BulkExport] : Export several playlists concurrently to m3u
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced consumers. Updates use select with default to
// prevent blocking.
//
// # Run Reports
//
// Every operation produces a [models.SyncReport] and persists it through the
// optional [RunStore]. Persistence failures are logged, never fatal; the
// report is the operation's result either way.
//
// # Implementation
//
// [Engine] depends on:
//   - [Library] : the target library client (plex.Client)
//   - [Resolver] : confidence-scored track matching (match.Matcher)
//   - [RunStore] : optional run history (repositories.RunRepository)
package tasks
