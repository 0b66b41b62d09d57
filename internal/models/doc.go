// Package models defines domain entities and persistence interfaces for the Syncra reconciliation engine.
//
// The package contains two categories of types:
//
// 1. Domain values passed between pipeline stages:
//   - [RawTrackRef] : Loosely-specified track reference from a playlist source
//   - [NormalizedKey] : Canonical comparison form of track metadata
//   - [CandidateMatch] / [ResolvedTrack] : Matcher output per reference
//   - [Playlist] / [LibraryTrack] : Target library state
//   - [EditOp] / [EditScript] : Ordered playlist mutations from the diff engine
//   - [SyncReport] : Aggregate outcome of a sync run
//
// 2. Persistent entities: Database-backed models with lifecycle management
//   - [RunRecord] : A completed sync run stored in the run history
//
// Persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard data access operations.
package models
