// Package repositories implements SQLite persistence for run history.
//
// [RunRepository] stores one row per completed sync run with the full report
// as JSON text, plus indexed columns for mode and playlist filtering. It
// satisfies tasks.RunStore through [RunRepository.Save].
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42)
// independent of UUIDs and creation timestamps. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated sequence
// tables.
package repositories
