// Package store provides SQLite-backed audit storage for link runs.
//
// The store is an append-only log with:
//   - Runs: one row per link run (inputs, output, outcome counts)
//   - Decisions: one row per secondary record per run (outcome, key, match)
//
// # Ordering
//
// Runs are ordered by a logical seq assigned at insert time, never by wall
// clock. Decisions are ordered by source line. Every query carries an
// explicit ORDER BY so listings are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// A run and all of its decisions are written in one transaction.
package store
