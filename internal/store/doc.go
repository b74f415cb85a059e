// Package store archives probe runs in SQLite.
//
// The archive is append-only:
//   - Runs: walk configuration, host timing model and config hash
//   - Steps: every position the walk delivered
//   - Samples: every resolved probe measurement
//
// # Ordering
//
// Steps are always read ORDER BY idx ASC and samples ORDER BY seq ASC,
// so a run reads back in the order it was recorded.
//
// # Identity
//
// Run IDs are UUIDv7, which sort by creation time. The config hash
// (walk.Config.Hash) groups runs that replayed the same walk so their
// latencies can be compared.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
