// Package store provides a SQLite-backed ledger of completed quadrature
// runs.
//
// The ledger is an audit log, not session state: nothing in the engine
// reads it back to compute. Each row holds the request, the integral and
// the full sample trace.
//
// # Ordering
//
//   - Every run carries a unique seq INTEGER (logical clock), never a
//     timestamp
//   - Listing queries order by seq, then id COLLATE BINARY
//
// # Identity
//
//   - id is a UUIDv7 run identifier, unique per run
//   - request_id is the content-addressed hash of (rule, request), shared by
//     every run of the same calculation
//   - trace_hash digests the integral and samples, so two runs of one
//     request can be compared for bit-identical output
//
// # Database Configuration
//
//   - journal_mode=WAL, so history can be listed while a run is written
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - user_version records the ledger schema; Open refuses a ledger whose
//     schema is newer than this build understands
package store
