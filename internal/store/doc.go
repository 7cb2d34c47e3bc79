// Package store provides SQLite-backed durable storage for the change
// log.
//
// The store is an append-only set of wire-format events keyed by content
// address. It never mutates task state directly: whenever current state
// is needed it reads the full log back and hands it to the replay fold.
//
// Append idempotency comes from the content address itself - INSERT with
// ON CONFLICT(id) DO NOTHING makes re-ingesting the same event a no-op,
// which is exactly the union-by-ID-dedup merge the sync boundary relies
// on. All reads order by lamport ASC, id COLLATE BINARY ASC so every
// consumer sees the identical sequence.
package store
