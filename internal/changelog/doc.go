// Package changelog defines the immutable change log entry - the event
// record every client authors, stores, and replays - together with the
// structural validator for the fixed v1 wire contract.
//
// Entries are content-addressed: an entry's ID is the SHA-256 of its own
// canonical serialization (minus the id field), so identity can always be
// re-verified from untrusted input. The validator is a conjunction of
// independent structural checks with no partial acceptance; it never
// mutates or normalizes what it is given.
package changelog
