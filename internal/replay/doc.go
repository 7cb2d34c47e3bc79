// Package replay reconstructs current task state from an unordered set of
// change log entries.
//
// Reconstruct is a pure fold: sort by Lamport counter (content address as
// tie-break), drop entries that fail the structural gate, apply per-action
// transition rules, filter tombstoned tasks. No I/O, no hidden state, no
// clock reads - the same input set always produces the same output map,
// which is what lets independently authored logs from multiple devices be
// merged by simple union and replayed fresh.
//
// Failures come in two tiers. Soft rejections (invalid entries, actions
// against missing aggregates, duplicate CREATEs) are excluded with a
// diagnostic and never interrupt the fold. Hard errors (an action that
// requires a target but has no taskId) surface through the returned error
// while reconstruction continues for everything else.
package replay
