package replay

import (
	"strings"

	"github.com/jlmalone/redo/internal/changelog"
)

// Merge unions two event sets, deduplicating by content address. This is
// the whole multi-writer merge story: local and remote logs are unioned
// and a fresh Reconstruct over the union resolves everything else through
// the deterministic fold.
func Merge(a, b []changelog.Entry) []changelog.Entry {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]changelog.Entry, 0, len(a)+len(b))

	for _, e := range a {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		merged = append(merged, e)
	}
	for _, e := range b {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		merged = append(merged, e)
	}

	return merged
}

func violationSummary(violations []changelog.Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.Error()
	}
	return "failed validation: " + strings.Join(parts, "; ")
}
