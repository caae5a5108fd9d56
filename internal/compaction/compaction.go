// Package compaction holds the pure planning logic behind inline log
// compaction: deciding when to compact, and which segment ids the
// compaction output and the post-compaction active segment should use.
// It deliberately has no side effects of its own; internal/engine drives
// the actual file and index mutations under its writer lock, calling into
// this package only for the arithmetic and ordering rules.
package compaction

// ShouldCompact reports whether the accumulated stale-byte count has
// crossed the configured threshold and a compaction pass should run before
// the write that triggered the check returns.
func ShouldCompact(uncompacted, threshold uint64) bool {
	return threshold > 0 && uncompacted >= threshold
}

// Plan describes the segment ids a compaction pass allocates: C is the
// segment the live entries get rewritten into, and N is the new active
// segment writes resume on once compaction finishes. Both ids are derived
// from the current active segment id and are always C = active+1,
// N = active+2, preserving the invariant that segment ids strictly
// increase and are never reused.
type Plan struct {
	Compacted uint32 // C: holds the rewritten live entries.
	Next      uint32 // N: the new active segment after compaction.
}

// NextIDs computes the compaction plan for the given active segment id.
func NextIDs(active uint32) Plan {
	return Plan{Compacted: active + 1, Next: active + 2}
}
