// Package dynamic implements the log-structured dynamic index: a cascade
// of levels backed by static indexes plus a small in-memory buffer,
// giving insert_or_assign/erase/find/lower_bound/upper_bound/iteration
// with versioned most-recent-wins semantics over a mutable key set.
package dynamic

import "errors"

// ErrCapacityExhausted is returned when a compaction would need to
// cascade past maxLevels to find a level with room for the merged run —
// a state only reachable by an index holding far more live entries than
// any in-memory structure can legitimately carry. The check runs before
// any mutation, so the index's prior state is left fully intact: the
// buffer that triggered compaction is not touched until a target level
// is confirmed to exist.
var ErrCapacityExhausted = errors.New("dynamic: capacity exhausted during compaction")
