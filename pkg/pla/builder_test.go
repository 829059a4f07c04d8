package pla

import "testing"

// TestBuilderHullMemoryStaysBounded exercises the streaming memory
// invariant directly: a single long-lived segment's running hull slices
// must track the live hull size, not the number of points absorbed into
// the segment so far.
func TestBuilderHullMemoryStaysBounded(t *testing.T) {
	b, err := NewBuilder[int64](4)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}

	const n = 200_000
	const bound = 64 // generous; a real hull for this input stays tiny

	maxUpper, maxLower := 0, 0
	for i := int64(0); i < n; i++ {
		ok, err := b.Add(i, int(i))
		if err != nil {
			t.Fatalf("add(%d): %v", i, err)
		}
		if !ok {
			t.Fatalf("add(%d): arithmetic progression must never force a new segment", i)
		}
		if len(b.upper) > maxUpper {
			maxUpper = len(b.upper)
		}
		if len(b.lower) > maxLower {
			maxLower = len(b.lower)
		}
	}

	if maxUpper > bound || maxLower > bound {
		t.Fatalf("hull slices grew unbounded: max upper=%d, max lower=%d (want <= %d after %d points in one segment)",
			maxUpper, maxLower, bound, n)
	}
}
