package dynamic

import (
	"math/rand"
	"sort"
	"testing"
)

// Scenario C: dynamic churn.
func TestScenarioCDynamicChurn(t *testing.T) {
	ix := NewIndex[int, int](8, 2)

	for k := 1; k <= 1000; k++ {
		if err := ix.InsertOrAssign(k, k); err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
	}
	for k := 1; k <= 100; k++ {
		if err := ix.InsertOrAssign(k, k+1000); err != nil {
			t.Fatalf("overwrite %d: %v", k, err)
		}
	}
	for k := 50; k <= 60; k++ {
		if _, err := ix.Erase(k); err != nil {
			t.Fatalf("erase %d: %v", k, err)
		}
	}

	if v, ok := ix.Find(1); !ok || v != 1001 {
		t.Errorf("find(1) = (%d, %v), want (1001, true)", v, ok)
	}
	if _, ok := ix.Find(55); ok {
		t.Errorf("find(55) should be not-found after erase")
	}
	if got := ix.Size(); got != 989 {
		t.Errorf("size() = %d, want 989", got)
	}

	count := 0
	prev := -1
	it := ix.Iterator()
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		if k <= prev {
			t.Fatalf("iteration out of order: %d after %d", k, prev)
		}
		prev = k
		count++
	}
	if count != 989 {
		t.Errorf("iteration yielded %d keys, want 989", count)
	}
}

// oracle is a reference ordered map used to cross-check Index against
// arbitrary operation traces (invariant 5).
type oracle struct {
	m map[int]int
}

func newOracle() *oracle { return &oracle{m: make(map[int]int)} }

func (o *oracle) insert(k, v int) { o.m[k] = v }
func (o *oracle) erase(k int)     { delete(o.m, k) }
func (o *oracle) find(k int) (int, bool) {
	v, ok := o.m[k]
	return v, ok
}
func (o *oracle) size() int { return len(o.m) }
func (o *oracle) sortedKeys() []int {
	keys := make([]int, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func TestAgainstOracleRandomTrace(t *testing.T) {
	ix := NewIndex[int, int](8, 2)
	oc := newOracle()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5000; i++ {
		k := rng.Intn(300)
		if rng.Intn(4) == 0 {
			if _, err := ix.Erase(k); err != nil {
				t.Fatalf("erase: %v", err)
			}
			oc.erase(k)
			continue
		}
		v := rng.Intn(1_000_000)
		if err := ix.InsertOrAssign(k, v); err != nil {
			t.Fatalf("insert: %v", err)
		}
		oc.insert(k, v)
	}

	if got, want := ix.Size(), oc.size(); got != want {
		t.Fatalf("size() = %d, want %d", got, want)
	}

	for k := 0; k < 300; k++ {
		wantV, wantOK := oc.find(k)
		gotV, gotOK := ix.Find(k)
		if gotOK != wantOK || (wantOK && gotV != wantV) {
			t.Fatalf("find(%d) = (%d, %v), want (%d, %v)", k, gotV, gotOK, wantV, wantOK)
		}
		if got := ix.Count(k); got != boolToCount(wantOK) {
			t.Fatalf("count(%d) = %d, want %d", k, got, boolToCount(wantOK))
		}
	}

	wantKeys := oc.sortedKeys()
	var gotKeys []int
	it := ix.Iterator()
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		gotKeys = append(gotKeys, k)
	}
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("iteration produced %d keys, want %d", len(gotKeys), len(wantKeys))
	}
	for i := range wantKeys {
		if gotKeys[i] != wantKeys[i] {
			t.Fatalf("iteration[%d] = %d, want %d", i, gotKeys[i], wantKeys[i])
		}
	}
}

func boolToCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

// Invariant 6: last writer wins.
func TestInsertOrAssignOverwriteWins(t *testing.T) {
	ix := NewIndex[int, string](4, 1)
	if err := ix.InsertOrAssign(7, "v1"); err != nil {
		t.Fatal(err)
	}
	if err := ix.InsertOrAssign(7, "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok := ix.Find(7); !ok || v != "v2" {
		t.Errorf("find(7) = (%q, %v), want (v2, true)", v, ok)
	}
}

// Invariant 7: erase with no subsequent insert.
func TestEraseThenFind(t *testing.T) {
	ix := NewIndex[int, string](4, 1)
	ix.InsertOrAssign(1, "a")
	ix.InsertOrAssign(2, "b")

	existed, err := ix.Erase(1)
	if err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Errorf("erase(1) should report the key existed")
	}
	if _, ok := ix.Find(1); ok {
		t.Errorf("find(1) should report not found after erase")
	}
	if got := ix.Size(); got != 1 {
		t.Errorf("size() = %d, want 1", got)
	}

	existed, err = ix.Erase(99)
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Errorf("erase(99) should report the key did not exist")
	}
	if got := ix.Size(); got != 1 {
		t.Errorf("size() = %d, want 1 (erase of absent key must not change size)", got)
	}
}

func TestLowerBoundAndUpperBound(t *testing.T) {
	ix := NewIndex[int, int](4, 2)
	for _, k := range []int{10, 20, 30, 40, 50} {
		if err := ix.InsertOrAssign(k, k*10); err != nil {
			t.Fatal(err)
		}
	}

	it := ix.LowerBound(25)
	var got []int
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k)
	}
	want := []int{30, 40, 50}
	if len(got) != len(want) {
		t.Fatalf("lower_bound(25) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lower_bound(25) = %v, want %v", got, want)
		}
	}

	it = ix.UpperBound(30)
	got = nil
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k)
	}
	want = []int{40, 50}
	if len(got) != len(want) {
		t.Fatalf("upper_bound(30) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("upper_bound(30) = %v, want %v", got, want)
		}
	}
}

func TestInsertOrAssignRollsBackOnCapacityExhausted(t *testing.T) {
	prev := maxLevels
	maxLevels = 2
	t.Cleanup(func() { maxLevels = prev })

	ix := NewIndex[int, int](1, 1)
	// Saturate L1 (capacity 2) and L2 (capacity 4) so the cumulative
	// cascade sum keeps outrunning capacity() all the way past
	// maxLevels=2.
	ix.levels = []*level[int, int]{
		{entries: []entry[int, int]{{Key: 100, Value: 1, Version: 1}, {Key: 101, Value: 1, Version: 2}}},
		{entries: []entry[int, int]{
			{Key: 200, Value: 2, Version: 3}, {Key: 201, Value: 2, Version: 4},
			{Key: 202, Value: 2, Version: 5}, {Key: 203, Value: 2, Version: 6},
		}},
	}

	err := ix.InsertOrAssign(5, 55)
	if err != ErrCapacityExhausted {
		t.Fatalf("InsertOrAssign = %v, want ErrCapacityExhausted", err)
	}
	if got := ix.Size(); got != 0 {
		t.Fatalf("size() = %d, want 0: the failed insert must be rolled back", got)
	}
	if _, ok := ix.Find(5); ok {
		t.Fatalf("find(5) should report not found: the failed insert must be rolled back")
	}
	if ix.buffer.Len() != 0 {
		t.Fatalf("buffer.Len() = %d, want 0: the failed insert's buffer entry must be retracted", ix.buffer.Len())
	}
	if got := ix.levels[0].entries[0].Key; got != 100 {
		t.Fatalf("L1 entries changed despite the failed compaction, got key %d", got)
	}
}

func TestEraseRollsBackOnCapacityExhausted(t *testing.T) {
	prev := maxLevels
	maxLevels = 2
	t.Cleanup(func() { maxLevels = prev })

	ix := NewIndex[int, int](1, 1)
	ix.version = 10
	ix.live = 1
	ix.buffer.ReplaceOrInsert(entry[int, int]{Key: 5, Value: 55, Version: 10})
	ix.levels = []*level[int, int]{
		{entries: []entry[int, int]{{Key: 100, Value: 1, Version: 1}}},
		{entries: []entry[int, int]{{Key: 200, Value: 2, Version: 2}, {Key: 201, Value: 2, Version: 3}}},
	}

	existed, err := ix.Erase(5)
	if !existed {
		t.Fatal("erase(5) should report the key existed")
	}
	if err != ErrCapacityExhausted {
		t.Fatalf("Erase = %v, want ErrCapacityExhausted", err)
	}
	if got := ix.Size(); got != 1 {
		t.Fatalf("size() = %d, want 1: the failed erase must be rolled back", got)
	}
	if v, ok := ix.Find(5); !ok || v != 55 {
		t.Fatalf("find(5) = (%d, %v), want (55, true): the failed erase must be rolled back", v, ok)
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := NewIndex[int, int](8, 2)
	if got := ix.Size(); got != 0 {
		t.Errorf("size() = %d, want 0", got)
	}
	if _, ok := ix.Find(1); ok {
		t.Errorf("find on empty index should report not found")
	}
	it := ix.Iterator()
	if _, _, ok := it.Next(); ok {
		t.Errorf("iteration over empty index should yield nothing")
	}
}
