package dynamic

import "neurolearn/pkg/common"

// entry is one (key, value-or-tombstone, version) record, the unit
// stored in the in-memory buffer and in every level's run.
type entry[K common.Key, V any] struct {
	Key       K
	Value     V
	Tombstone bool
	Version   uint64
}

// bufferLess orders buffer entries by (key ascending, version
// descending): within a key's group the newest write sorts first, so a
// single forward scan from the start of a key's group finds the
// current value without inspecting older versions.
func bufferLess[K common.Key, V any](a, b entry[K, V]) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.Version > b.Version
}
