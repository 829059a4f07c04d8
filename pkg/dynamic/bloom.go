package dynamic

import (
	"hash/fnv"
	"math"

	"neurolearn/pkg/common"
)

// bloomFilter is a fixed-size Bloom filter over a level's keys, adapted
// from the bucket-count/hash-count formulas of the teacher's bloom
// filter: m = -(n*ln(p))/(ln2)^2, k = (m/n)*ln2. It exists only to let
// find/count short-circuit a level without consulting its static index
// or binary-searching its run; a false positive just costs one wasted
// probe, never a wrong answer.
type bloomFilter[K common.Key] struct {
	bits []bool
	k    uint
	m    uint
}

func newBloomFilter[K common.Key](n int, p float64) *bloomFilter[K] {
	if n <= 0 {
		n = 1
	}
	m := uint(math.Ceil(float64(n) * math.Log(p) / math.Log(1.0/math.Pow(2.0, math.Log(2.0)))))
	if m == 0 {
		m = 1
	}
	k := uint(math.Ceil((float64(m) / float64(n)) * math.Log(2.0)))
	if k == 0 {
		k = 1
	}
	return &bloomFilter[K]{bits: make([]bool, m), k: k, m: m}
}

func (bf *bloomFilter[K]) Add(key K) {
	h1, h2 := bloomHashes(key)
	for i := uint(0); i < bf.k; i++ {
		pos := (h1 + uint32(i)*h2) % uint32(bf.m)
		bf.bits[pos] = true
	}
}

func (bf *bloomFilter[K]) Contains(key K) bool {
	h1, h2 := bloomHashes(key)
	for i := uint(0); i < bf.k; i++ {
		pos := (h1 + uint32(i)*h2) % uint32(bf.m)
		if !bf.bits[pos] {
			return false
		}
	}
	return true
}

func bloomHashes[K common.Key](key K) (uint32, uint32) {
	bits := math.Float64bits(common.ToFloat64(key))
	h := fnv.New32a()
	h.Write([]byte{
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40), byte(bits >> 48), byte(bits >> 56),
	})
	return h.Sum32(), uint32(bits ^ (bits >> 32))
}
