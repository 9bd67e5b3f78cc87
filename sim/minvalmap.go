// MinValueMap is the bounded top-K sampler behind fixed-sample-size SHARDS:
// it retains the K keys with the smallest scores seen so far, and its
// current maximum is the adaptive admission threshold.

package sim

import (
	"container/heap"
	"math"
)

type scoreEntry struct {
	key   uint64
	score uint64
}

// scoreHeap is a max-heap over scores so the largest retained score is
// always at the top, ready to be displaced by a smaller newcomer.
type scoreHeap []scoreEntry

func (h scoreHeap) Len() int           { return len(h) }
func (h scoreHeap) Less(i, j int) bool { return h[i].score > h[j].score }
func (h scoreHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scoreHeap) Push(x any) {
	*h = append(*h, x.(scoreEntry))
}

func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MinValueMap keeps exactly the capacity smallest-scored keys seen so far.
// Scores are deterministic per key (a salted hash), so re-inserting a known
// key is a no-op. Ties are broken by heap order, which is deterministic for
// a fixed insertion sequence.
type MinValueMap struct {
	capacity int
	values   map[uint64]uint64
	heap     scoreHeap
}

// NewMinValueMap returns a sampler retaining the capacity smallest scores.
func NewMinValueMap(capacity int) *MinValueMap {
	return &MinValueMap{
		capacity: capacity,
		values:   make(map[uint64]uint64, capacity),
		heap:     make(scoreHeap, 0, capacity),
	}
}

// Insert offers a key with its score. admitted reports whether the key is
// retained afterwards; when admission displaces the current largest score,
// evictedKey carries the displaced key and evicted is true.
func (m *MinValueMap) Insert(key, score uint64) (evictedKey uint64, evicted bool, admitted bool) {
	if _, ok := m.values[key]; ok {
		return 0, false, true
	}
	if len(m.values) < m.capacity {
		m.values[key] = score
		heap.Push(&m.heap, scoreEntry{key: key, score: score})
		return 0, false, true
	}
	if score >= m.heap[0].score {
		return 0, false, false
	}
	victim := heap.Pop(&m.heap).(scoreEntry)
	delete(m.values, victim.key)
	m.values[key] = score
	heap.Push(&m.heap, scoreEntry{key: key, score: score})
	return victim.key, true, true
}

// Contains reports whether key is currently retained.
func (m *MinValueMap) Contains(key uint64) bool {
	_, ok := m.values[key]
	return ok
}

// MaxValue returns the admission threshold: the largest retained score once
// the map is full, or MaxUint64 while it is still filling (everything is
// admitted, effective sample rate 1.0).
func (m *MinValueMap) MaxValue() uint64 {
	if len(m.values) < m.capacity {
		return math.MaxUint64
	}
	return m.heap[0].score
}

// Len returns the number of retained keys.
func (m *MinValueMap) Len() int { return len(m.values) }

// Cap returns the fixed capacity K.
func (m *MinValueMap) Cap() int { return m.capacity }
