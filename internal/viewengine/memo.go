package viewengine

import (
	"encoding/json"
	"hash/fnv"
	"sync"
	"unsafe"
)

// Memo is a single-entry cache for derived values, keyed on the identity of
// the source slice and a hash of the parameters. Any change to either evicts
// the entry. Source slices must be treated as immutable snapshots: a caller
// that mutates a slice in place will read a stale value.
//
// The entry keeps a reference to its source slice so the address cannot be
// reused by another allocation while cached. A Memo is safe for concurrent use.
type Memo[In, Out any] struct {
	mu     sync.Mutex
	valid  bool
	key    memoKey
	source []In
	value  Out
	hits   uint64
	misses uint64
}

type memoKey struct {
	data   uintptr
	length int
	params uint64
}

// Get returns the cached value for (records, params) or computes and stores it.
// Params that cannot be hashed are never cached.
func (m *Memo[In, Out]) Get(records []In, params any, compute func() Out) Out {
	hash, ok := hashParams(params)
	if !ok {
		return compute()
	}
	key := memoKey{
		data:   uintptr(unsafe.Pointer(unsafe.SliceData(records))),
		length: len(records),
		params: hash,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.key == key {
		m.hits++
		return m.value
	}

	m.misses++
	m.value = compute()
	m.key = key
	m.source = records
	m.valid = true
	return m.value
}

// Invalidate drops the cached entry.
func (m *Memo[In, Out]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero Out
	m.value = zero
	m.source = nil
	m.valid = false
}

// Stats returns the hit and miss counters.
func (m *Memo[In, Out]) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// hashParams hashes the JSON encoding of params. encoding/json writes map keys
// in sorted order, so equal values hash equally.
func hashParams(params any) (uint64, bool) {
	data, err := json.Marshal(params)
	if err != nil {
		return 0, false
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64(), true
}
