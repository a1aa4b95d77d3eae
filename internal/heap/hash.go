package heap

// hashTable preserves insertion order and indexes pairs by value hash.
// Lookup scans the bucket with deep equality, so equal-by-value keys
// (strings, numbers, arrays) collide onto the same entry.
type hashTable struct {
	pairs []hashPair
	index map[uint32][]int
}

type hashPair struct {
	key, value Handle
}

func newHashTable() *hashTable {
	return &hashTable{index: make(map[uint32][]int)}
}

func (t *hashTable) len() int { return len(t.pairs) }

func (t *hashTable) set(h *Heap, key, value Handle) {
	code := h.hashOf(key)
	for _, i := range t.index[code] {
		if h.Equal(t.pairs[i].key, key) {
			t.pairs[i].value = value
			return
		}
	}
	t.pairs = append(t.pairs, hashPair{key: key, value: value})
	t.index[code] = append(t.index[code], len(t.pairs)-1)
}

func (t *hashTable) get(h *Heap, key Handle) (Handle, bool) {
	for _, i := range t.index[h.hashOf(key)] {
		if h.Equal(t.pairs[i].key, key) {
			return t.pairs[i].value, true
		}
	}
	return NilHandle, false
}

// rehash rebuilds the bucket index from the pairs. Insertion order is
// kept; only the bucket codes are recomputed.
func (t *hashTable) rehash(h *Heap) {
	t.index = make(map[uint32][]int, len(t.pairs))
	for i := range t.pairs {
		code := h.hashOf(t.pairs[i].key)
		t.index[code] = append(t.index[code], i)
	}
}

func (t *hashTable) keys() []Handle {
	out := make([]Handle, len(t.pairs))
	for i, p := range t.pairs {
		out[i] = p.key
	}
	return out
}
