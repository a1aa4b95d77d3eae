package heap

import "fmt"

// Release marks the referent of v as released. The slot lingers as a
// zombie until Sweep so late readers observe an internal tag instead of a
// recycled value. Immediates and interned symbols are never released.
// Reports whether a slot was actually marked.
func (h *Heap) Release(v Handle) bool {
	if v.IsImmediate() {
		return false
	}
	s := h.slotFor(v)
	if s == nil {
		return false
	}
	switch s.tag {
	case TagSymbol, TagZombie, TagNone:
		return false
	}
	s.tag = TagZombie
	s.payload = nil
	return true
}

// Sweep reclaims every zombie slot and returns how many it freed. After a
// sweep, handles to those slots are dangling: their tag reads TagNone and
// classifying them is fatal.
func (h *Heap) Sweep() int {
	n := 0
	for i := range h.slots {
		if h.slots[i].tag == TagZombie {
			h.slots[i] = slot{tag: TagNone}
			h.free = append(h.free, i)
			n++
		}
	}
	return n
}

// Compact slides live slots down over reclaimed ones, leaving forwarding
// markers behind. Handles issued before the compaction keep working through
// the markers, but their own tag reads TagMoved, so holders learn they are
// stale. Returns the number of relocated slots.
func (h *Heap) Compact() int {
	moved := 0
	lo, hi := 0, len(h.slots)-1
	for lo < hi {
		for lo < hi && h.slots[lo].tag != TagNone {
			lo++
		}
		for lo < hi && !movable(h.slots[hi].tag) {
			hi--
		}
		if lo >= hi {
			break
		}
		h.slots[lo] = h.slots[hi]
		h.slots[hi] = slot{tag: TagMoved, forward: slotHandle(lo)}
		moved++
	}
	if moved > 0 {
		h.free = h.free[:0]
		for i := range h.slots {
			if h.slots[i].tag == TagNone {
				h.free = append(h.free, i)
			}
		}
		h.reintern()
	}
	return moved
}

func movable(t Tag) bool {
	return t != TagNone && t != TagMoved
}

// reintern repoints the symbol table at post-compaction handles so
// NewSymbol keeps returning live, non-forwarding handles.
func (h *Heap) reintern() {
	h.symMu.Lock()
	defer h.symMu.Unlock()
	for name, v := range h.symbols {
		if idx := h.resolveIndex(v); idx >= 0 {
			h.symbols[name] = slotHandle(idx)
		}
	}
}

// NewPlaceholder allocates a transient slot with no payload. Placeholders
// exist so graph loaders can hand out handles for nodes they have not built
// yet; an abandoned placeholder classifies as a raw internal value, never
// as a half-built typed one.
func (h *Heap) NewPlaceholder() Handle {
	return h.alloc(TagInternal, nil)
}

func (h *Heap) fill(ph Handle, tag Tag, payload any) {
	idx := ph.slotIndex()
	if idx < 0 || idx >= len(h.slots) || h.slots[idx].tag != TagInternal {
		panic(fmt.Sprintf("heap: fill target is %s, not a placeholder", h.TagOf(ph)))
	}
	h.slots[idx] = slot{tag: tag, payload: payload}
}

// FillArray turns a placeholder into an array. Elements may themselves
// still be placeholders; that is the point.
func (h *Heap) FillArray(ph Handle, elems []Handle) {
	cp := make([]Handle, len(elems))
	copy(cp, elems)
	h.fill(ph, TagArray, cp)
}

func (h *Heap) FillHash(ph Handle, keys, values []Handle) {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("heap: FillHash with %d keys and %d values", len(keys), len(values)))
	}
	t := newHashTable()
	for i := range keys {
		t.set(h, keys[i], values[i])
	}
	h.fill(ph, TagHash, t)
}

// Rehash rebuilds a hash's bucket index. A key that was a placeholder at
// insertion time hashes under its identity; once filled it hashes by value,
// so graph loaders rehash after the whole graph is live.
func (h *Heap) Rehash(v Handle) {
	h.payload(v, TagHash).(*hashTable).rehash(h)
}

func (h *Heap) FillRange(ph, begin, end Handle, exclusive bool) {
	h.fill(ph, TagRange, &rangePayload{begin: begin, end: end, exclusive: exclusive})
}

func (h *Heap) FillStruct(ph Handle, name string, members []string, values []Handle) {
	if len(members) != len(values) {
		panic(fmt.Sprintf("heap: FillStruct %s with %d members and %d values", name, len(members), len(values)))
	}
	m := make([]string, len(members))
	copy(m, members)
	v := make([]Handle, len(values))
	copy(v, values)
	h.fill(ph, TagStruct, &structPayload{name: name, members: m, values: v})
}

func (h *Heap) FillClass(ph Handle, name string, super Handle) {
	h.fill(ph, TagClass, &classPayload{name: name, super: super})
}

func (h *Heap) FillModule(ph Handle, name string) {
	h.fill(ph, TagModule, &modulePayload{name: name})
}

func (h *Heap) FillObject(ph, class Handle, ivars map[string]Handle) {
	cp := make(map[string]Handle, len(ivars))
	for k, v := range ivars {
		cp[k] = v
	}
	h.fill(ph, TagObject, &objectPayload{class: class, ivars: cp})
}
