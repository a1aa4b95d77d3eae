package heap

import (
	"fmt"
	"math/big"
	"regexp"
	"sync"

	"github.com/google/uuid"
)

// Heap owns the slot table behind every non-immediate Handle it hands out.
// A Heap is confined to one goroutine; only the symbol intern table is
// guarded, so interning from helper goroutines is allowed.
type Heap struct {
	id    uuid.UUID
	slots []slot
	free  []int

	symMu   sync.Mutex
	symbols map[string]Handle
}

type slot struct {
	tag     Tag
	payload any
	forward Handle // set when tag == TagMoved
}

// Per-tag payloads. The tag alone decides which of these a slot holds;
// accessors assert the tag before the type assertion.
type (
	rangePayload struct {
		begin, end Handle
		exclusive  bool
	}
	regexpPayload struct {
		source   string
		compiled *regexp.Regexp
	}
	structPayload struct {
		name    string
		members []string
		values  []Handle
	}
	objectPayload struct {
		class Handle
		ivars map[string]Handle
	}
	classPayload struct {
		name  string
		super Handle
	}
	modulePayload struct {
		name string
	}
)

func New() *Heap {
	return &Heap{
		id:      uuid.New(),
		symbols: make(map[string]Handle),
	}
}

// ID returns the heap's instance identity.
func (h *Heap) ID() uuid.UUID { return h.id }

func (h *Heap) alloc(tag Tag, payload any) Handle {
	if n := len(h.free); n > 0 {
		idx := h.free[n-1]
		h.free = h.free[:n-1]
		h.slots[idx] = slot{tag: tag, payload: payload}
		return slotHandle(idx)
	}
	h.slots = append(h.slots, slot{tag: tag, payload: payload})
	return slotHandle(len(h.slots) - 1)
}

// slotFor resolves v to its slot, following forwarding markers left by
// compaction. Returns nil for immediates and malformed handles. The hop
// count is bounded by the table size; forwarding chains cannot cycle
// because a slot only ever forwards to a lower index.
func (h *Heap) slotFor(v Handle) *slot {
	for hops := 0; hops <= len(h.slots); hops++ {
		idx := v.slotIndex()
		if idx < 0 || idx >= len(h.slots) {
			return nil
		}
		s := &h.slots[idx]
		if s.tag != TagMoved {
			return s
		}
		v = s.forward
	}
	return nil
}

// resolveIndex follows forwarding markers and returns the final slot index
// for v, or -1 for immediates and malformed handles.
func (h *Heap) resolveIndex(v Handle) int {
	for hops := 0; hops <= len(h.slots); hops++ {
		idx := v.slotIndex()
		if idx < 0 || idx >= len(h.slots) {
			return -1
		}
		if h.slots[idx].tag != TagMoved {
			return idx
		}
		v = h.slots[idx].forward
	}
	return -1
}

// TagOf reports the current dynamic category of v. Forwarding markers are
// not followed here: a handle left stale by Compact reports TagMoved, which
// is how callers learn they hold a pre-compaction handle.
func (h *Heap) TagOf(v Handle) Tag {
	if v.IsFixnum() {
		return TagFixnum
	}
	if v.IsSpecial() {
		return specialTag(v)
	}
	idx := v.slotIndex()
	if idx < 0 || idx >= len(h.slots) {
		return TagNone
	}
	return h.slots[idx].tag
}

// Constant accessors.

func (h *Heap) Nil() Handle   { return NilHandle }
func (h *Heap) True() Handle  { return TrueHandle }
func (h *Heap) False() Handle { return FalseHandle }
func (h *Heap) Undef() Handle { return UndefHandle }

// NewBool returns the canonical constant for b.
func (h *Heap) NewBool(b bool) Handle {
	if b {
		return TrueHandle
	}
	return FalseHandle
}

// NewInteger encodes v as a fixnum when it fits and allocates a bignum slot
// otherwise. Callers cannot tell which encoding they got back.
func (h *Heap) NewInteger(v int64) Handle {
	if fitsFixnum(v) {
		return fixnumHandle(v)
	}
	return h.alloc(TagBignum, new(big.Int).SetInt64(v))
}

// NewBigInt allocates an arbitrary-precision integer, collapsing to a
// fixnum when the value fits. The big.Int is copied.
func (h *Heap) NewBigInt(v *big.Int) Handle {
	if v.IsInt64() && fitsFixnum(v.Int64()) {
		return fixnumHandle(v.Int64())
	}
	return h.alloc(TagBignum, new(big.Int).Set(v))
}

func (h *Heap) NewFloat(v float64) Handle {
	return h.alloc(TagFloat, v)
}

func (h *Heap) NewString(s string) Handle {
	return h.alloc(TagString, s)
}

// NewSymbol interns name: the same name always yields the same Handle for
// the lifetime of the heap. Symbols are never swept.
func (h *Heap) NewSymbol(name string) Handle {
	h.symMu.Lock()
	defer h.symMu.Unlock()
	if v, ok := h.symbols[name]; ok {
		return v
	}
	v := h.alloc(TagSymbol, name)
	h.symbols[name] = v
	return v
}

func (h *Heap) NewArray(elems []Handle) Handle {
	cp := make([]Handle, len(elems))
	copy(cp, elems)
	return h.alloc(TagArray, cp)
}

// NewHash builds a hash from parallel key/value slices. Later duplicates
// win, matching last-write semantics.
func (h *Heap) NewHash(keys, values []Handle) Handle {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("heap: NewHash with %d keys and %d values", len(keys), len(values)))
	}
	t := newHashTable()
	for i := range keys {
		t.set(h, keys[i], values[i])
	}
	return h.alloc(TagHash, t)
}

func (h *Heap) NewRange(begin, end Handle, exclusive bool) Handle {
	return h.alloc(TagRange, &rangePayload{begin: begin, end: end, exclusive: exclusive})
}

// NewRegexp compiles source eagerly so a malformed pattern fails at
// construction, not at first match.
func (h *Heap) NewRegexp(source string) (Handle, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return NilHandle, fmt.Errorf("heap: bad regexp %q: %v", source, err)
	}
	return h.alloc(TagRegexp, &regexpPayload{source: source, compiled: re}), nil
}

func (h *Heap) NewStruct(name string, members []string, values []Handle) (Handle, error) {
	if len(members) != len(values) {
		return NilHandle, fmt.Errorf("heap: struct %s has %d members but %d values", name, len(members), len(values))
	}
	m := make([]string, len(members))
	copy(m, members)
	v := make([]Handle, len(values))
	copy(v, values)
	return h.alloc(TagStruct, &structPayload{name: name, members: m, values: v}), nil
}

func (h *Heap) NewRational(num, den int64) (Handle, error) {
	if den == 0 {
		return NilHandle, fmt.Errorf("heap: rational with zero denominator")
	}
	return h.alloc(TagRational, big.NewRat(num, den)), nil
}

func (h *Heap) NewComplex(re, im float64) Handle {
	return h.alloc(TagComplex, complex(re, im))
}

func (h *Heap) NewObject(class Handle, ivars map[string]Handle) Handle {
	cp := make(map[string]Handle, len(ivars))
	for k, v := range ivars {
		cp[k] = v
	}
	return h.alloc(TagObject, &objectPayload{class: class, ivars: cp})
}

func (h *Heap) NewClass(name string, super Handle) Handle {
	return h.alloc(TagClass, &classPayload{name: name, super: super})
}

func (h *Heap) NewModule(name string) Handle {
	return h.alloc(TagModule, &modulePayload{name: name})
}

// NewData wraps an embedder-owned payload the heap treats as opaque.
func (h *Heap) NewData(payload any) Handle {
	return h.alloc(TagData, payload)
}

// Len reports the number of slots currently in use (excluding reclaimed
// and forwarding slots).
func (h *Heap) Len() int {
	n := 0
	for i := range h.slots {
		switch h.slots[i].tag {
		case TagNone, TagMoved:
		default:
			n++
		}
	}
	return n
}
