package heap

import (
	"fmt"
	"math/big"
	"sort"
)

// payload resolves v (following forwarding) and asserts its tag. This is
// the managed-language rendition of an unchecked downcast: the assertion is
// cheap, and the typed layer only calls in after classifying, so a panic
// here means a kernel-internal bug or raw-accessor misuse.
func (h *Heap) payload(v Handle, want Tag) any {
	s := h.slotFor(v)
	if s == nil || s.tag != want {
		panic(fmt.Sprintf("heap: %s accessor used on %s handle", want, h.TagOf(v)))
	}
	return s.payload
}

// IntegerValue returns the integer behind a fixnum or bignum handle.
// The result is a fresh big.Int either way; callers cannot observe which
// encoding the heap chose.
func (h *Heap) IntegerValue(v Handle) *big.Int {
	if v.IsFixnum() {
		return big.NewInt(v.fixnum())
	}
	return new(big.Int).Set(h.payload(v, TagBignum).(*big.Int))
}

func (h *Heap) FloatValue(v Handle) float64 {
	return h.payload(v, TagFloat).(float64)
}

func (h *Heap) StringValue(v Handle) string {
	return h.payload(v, TagString).(string)
}

func (h *Heap) SymbolName(v Handle) string {
	return h.payload(v, TagSymbol).(string)
}

func (h *Heap) ArrayLen(v Handle) int {
	return len(h.payload(v, TagArray).([]Handle))
}

func (h *Heap) ArrayAt(v Handle, i int) Handle {
	elems := h.payload(v, TagArray).([]Handle)
	if i < 0 || i >= len(elems) {
		panic(fmt.Sprintf("heap: array index %d out of range [0,%d)", i, len(elems)))
	}
	return elems[i]
}

func (h *Heap) HashLen(v Handle) int {
	return h.payload(v, TagHash).(*hashTable).len()
}

func (h *Heap) HashGet(v, key Handle) (Handle, bool) {
	return h.payload(v, TagHash).(*hashTable).get(h, key)
}

// HashKeys returns the keys in insertion order.
func (h *Heap) HashKeys(v Handle) []Handle {
	return h.payload(v, TagHash).(*hashTable).keys()
}

func (h *Heap) RangeBounds(v Handle) (begin, end Handle, exclusive bool) {
	p := h.payload(v, TagRange).(*rangePayload)
	return p.begin, p.end, p.exclusive
}

func (h *Heap) RegexpSource(v Handle) string {
	return h.payload(v, TagRegexp).(*regexpPayload).source
}

func (h *Heap) RegexpMatch(v Handle, s string) bool {
	return h.payload(v, TagRegexp).(*regexpPayload).compiled.MatchString(s)
}

func (h *Heap) StructName(v Handle) string {
	return h.payload(v, TagStruct).(*structPayload).name
}

func (h *Heap) StructMembers(v Handle) []string {
	p := h.payload(v, TagStruct).(*structPayload)
	out := make([]string, len(p.members))
	copy(out, p.members)
	return out
}

func (h *Heap) StructValues(v Handle) []Handle {
	p := h.payload(v, TagStruct).(*structPayload)
	out := make([]Handle, len(p.values))
	copy(out, p.values)
	return out
}

func (h *Heap) RationalValue(v Handle) *big.Rat {
	return new(big.Rat).Set(h.payload(v, TagRational).(*big.Rat))
}

func (h *Heap) ComplexValue(v Handle) complex128 {
	return h.payload(v, TagComplex).(complex128)
}

func (h *Heap) ObjectClass(v Handle) Handle {
	return h.payload(v, TagObject).(*objectPayload).class
}

func (h *Heap) ObjectIVar(v Handle, name string) (Handle, bool) {
	val, ok := h.payload(v, TagObject).(*objectPayload).ivars[name]
	return val, ok
}

// ObjectIVarNames returns instance variable names in sorted order.
func (h *Heap) ObjectIVarNames(v Handle) []string {
	ivars := h.payload(v, TagObject).(*objectPayload).ivars
	names := make([]string, 0, len(ivars))
	for name := range ivars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Heap) ClassName(v Handle) string {
	return h.payload(v, TagClass).(*classPayload).name
}

func (h *Heap) ClassSuper(v Handle) Handle {
	return h.payload(v, TagClass).(*classPayload).super
}

func (h *Heap) ModuleName(v Handle) string {
	return h.payload(v, TagModule).(*modulePayload).name
}

func (h *Heap) DataPayload(v Handle) any {
	return h.payload(v, TagData)
}
