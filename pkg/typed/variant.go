// Package typed re-exposes heap handles under a closed set of strongly
// typed wrappers. Classify is the single trusted boundary: it checks a
// handle's tag once and builds the matching wrapper, so wrapper accessors
// can trust the underlying representation without re-checking.
package typed

import (
	"math/big"

	"github.com/funvibe/tagval/internal/heap"
)

// Variant is the closed sum of every typed view a handle can classify to.
// It is sealed: only this package can add cases, so a type switch over all
// of them is total.
type Variant interface {
	variant()
}

// Integer is an integer of either encoding (inline fixnum or heap bignum).
type Integer struct {
	h   *heap.Heap
	val heap.Handle
}

// Float is a floating point number.
type Float struct {
	h   *heap.Heap
	val heap.Handle
}

// Rational is an exact fraction.
type Rational struct {
	h   *heap.Heap
	val heap.Handle
}

// Complex is a complex number.
type Complex struct {
	h   *heap.Heap
	val heap.Handle
}

// String is a byte string.
type String struct {
	h   *heap.Heap
	val heap.Handle
}

// Symbol is an interned name.
type Symbol struct {
	h   *heap.Heap
	val heap.Handle
}

// Range is a begin..end interval.
type Range struct {
	h   *heap.Heap
	val heap.Handle
}

// Regexp is a compiled pattern.
type Regexp struct {
	h   *heap.Heap
	val heap.Handle
}

// Array is an ordered sequence.
type Array struct {
	h   *heap.Heap
	val heap.Handle
}

// Hash is a keyed collection.
type Hash struct {
	h   *heap.Heap
	val heap.Handle
}

// Struct is a named record with fixed members.
type Struct struct {
	h   *heap.Heap
	val heap.Handle
}

// Object is a plain instance of some class.
type Object struct {
	h   *heap.Heap
	val heap.Handle
}

// Class is a class.
type Class struct {
	h   *heap.Heap
	val heap.Handle
}

// Module is a module.
type Module struct {
	h   *heap.Heap
	val heap.Handle
}

// Data wraps an embedder-owned payload.
type Data struct {
	h   *heap.Heap
	val heap.Handle
}

// Raw is the catch-all for internal or transient heap categories that have
// no typed representation. The handle comes back out of Materialize
// unchanged.
type Raw struct {
	h   *heap.Heap
	val heap.Handle
}

// True, False, Nil and Undef are the payload-less constants. They carry no
// handle-derived state; Materialize returns the canonical handle.
type (
	True  struct{}
	False struct{}
	Nil   struct{}
	Undef struct{}
)

func (Integer) variant()  {}
func (Float) variant()    {}
func (Rational) variant() {}
func (Complex) variant()  {}
func (String) variant()   {}
func (Symbol) variant()   {}
func (Range) variant()    {}
func (Regexp) variant()   {}
func (Array) variant()    {}
func (Hash) variant()     {}
func (Struct) variant()   {}
func (Object) variant()   {}
func (Class) variant()    {}
func (Module) variant()   {}
func (Data) variant()     {}
func (Raw) variant()      {}
func (True) variant()     {}
func (False) variant()    {}
func (Nil) variant()      {}
func (Undef) variant()    {}

// Int64 returns the value and true when it fits in an int64.
func (i Integer) Int64() (int64, bool) {
	b := i.h.IntegerValue(i.val)
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// BigInt returns the value as a fresh big.Int regardless of encoding.
func (i Integer) BigInt() *big.Int { return i.h.IntegerValue(i.val) }

func (f Float) Float64() float64 { return f.h.FloatValue(f.val) }

func (r Rational) Rat() *big.Rat { return r.h.RationalValue(r.val) }

func (c Complex) Complex128() complex128 { return c.h.ComplexValue(c.val) }

func (s String) Value() string { return s.h.StringValue(s.val) }
func (s String) Len() int      { return len(s.h.StringValue(s.val)) }

func (s Symbol) Name() string { return s.h.SymbolName(s.val) }

func (r Range) Begin() Variant {
	begin, _, _ := r.h.RangeBounds(r.val)
	return Classify(r.h, begin)
}

func (r Range) End() Variant {
	_, end, _ := r.h.RangeBounds(r.val)
	return Classify(r.h, end)
}

// Exclusive reports whether the range excludes its end.
func (r Range) Exclusive() bool {
	_, _, exclusive := r.h.RangeBounds(r.val)
	return exclusive
}

func (r Regexp) Source() string            { return r.h.RegexpSource(r.val) }
func (r Regexp) MatchString(s string) bool { return r.h.RegexpMatch(r.val, s) }

func (a Array) Len() int { return a.h.ArrayLen(a.val) }

// At classifies the element at index i. Out-of-range indexes panic like a
// slice access.
func (a Array) At(i int) Variant { return Classify(a.h, a.h.ArrayAt(a.val, i)) }

func (m Hash) Len() int { return m.h.HashLen(m.val) }

// Get looks up key by deep value equality.
func (m Hash) Get(key Variant) (Variant, bool) {
	v, ok := m.h.HashGet(m.val, Materialize(key))
	if !ok {
		return nil, false
	}
	return Classify(m.h, v), true
}

// Keys returns the keys in insertion order.
func (m Hash) Keys() []Variant {
	raw := m.h.HashKeys(m.val)
	out := make([]Variant, len(raw))
	for i, k := range raw {
		out[i] = Classify(m.h, k)
	}
	return out
}

func (s Struct) Name() string      { return s.h.StructName(s.val) }
func (s Struct) Members() []string { return s.h.StructMembers(s.val) }

// Values classifies the member values in declaration order.
func (s Struct) Values() []Variant {
	raw := s.h.StructValues(s.val)
	out := make([]Variant, len(raw))
	for i, v := range raw {
		out[i] = Classify(s.h, v)
	}
	return out
}

// Class classifies the receiver's class handle.
func (o Object) Class() Variant { return Classify(o.h, o.h.ObjectClass(o.val)) }

func (o Object) IVarNames() []string { return o.h.ObjectIVarNames(o.val) }

func (o Object) IVar(name string) (Variant, bool) {
	v, ok := o.h.ObjectIVar(o.val, name)
	if !ok {
		return nil, false
	}
	return Classify(o.h, v), true
}

func (c Class) Name() string { return c.h.ClassName(c.val) }

// Super classifies the superclass handle; a root class yields Nil.
func (c Class) Super() Variant { return Classify(c.h, c.h.ClassSuper(c.val)) }

func (m Module) Name() string { return m.h.ModuleName(m.val) }

func (d Data) Payload() any { return d.h.DataPayload(d.val) }

// Tag re-reads the handle's current category, so a placeholder that was
// filled after classification reports its present state.
func (r Raw) Tag() heap.Tag { return r.h.TagOf(r.val) }

// Handle exposes the wrapped word for embedders that need to pass it back
// to the kernel.
func (r Raw) Handle() heap.Handle { return r.val }
