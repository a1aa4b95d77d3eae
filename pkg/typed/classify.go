package typed

import (
	"fmt"

	"github.com/funvibe/tagval/internal/heap"
)

// Classify queries v's tag once and returns the matching Variant case.
// Every tag the heap can report maps to exactly one case: the two integer
// encodings collapse to Integer, the payload-less constants map to their
// singletons, and internal categories (placeholders, zombies, forwarding
// markers) degrade to Raw rather than failing.
//
// The one input that does not produce a Variant is a reclaimed handle:
// classifying a TagNone handle is irrecoverable caller misuse and panics
// before any wrapper is built.
func Classify(h *heap.Heap, v heap.Handle) Variant {
	switch tag := h.TagOf(v); tag {
	case heap.TagNone:
		panic("typed: attempt to classify a reclaimed handle")
	case heap.TagFixnum, heap.TagBignum:
		return Integer{h: h, val: v}
	case heap.TagFloat:
		return Float{h: h, val: v}
	case heap.TagRational:
		return Rational{h: h, val: v}
	case heap.TagComplex:
		return Complex{h: h, val: v}
	case heap.TagString:
		return String{h: h, val: v}
	case heap.TagSymbol:
		return Symbol{h: h, val: v}
	case heap.TagRange:
		return Range{h: h, val: v}
	case heap.TagRegexp:
		return Regexp{h: h, val: v}
	case heap.TagArray:
		return Array{h: h, val: v}
	case heap.TagHash:
		return Hash{h: h, val: v}
	case heap.TagStruct:
		return Struct{h: h, val: v}
	case heap.TagObject:
		return Object{h: h, val: v}
	case heap.TagClass:
		return Class{h: h, val: v}
	case heap.TagModule:
		return Module{h: h, val: v}
	case heap.TagData:
		return Data{h: h, val: v}
	case heap.TagTrue:
		return True{}
	case heap.TagFalse:
		return False{}
	case heap.TagNil:
		return Nil{}
	case heap.TagUndef:
		return Undef{}
	default:
		// TagInternal, TagZombie, TagMoved, and any category added to the
		// kernel before this switch learns about it.
		return Raw{h: h, val: v}
	}
}

// Materialize is the total reverse mapping: one arm per case, returning the
// handle each payload wraps, or the canonical constant for the singletons.
// For every live handle v, Materialize(Classify(h, v)) == v.
func Materialize(v Variant) heap.Handle {
	switch x := v.(type) {
	case Integer:
		return x.val
	case Float:
		return x.val
	case Rational:
		return x.val
	case Complex:
		return x.val
	case String:
		return x.val
	case Symbol:
		return x.val
	case Range:
		return x.val
	case Regexp:
		return x.val
	case Array:
		return x.val
	case Hash:
		return x.val
	case Struct:
		return x.val
	case Object:
		return x.val
	case Class:
		return x.val
	case Module:
		return x.val
	case Data:
		return x.val
	case Raw:
		return x.val
	case True:
		return heap.TrueHandle
	case False:
		return heap.FalseHandle
	case Nil:
		return heap.NilHandle
	case Undef:
		return heap.UndefHandle
	default:
		panic(fmt.Sprintf("typed: %T is not a Variant case", v))
	}
}

// Kind names the active case, for diagnostics and wire surfaces.
func Kind(v Variant) string {
	switch v.(type) {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Rational:
		return "Rational"
	case Complex:
		return "Complex"
	case String:
		return "String"
	case Symbol:
		return "Symbol"
	case Range:
		return "Range"
	case Regexp:
		return "Regexp"
	case Array:
		return "Array"
	case Hash:
		return "Hash"
	case Struct:
		return "Struct"
	case Object:
		return "Object"
	case Class:
		return "Class"
	case Module:
		return "Module"
	case Data:
		return "Data"
	case Raw:
		return "Raw"
	case True:
		return "True"
	case False:
		return "False"
	case Nil:
		return "Nil"
	case Undef:
		return "Undef"
	default:
		return "Unknown"
	}
}
