package heap

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Containers nested deeper than this fall back to identity comparison,
// which also bounds pathological cyclic graphs.
const maxCompareDepth = 256

// Equal implements deep value equality: numbers compare numerically across
// encodings, strings and containers compare element-wise, and objects,
// classes, modules and data compare by identity.
func (h *Heap) Equal(a, b Handle) bool {
	return h.equalDepth(a, b, 0)
}

func (h *Heap) equalDepth(a, b Handle, depth int) bool {
	if a == b {
		return true
	}
	ta, tb := h.TagOf(a), h.TagOf(b)

	// Fixnum and bignum are one category with two encodings.
	if (ta == TagFixnum || ta == TagBignum) && (tb == TagFixnum || tb == TagBignum) {
		return h.IntegerValue(a).Cmp(h.IntegerValue(b)) == 0
	}
	if ta != tb {
		return false
	}
	if depth > maxCompareDepth {
		return h.sameSlot(a, b)
	}

	switch ta {
	case TagFloat:
		return h.FloatValue(a) == h.FloatValue(b)
	case TagString:
		return h.StringValue(a) == h.StringValue(b)
	case TagSymbol:
		// Interned: distinct handles mean distinct symbols, except across
		// heaps where a name check is still the right answer.
		return h.SymbolName(a) == h.SymbolName(b)
	case TagArray:
		n := h.ArrayLen(a)
		if n != h.ArrayLen(b) {
			return false
		}
		for i := 0; i < n; i++ {
			if !h.equalDepth(h.ArrayAt(a, i), h.ArrayAt(b, i), depth+1) {
				return false
			}
		}
		return true
	case TagHash:
		if h.HashLen(a) != h.HashLen(b) {
			return false
		}
		for _, k := range h.HashKeys(a) {
			av, _ := h.HashGet(a, k)
			bv, ok := h.HashGet(b, k)
			if !ok || !h.equalDepth(av, bv, depth+1) {
				return false
			}
		}
		return true
	case TagRange:
		ab, ae, ax := h.RangeBounds(a)
		bb, be, bx := h.RangeBounds(b)
		return ax == bx && h.equalDepth(ab, bb, depth+1) && h.equalDepth(ae, be, depth+1)
	case TagRegexp:
		return h.RegexpSource(a) == h.RegexpSource(b)
	case TagRational:
		return h.RationalValue(a).Cmp(h.RationalValue(b)) == 0
	case TagComplex:
		return h.ComplexValue(a) == h.ComplexValue(b)
	case TagStruct:
		if h.StructName(a) != h.StructName(b) {
			return false
		}
		av, bv := h.StructValues(a), h.StructValues(b)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !h.equalDepth(av[i], bv[i], depth+1) {
				return false
			}
		}
		return true
	default:
		return h.sameSlot(a, b)
	}
}

func (h *Heap) sameSlot(a, b Handle) bool {
	sa, sb := h.slotFor(a), h.slotFor(b)
	return sa != nil && sa == sb
}

// hashOf returns the bucket code used by hash tables. Equal values must
// hash equal, so the code is derived from the same canonical view Equal
// compares.
func (h *Heap) hashOf(v Handle) uint32 {
	return h.hashDepth(v, 0)
}

func (h *Heap) hashDepth(v Handle, depth int) uint32 {
	if depth > maxCompareDepth {
		return 0
	}
	f := fnv.New32a()
	var word [8]byte

	tag := h.TagOf(v)
	// Collapse the integer encodings onto one hash domain.
	code := tag
	if code == TagBignum {
		code = TagFixnum
	}
	f.Write([]byte{byte(code)})

	switch tag {
	case TagFixnum, TagBignum:
		f.Write(h.IntegerValue(v).Bytes())
	case TagFloat:
		binary.BigEndian.PutUint64(word[:], math.Float64bits(h.FloatValue(v)))
		f.Write(word[:])
	case TagString:
		f.Write([]byte(h.StringValue(v)))
	case TagSymbol:
		f.Write([]byte(h.SymbolName(v)))
	case TagArray:
		for i, n := 0, h.ArrayLen(v); i < n; i++ {
			binary.BigEndian.PutUint64(word[:], uint64(h.hashDepth(h.ArrayAt(v, i), depth+1)))
			f.Write(word[:])
		}
	case TagHash:
		// Order-insensitive: Equal ignores insertion order, so the hash
		// must as well.
		var acc uint32
		for _, k := range h.HashKeys(v) {
			acc ^= h.hashDepth(k, depth+1)
		}
		binary.BigEndian.PutUint64(word[:], uint64(acc))
		f.Write(word[:])
	case TagRange:
		begin, end, exclusive := h.RangeBounds(v)
		binary.BigEndian.PutUint64(word[:], uint64(h.hashDepth(begin, depth+1)))
		f.Write(word[:])
		binary.BigEndian.PutUint64(word[:], uint64(h.hashDepth(end, depth+1)))
		f.Write(word[:])
		if exclusive {
			f.Write([]byte{1})
		}
	case TagStruct:
		f.Write([]byte(h.StructName(v)))
		for _, val := range h.StructValues(v) {
			binary.BigEndian.PutUint64(word[:], uint64(h.hashDepth(val, depth+1)))
			f.Write(word[:])
		}
	case TagRegexp:
		f.Write([]byte(h.RegexpSource(v)))
	case TagRational:
		f.Write([]byte(h.RationalValue(v).RatString()))
	case TagComplex:
		c := h.ComplexValue(v)
		binary.BigEndian.PutUint64(word[:], math.Float64bits(real(c)))
		f.Write(word[:])
		binary.BigEndian.PutUint64(word[:], math.Float64bits(imag(c)))
		f.Write(word[:])
	case TagNil, TagTrue, TagFalse, TagUndef:
		// The tag byte is the whole identity.
	default:
		// Identity-keyed categories hash by resolved slot, so handles left
		// stale by compaction keep hashing with their referent.
		binary.BigEndian.PutUint64(word[:], uint64(h.resolveIndex(v)))
		f.Write(word[:])
	}
	return f.Sum32()
}
