package heap

// Tag identifies the dynamic category of a Handle's referent.
type Tag uint8

const (
	// TagNone marks a reclaimed slot. Handles carrying it are dangling;
	// the only thing the rest of the system does with them is fail fast.
	TagNone Tag = iota

	TagFixnum
	TagBignum
	TagFloat
	TagString
	TagSymbol
	TagArray
	TagHash
	TagRange
	TagRegexp
	TagStruct
	TagRational
	TagComplex
	TagObject
	TagClass
	TagModule
	TagData

	TagNil
	TagTrue
	TagFalse
	TagUndef

	// Internal categories. These never come out of the public constructors
	// but are reachable on a live heap: placeholders while a snapshot is
	// being rebuilt, released-but-unswept slots, and forwarding markers
	// left behind by compaction.
	TagInternal
	TagZombie
	TagMoved
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "NONE"
	case TagFixnum:
		return "FIXNUM"
	case TagBignum:
		return "BIGNUM"
	case TagFloat:
		return "FLOAT"
	case TagString:
		return "STRING"
	case TagSymbol:
		return "SYMBOL"
	case TagArray:
		return "ARRAY"
	case TagHash:
		return "HASH"
	case TagRange:
		return "RANGE"
	case TagRegexp:
		return "REGEXP"
	case TagStruct:
		return "STRUCT"
	case TagRational:
		return "RATIONAL"
	case TagComplex:
		return "COMPLEX"
	case TagObject:
		return "OBJECT"
	case TagClass:
		return "CLASS"
	case TagModule:
		return "MODULE"
	case TagData:
		return "DATA"
	case TagNil:
		return "NIL"
	case TagTrue:
		return "TRUE"
	case TagFalse:
		return "FALSE"
	case TagUndef:
		return "UNDEF"
	case TagInternal:
		return "INTERNAL"
	case TagZombie:
		return "ZOMBIE"
	case TagMoved:
		return "MOVED"
	default:
		return "UNKNOWN"
	}
}

// Internal reports whether the tag is one of the transient host-side
// categories that have no typed representation.
func (t Tag) Internal() bool {
	return t == TagInternal || t == TagZombie || t == TagMoved
}
