package heap

// Handle is the fixed-width word a heap uses to represent any value.
// Small integers and the special constants are encoded immediately in the
// word; everything else is a reference into a Heap's slot table.
//
// Encoding:
//
//	xxxx...xxx1  fixnum (63-bit signed, shifted left by one)
//	0x00         false
//	0x08         nil
//	0x14         true
//	0x34         undefined
//	iiii...ii00  slot reference, index+1 in the upper 56 bits
//
// A Handle is borrowed: its validity window is controlled by the heap that
// produced it. Holding one does not keep the referent alive across Release
// and Sweep.
type Handle uint64

const (
	FalseHandle Handle = 0x00
	NilHandle   Handle = 0x08
	TrueHandle  Handle = 0x14
	UndefHandle Handle = 0x34
)

const (
	fixnumMax = int64(1)<<62 - 1
	fixnumMin = -(int64(1) << 62)
)

func fitsFixnum(v int64) bool {
	return v >= fixnumMin && v <= fixnumMax
}

func fixnumHandle(v int64) Handle {
	return Handle(uint64(v)<<1 | 1)
}

// IsFixnum reports whether h is an immediate integer.
func (h Handle) IsFixnum() bool {
	return h&1 == 1
}

func (h Handle) fixnum() int64 {
	return int64(h) >> 1
}

// IsSpecial reports whether h is one of the payload-less constants.
func (h Handle) IsSpecial() bool {
	switch h {
	case FalseHandle, NilHandle, TrueHandle, UndefHandle:
		return true
	}
	return false
}

// IsImmediate reports whether h carries its value in the word itself,
// without referencing a heap slot.
func (h Handle) IsImmediate() bool {
	return h.IsFixnum() || h.IsSpecial()
}

func slotHandle(idx int) Handle {
	return Handle(uint64(idx+1) << 8)
}

// slotIndex returns the slot table index for a reference handle, or -1 for
// immediates and malformed words.
func (h Handle) slotIndex() int {
	if h.IsFixnum() || h&0xff != 0 || h < 0x100 {
		return -1
	}
	return int(h>>8) - 1
}

func specialTag(h Handle) Tag {
	switch h {
	case FalseHandle:
		return TagFalse
	case NilHandle:
		return TagNil
	case TrueHandle:
		return TagTrue
	case UndefHandle:
		return TagUndef
	}
	return TagNone
}
