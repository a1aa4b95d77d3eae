// Package snapshot serializes a value graph rooted at one handle into a
// versioned binary form and rebuilds it on another (or the same) heap.
// Shared and cyclic structure is preserved through node ids; the loader
// allocates placeholder slots for forward references and fills them in, so
// a truncated or corrupt snapshot can never surface a half-built value.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/big"

	"github.com/funvibe/tagval/internal/heap"
)

var magic = [4]byte{'T', 'V', 'S', 'N'}

const version byte = 0x01

// node is one value in the flattened graph. Which fields are meaningful
// depends on Tag.
type node struct {
	Tag     uint8
	Int     int64    // fixnum
	Big     []byte   // bignum magnitude
	Neg     bool     // bignum sign
	Float   float64  // float
	Str     string   // string, symbol, regexp source, struct/class/module name
	Rat     string   // rational, in a/b form
	Re, Im  float64  // complex
	Refs    []uint32 // array elements, hash values, struct values, object ivar values, range begin/end
	Keys    []uint32 // hash keys
	Members []string // struct members, object ivar names
	Excl    bool     // range exclusivity
	Super   uint32   // class superclass, object class
	HasSup  bool     // class has a non-nil superclass
}

type graph struct {
	Root  uint32
	Nodes []node
}

type encoder struct {
	h     *heap.Heap
	ids   map[heap.Handle]uint32
	nodes []node
}

// Encode flattens the graph reachable from root. Embedder data and
// internal categories (placeholders, zombies, forwarding markers) have no
// portable form and fail the encode; a reclaimed root fails too, before
// anything is written.
func Encode(h *heap.Heap, root heap.Handle) ([]byte, error) {
	e := &encoder{h: h, ids: make(map[heap.Handle]uint32)}
	rootID, err := e.visit(root)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(version)
	if err := gob.NewEncoder(&buf).Encode(graph{Root: rootID, Nodes: e.nodes}); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %v", err)
	}
	return buf.Bytes(), nil
}

func (e *encoder) visit(v heap.Handle) (uint32, error) {
	if id, ok := e.ids[v]; ok {
		return id, nil
	}
	id := uint32(len(e.nodes))
	e.ids[v] = id
	e.nodes = append(e.nodes, node{})

	tag := e.h.TagOf(v)
	n := node{Tag: uint8(tag)}
	switch tag {
	case heap.TagFixnum, heap.TagBignum:
		b := e.h.IntegerValue(v)
		if b.IsInt64() {
			n.Tag = uint8(heap.TagFixnum)
			n.Int = b.Int64()
		} else {
			n.Tag = uint8(heap.TagBignum)
			n.Big = b.Bytes()
			n.Neg = b.Sign() < 0
		}
	case heap.TagFloat:
		n.Float = e.h.FloatValue(v)
	case heap.TagString:
		n.Str = e.h.StringValue(v)
	case heap.TagSymbol:
		n.Str = e.h.SymbolName(v)
	case heap.TagRegexp:
		n.Str = e.h.RegexpSource(v)
	case heap.TagRational:
		n.Rat = e.h.RationalValue(v).RatString()
	case heap.TagComplex:
		c := e.h.ComplexValue(v)
		n.Re, n.Im = real(c), imag(c)
	case heap.TagArray:
		for i, l := 0, e.h.ArrayLen(v); i < l; i++ {
			ref, err := e.visit(e.h.ArrayAt(v, i))
			if err != nil {
				return 0, err
			}
			n.Refs = append(n.Refs, ref)
		}
	case heap.TagHash:
		for _, k := range e.h.HashKeys(v) {
			kid, err := e.visit(k)
			if err != nil {
				return 0, err
			}
			val, _ := e.h.HashGet(v, k)
			vid, err := e.visit(val)
			if err != nil {
				return 0, err
			}
			n.Keys = append(n.Keys, kid)
			n.Refs = append(n.Refs, vid)
		}
	case heap.TagRange:
		begin, end, exclusive := e.h.RangeBounds(v)
		bid, err := e.visit(begin)
		if err != nil {
			return 0, err
		}
		eid, err := e.visit(end)
		if err != nil {
			return 0, err
		}
		n.Refs = []uint32{bid, eid}
		n.Excl = exclusive
	case heap.TagStruct:
		n.Str = e.h.StructName(v)
		n.Members = e.h.StructMembers(v)
		for _, val := range e.h.StructValues(v) {
			ref, err := e.visit(val)
			if err != nil {
				return 0, err
			}
			n.Refs = append(n.Refs, ref)
		}
	case heap.TagObject:
		cid, err := e.visit(e.h.ObjectClass(v))
		if err != nil {
			return 0, err
		}
		n.Super = cid
		for _, name := range e.h.ObjectIVarNames(v) {
			val, _ := e.h.ObjectIVar(v, name)
			ref, err := e.visit(val)
			if err != nil {
				return 0, err
			}
			n.Members = append(n.Members, name)
			n.Refs = append(n.Refs, ref)
		}
	case heap.TagClass:
		n.Str = e.h.ClassName(v)
		if super := e.h.ClassSuper(v); super != heap.NilHandle {
			sid, err := e.visit(super)
			if err != nil {
				return 0, err
			}
			n.Super = sid
			n.HasSup = true
		}
	case heap.TagModule:
		n.Str = e.h.ModuleName(v)
	case heap.TagNil, heap.TagTrue, heap.TagFalse, heap.TagUndef:
		// The tag is the whole node.
	case heap.TagNone:
		return 0, fmt.Errorf("snapshot: reclaimed handle in graph")
	default:
		return 0, fmt.Errorf("snapshot: %s values cannot be snapshotted", tag)
	}

	e.nodes[id] = n
	return id, nil
}

// Decode rebuilds a snapshot on h and returns the root handle. Container
// nodes come up as placeholders first and are filled once every node has a
// handle, hashes last; every hash is then re-bucketed, since keys that were
// still placeholders when a hash was filled change hash code on fill.
func Decode(h *heap.Heap, data []byte) (heap.Handle, error) {
	if len(data) < len(magic)+1 || !bytes.Equal(data[:len(magic)], magic[:]) {
		return heap.NilHandle, fmt.Errorf("snapshot: bad magic")
	}
	if data[len(magic)] != version {
		return heap.NilHandle, fmt.Errorf("snapshot: unsupported version 0x%02x", data[len(magic)])
	}

	var g graph
	if err := gob.NewDecoder(bytes.NewReader(data[len(magic)+1:])).Decode(&g); err != nil {
		return heap.NilHandle, fmt.Errorf("snapshot: decode: %v", err)
	}
	if int(g.Root) >= len(g.Nodes) {
		return heap.NilHandle, fmt.Errorf("snapshot: root id %d out of range", g.Root)
	}
	for i := range g.Nodes {
		if err := checkRefs(&g.Nodes[i], len(g.Nodes)); err != nil {
			return heap.NilHandle, fmt.Errorf("snapshot: node %d: %v", i, err)
		}
	}

	handles := make([]heap.Handle, len(g.Nodes))
	for i := range g.Nodes {
		v, err := scalarHandle(h, &g.Nodes[i])
		if err != nil {
			return heap.NilHandle, fmt.Errorf("snapshot: node %d: %v", i, err)
		}
		handles[i] = v
	}

	// Fill everything except hashes, then hashes.
	for pass := 0; pass < 2; pass++ {
		for i := range g.Nodes {
			n := &g.Nodes[i]
			isHash := heap.Tag(n.Tag) == heap.TagHash
			if (pass == 0) == isHash {
				continue
			}
			fillContainer(h, n, handles[i], handles)
		}
	}
	// A hash keyed by another container may have bucketed that key while it
	// was a placeholder. The whole graph is live now, so rebuild the indexes.
	for i := range g.Nodes {
		if heap.Tag(g.Nodes[i].Tag) == heap.TagHash {
			h.Rehash(handles[i])
		}
	}
	return handles[g.Root], nil
}

func checkRefs(n *node, total int) error {
	for _, r := range n.Refs {
		if int(r) >= total {
			return fmt.Errorf("ref %d out of range", r)
		}
	}
	for _, r := range n.Keys {
		if int(r) >= total {
			return fmt.Errorf("key ref %d out of range", r)
		}
	}
	if int(n.Super) >= total {
		return fmt.Errorf("class/object ref %d out of range", n.Super)
	}
	switch heap.Tag(n.Tag) {
	case heap.TagHash:
		if len(n.Keys) != len(n.Refs) {
			return fmt.Errorf("hash with %d keys and %d values", len(n.Keys), len(n.Refs))
		}
	case heap.TagRange:
		if len(n.Refs) != 2 {
			return fmt.Errorf("range with %d bounds", len(n.Refs))
		}
	case heap.TagStruct, heap.TagObject:
		if len(n.Members) != len(n.Refs) {
			return fmt.Errorf("%d members but %d values", len(n.Members), len(n.Refs))
		}
	}
	return nil
}

// scalarHandle builds leaf nodes directly and placeholders for everything
// that references other nodes.
func scalarHandle(h *heap.Heap, n *node) (heap.Handle, error) {
	switch tag := heap.Tag(n.Tag); tag {
	case heap.TagFixnum:
		return h.NewInteger(n.Int), nil
	case heap.TagBignum:
		b := new(big.Int).SetBytes(n.Big)
		if n.Neg {
			b.Neg(b)
		}
		return h.NewBigInt(b), nil
	case heap.TagFloat:
		return h.NewFloat(n.Float), nil
	case heap.TagString:
		return h.NewString(n.Str), nil
	case heap.TagSymbol:
		return h.NewSymbol(n.Str), nil
	case heap.TagRegexp:
		return h.NewRegexp(n.Str)
	case heap.TagRational:
		r, ok := new(big.Rat).SetString(n.Rat)
		if !ok {
			return heap.NilHandle, fmt.Errorf("bad rational %q", n.Rat)
		}
		num, den := r.Num(), r.Denom()
		if !num.IsInt64() || !den.IsInt64() {
			return heap.NilHandle, fmt.Errorf("rational %q out of range", n.Rat)
		}
		return h.NewRational(num.Int64(), den.Int64())
	case heap.TagComplex:
		return h.NewComplex(n.Re, n.Im), nil
	case heap.TagModule:
		return h.NewModule(n.Str), nil
	case heap.TagNil:
		return h.Nil(), nil
	case heap.TagTrue:
		return h.True(), nil
	case heap.TagFalse:
		return h.False(), nil
	case heap.TagUndef:
		return h.Undef(), nil
	case heap.TagArray, heap.TagHash, heap.TagRange, heap.TagStruct, heap.TagObject, heap.TagClass:
		return h.NewPlaceholder(), nil
	default:
		return heap.NilHandle, fmt.Errorf("unsupported node tag %s", tag)
	}
}

func fillContainer(h *heap.Heap, n *node, ph heap.Handle, handles []heap.Handle) {
	switch heap.Tag(n.Tag) {
	case heap.TagArray:
		elems := make([]heap.Handle, len(n.Refs))
		for i, r := range n.Refs {
			elems[i] = handles[r]
		}
		h.FillArray(ph, elems)
	case heap.TagHash:
		keys := make([]heap.Handle, len(n.Keys))
		values := make([]heap.Handle, len(n.Refs))
		for i := range n.Keys {
			keys[i] = handles[n.Keys[i]]
			values[i] = handles[n.Refs[i]]
		}
		h.FillHash(ph, keys, values)
	case heap.TagRange:
		h.FillRange(ph, handles[n.Refs[0]], handles[n.Refs[1]], n.Excl)
	case heap.TagStruct:
		values := make([]heap.Handle, len(n.Refs))
		for i, r := range n.Refs {
			values[i] = handles[r]
		}
		h.FillStruct(ph, n.Str, n.Members, values)
	case heap.TagObject:
		ivars := make(map[string]heap.Handle, len(n.Members))
		for i, name := range n.Members {
			ivars[name] = handles[n.Refs[i]]
		}
		h.FillObject(ph, handles[n.Super], ivars)
	case heap.TagClass:
		super := heap.NilHandle
		if n.HasSup {
			super = handles[n.Super]
		}
		h.FillClass(ph, n.Str, super)
	}
}
