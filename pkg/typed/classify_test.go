package typed_test

import (
	"math/big"
	"testing"

	"github.com/funvibe/tagval/internal/heap"
	"github.com/funvibe/tagval/pkg/typed"
)

func mustRegexp(t *testing.T, h *heap.Heap, src string) heap.Handle {
	t.Helper()
	re, err := h.NewRegexp(src)
	if err != nil {
		t.Fatalf("NewRegexp(%q): %v", src, err)
	}
	return re
}

func TestClassifyKinds(t *testing.T) {
	h := heap.New()

	big10, _ := new(big.Int).SetString("10000000000000000000000000000", 10)
	rat, err := h.NewRational(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	st, err := h.NewStruct("Pair", []string{"a", "b"}, []heap.Handle{h.NewInteger(1), h.NewInteger(2)})
	if err != nil {
		t.Fatal(err)
	}
	cls := h.NewClass("Thing", heap.NilHandle)

	cases := []struct {
		name string
		v    heap.Handle
		kind string
	}{
		{"fixnum", h.NewInteger(7), "Integer"},
		{"bignum", h.NewBigInt(big10), "Integer"},
		{"float", h.NewFloat(1.5), "Float"},
		{"rational", rat, "Rational"},
		{"complex", h.NewComplex(1, 2), "Complex"},
		{"string", h.NewString("s"), "String"},
		{"symbol", h.NewSymbol("sym"), "Symbol"},
		{"range", h.NewRange(h.NewInteger(1), h.NewInteger(9), false), "Range"},
		{"regexp", mustRegexp(t, h, "ab+"), "Regexp"},
		{"array", h.NewArray(nil), "Array"},
		{"hash", h.NewHash(nil, nil), "Hash"},
		{"struct", st, "Struct"},
		{"object", h.NewObject(cls, nil), "Object"},
		{"class", cls, "Class"},
		{"module", h.NewModule("Kernel"), "Module"},
		{"data", h.NewData("payload"), "Data"},
		{"true", heap.TrueHandle, "True"},
		{"false", heap.FalseHandle, "False"},
		{"nil", heap.NilHandle, "Nil"},
		{"undef", heap.UndefHandle, "Undef"},
		{"placeholder", h.NewPlaceholder(), "Raw"},
	}
	for _, c := range cases {
		variant := typed.Classify(h, c.v)
		if got := typed.Kind(variant); got != c.kind {
			t.Errorf("%s: Kind = %s, want %s", c.name, got, c.kind)
		}
		if got := typed.Materialize(variant); got != c.v {
			t.Errorf("%s: Materialize(Classify(v)) = %#x, want %#x", c.name, uint64(got), uint64(c.v))
		}
	}
}

func TestSingletonMaterialize(t *testing.T) {
	cases := []struct {
		v    typed.Variant
		want heap.Handle
	}{
		{typed.True{}, heap.TrueHandle},
		{typed.False{}, heap.FalseHandle},
		{typed.Nil{}, heap.NilHandle},
		{typed.Undef{}, heap.UndefHandle},
	}
	for _, c := range cases {
		if got := typed.Materialize(c.v); got != c.want {
			t.Errorf("Materialize(%T) = %#x, want %#x", c.v, uint64(got), uint64(c.want))
		}
	}
}

func TestIntegerCollapse(t *testing.T) {
	h := heap.New()

	small, ok := typed.Classify(h, h.NewInteger(-12)).(typed.Integer)
	if !ok {
		t.Fatal("fixnum did not classify as Integer")
	}
	if v, fits := small.Int64(); !fits || v != -12 {
		t.Errorf("Int64 = %d, %v", v, fits)
	}

	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	wide, ok := typed.Classify(h, h.NewBigInt(huge)).(typed.Integer)
	if !ok {
		t.Fatal("bignum did not classify as Integer")
	}
	if _, fits := wide.Int64(); fits {
		t.Error("huge value should not fit an int64")
	}
	if wide.BigInt().Cmp(huge) != 0 {
		t.Errorf("BigInt = %s, want %s", wide.BigInt(), huge)
	}
}

func TestRawCatchAll(t *testing.T) {
	h := heap.New()

	zombie := h.NewString("walking")
	h.Release(zombie)
	raw, ok := typed.Classify(h, zombie).(typed.Raw)
	if !ok {
		t.Fatalf("zombie classified as %s", typed.Kind(typed.Classify(h, zombie)))
	}
	if raw.Handle() != zombie {
		t.Error("Raw must carry the handle unchanged")
	}
	if raw.Tag() != heap.TagZombie {
		t.Errorf("Raw.Tag = %s, want ZOMBIE", raw.Tag())
	}

	// A placeholder filled after classification reports its present tag.
	ph := h.NewPlaceholder()
	raw = typed.Classify(h, ph).(typed.Raw)
	h.FillArray(ph, nil)
	if raw.Tag() != heap.TagArray {
		t.Errorf("filled placeholder Tag = %s, want ARRAY", raw.Tag())
	}

	// Handles left stale by compaction are raw too, carried unchanged.
	h2 := heap.New()
	gap := h2.NewString("gap")
	stale := h2.NewFloat(9.5)
	h2.Release(gap)
	h2.Sweep()
	if h2.Compact() == 0 {
		t.Fatal("expected a relocation")
	}
	moved, ok := typed.Classify(h2, stale).(typed.Raw)
	if !ok {
		t.Fatalf("stale handle classified as %s", typed.Kind(typed.Classify(h2, stale)))
	}
	if moved.Tag() != heap.TagMoved {
		t.Errorf("stale handle Tag = %s, want MOVED", moved.Tag())
	}
	if moved.Handle() != stale || typed.Materialize(moved) != stale {
		t.Error("forwarding marker must come back out unchanged")
	}
}

func TestClassifyReclaimedPanics(t *testing.T) {
	h := heap.New()
	v := h.NewString("gone")
	h.Release(v)
	h.Sweep()

	defer func() {
		if recover() == nil {
			t.Fatal("classifying a reclaimed handle should panic")
		}
	}()
	typed.Classify(h, v)
}

func TestCompositeAccessors(t *testing.T) {
	h := heap.New()

	rng := typed.Classify(h, h.NewRange(h.NewInteger(2), h.NewInteger(8), true)).(typed.Range)
	begin, _ := rng.Begin().(typed.Integer)
	end, _ := rng.End().(typed.Integer)
	bv, _ := begin.Int64()
	ev, _ := end.Int64()
	if bv != 2 || ev != 8 || !rng.Exclusive() {
		t.Errorf("range = %d...%d exclusive=%v", bv, ev, rng.Exclusive())
	}

	arr := typed.Classify(h, h.NewArray([]heap.Handle{h.NewString("x"), heap.NilHandle})).(typed.Array)
	if arr.Len() != 2 {
		t.Fatalf("Len = %d", arr.Len())
	}
	if s, ok := arr.At(0).(typed.String); !ok || s.Value() != "x" {
		t.Error("At(0) wrong")
	}
	if _, ok := arr.At(1).(typed.Nil); !ok {
		t.Error("At(1) should be Nil")
	}

	hash := typed.Classify(h, h.NewHash(
		[]heap.Handle{h.NewSymbol("k")},
		[]heap.Handle{h.NewInteger(3)},
	)).(typed.Hash)
	// Lookup goes by value, so a freshly classified key works.
	key := typed.Classify(h, h.NewSymbol("k"))
	got, ok := hash.Get(key)
	if !ok {
		t.Fatal("symbol key should hit")
	}
	if n, _ := got.(typed.Integer).Int64(); n != 3 {
		t.Errorf("Get = %d", n)
	}
	if keys := hash.Keys(); len(keys) != 1 || typed.Kind(keys[0]) != "Symbol" {
		t.Errorf("Keys = %v", keys)
	}

	cls := typed.Classify(h, h.NewClass("Animal", heap.NilHandle)).(typed.Class)
	if cls.Name() != "Animal" {
		t.Errorf("Name = %q", cls.Name())
	}
	if _, ok := cls.Super().(typed.Nil); !ok {
		t.Error("root superclass should be Nil")
	}

	obj := typed.Classify(h, h.NewObject(typed.Materialize(cls), map[string]heap.Handle{
		"age": h.NewInteger(4),
	})).(typed.Object)
	if got, ok := obj.IVar("age"); !ok || typed.Kind(got) != "Integer" {
		t.Error("IVar lookup wrong")
	}
	if _, ok := obj.IVar("missing"); ok {
		t.Error("missing ivar should miss")
	}
}
