package interop

import (
	"strings"
	"testing"

	"github.com/funvibe/tagval/internal/heap"
	"github.com/funvibe/tagval/internal/literal"
	"github.com/funvibe/tagval/pkg/typed"
)

func classify(t *testing.T, h *heap.Heap, src string) typed.Variant {
	t.Helper()
	v, err := literal.Read(h, src)
	if err != nil {
		t.Fatalf("Read(%q): %v", src, err)
	}
	return typed.Classify(h, v)
}

func TestYAMLRoundTrip(t *testing.T) {
	h := heap.New()

	data, err := ToYAML(classify(t, h, `{:name => "rex", :age => 4, "tags" => [:good, :dog], :nope => nil}`))
	if err != nil {
		t.Fatal(err)
	}

	back, err := FromYAML(h, data)
	if err != nil {
		t.Fatal(err)
	}
	if h.TagOf(back) != heap.TagHash {
		t.Fatalf("decoded tag = %s", h.TagOf(back))
	}
	age, ok := h.HashGet(back, h.NewString("age"))
	if !ok {
		t.Fatal("age key missing after round trip")
	}
	if h.IntegerValue(age).Int64() != 4 {
		t.Errorf("age = %s", h.IntegerValue(age))
	}
	tags, _ := h.HashGet(back, h.NewString("tags"))
	if h.ArrayLen(tags) != 2 || h.StringValue(h.ArrayAt(tags, 0)) != ":good" {
		t.Error("symbol flattening wrong")
	}
}

func TestYAMLWideInteger(t *testing.T) {
	h := heap.New()
	data, err := ToYAML(classify(t, h, "123456789012345678901234567890"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"123456789012345678901234567890"`) {
		t.Errorf("wide integer should travel as a string: %s", data)
	}
}

func TestYAMLRange(t *testing.T) {
	h := heap.New()
	data, err := ToYAML(classify(t, h, "1...5"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{"begin: 1", "end: 5", "exclusive: true"} {
		if !strings.Contains(s, want) {
			t.Errorf("range document missing %q:\n%s", want, s)
		}
	}
}

func TestYAMLRejectsRuntimeCategories(t *testing.T) {
	h := heap.New()
	cls := h.NewClass("C", heap.NilHandle)
	for _, v := range []heap.Handle{
		cls,
		h.NewObject(cls, nil),
		h.NewModule("M"),
		h.NewData(struct{}{}),
		heap.UndefHandle,
	} {
		if _, err := ToYAML(typed.Classify(h, v)); err == nil {
			t.Errorf("%s should have no YAML shape", h.TagOf(v))
		}
	}

	// Non-scalar hash keys are rejected too.
	bad := h.NewHash([]heap.Handle{h.NewArray(nil)}, []heap.Handle{heap.NilHandle})
	if _, err := ToYAML(typed.Classify(h, bad)); err == nil {
		t.Error("array keys should not cross into YAML")
	}
}

func TestFlattenedKeyCollision(t *testing.T) {
	h := heap.New()

	// Distinct heap keys that spell the same flattened map key must not
	// silently drop an entry.
	for _, src := range []string{
		`{1 => "a", "1" => "b"}`,
		`{:a => 1, "a" => 2}`,
	} {
		v := classify(t, h, src)
		if _, err := ToYAML(v); err == nil || !strings.Contains(err.Error(), "collide") {
			t.Errorf("ToYAML(%s) error = %v, want key collision", src, err)
		}
		if _, err := ToStruct(v); err == nil || !strings.Contains(err.Error(), "collide") {
			t.Errorf("ToStruct(%s) error = %v, want key collision", src, err)
		}
	}
}

func TestStructRoundTrip(t *testing.T) {
	h := heap.New()

	pv, err := ToStruct(classify(t, h, `{"n" => 7, "f" => 1.5, "b" => true, "nothing" => nil, "xs" => [1, "two"]}`))
	if err != nil {
		t.Fatal(err)
	}

	back, err := FromStruct(h, pv)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := h.HashGet(back, h.NewString("n"))
	if h.TagOf(n) != heap.TagFixnum || h.IntegerValue(n).Int64() != 7 {
		t.Error("integral number should come back as an integer")
	}
	f, _ := h.HashGet(back, h.NewString("f"))
	if h.TagOf(f) != heap.TagFloat || h.FloatValue(f) != 1.5 {
		t.Error("float lost")
	}
	b, _ := h.HashGet(back, h.NewString("b"))
	if b != heap.TrueHandle {
		t.Error("bool lost")
	}
	nothing, _ := h.HashGet(back, h.NewString("nothing"))
	if nothing != heap.NilHandle {
		t.Error("null lost")
	}
	xs, _ := h.HashGet(back, h.NewString("xs"))
	if h.ArrayLen(xs) != 2 {
		t.Error("list lost")
	}
}

func TestStructWideInteger(t *testing.T) {
	h := heap.New()
	pv, err := ToStruct(classify(t, h, "36893488147419103232")) // 2^65
	if err != nil {
		t.Fatal(err)
	}
	if pv.GetStringValue() != "36893488147419103232" {
		t.Errorf("wide integer should travel as a decimal string, got %v", pv)
	}
}

func TestStructRejectsRuntimeCategories(t *testing.T) {
	h := heap.New()
	if _, err := ToStruct(typed.Classify(h, h.NewModule("M"))); err == nil {
		t.Error("module should have no wire representation")
	}
	if _, err := ToStruct(typed.Classify(h, heap.UndefHandle)); err == nil {
		t.Error("undef should have no wire representation")
	}
}
