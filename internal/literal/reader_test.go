package literal

import (
	"strings"
	"testing"

	"github.com/funvibe/tagval/internal/heap"
)

func TestReadScalars(t *testing.T) {
	h := heap.New()
	cases := []struct {
		src string
		tag heap.Tag
	}{
		{"42", heap.TagFixnum},
		{"-42", heap.TagFixnum},
		{"+7", heap.TagFixnum},
		{"123456789012345678901234567890", heap.TagBignum},
		{"3.14", heap.TagFloat},
		{"-0.5", heap.TagFloat},
		{"3/4r", heap.TagRational},
		{"5r", heap.TagRational},
		{"2i", heap.TagComplex},
		{"1+2i", heap.TagComplex},
		{"1.5-0.5i", heap.TagComplex},
		{`"hello"`, heap.TagString},
		{":name", heap.TagSymbol},
		{"/a+b/", heap.TagRegexp},
		{"1..5", heap.TagRange},
		{"1...5", heap.TagRange},
		{"[1, 2]", heap.TagArray},
		{"[]", heap.TagArray},
		{`{:a => 1}`, heap.TagHash},
		{"{}", heap.TagHash},
		{"nil", heap.TagNil},
		{"true", heap.TagTrue},
		{"false", heap.TagFalse},
		{"undef", heap.TagUndef},
	}
	for _, c := range cases {
		v, err := Read(h, c.src)
		if err != nil {
			t.Errorf("Read(%q): %v", c.src, err)
			continue
		}
		if got := h.TagOf(v); got != c.tag {
			t.Errorf("Read(%q) tag = %s, want %s", c.src, got, c.tag)
		}
	}
}

func TestReadValues(t *testing.T) {
	h := heap.New()

	v, err := Read(h, `"tab\there"`)
	if err != nil {
		t.Fatal(err)
	}
	if h.StringValue(v) != "tab\there" {
		t.Errorf("escape handling: %q", h.StringValue(v))
	}

	v, err = Read(h, "-3/4r")
	if err != nil {
		t.Fatal(err)
	}
	if h.RationalValue(v).RatString() != "-3/4" {
		t.Errorf("rational = %s", h.RationalValue(v).RatString())
	}

	v, err = Read(h, "1-2i")
	if err != nil {
		t.Fatal(err)
	}
	if h.ComplexValue(v) != complex(1, -2) {
		t.Errorf("complex = %v", h.ComplexValue(v))
	}

	v, err = Read(h, `[1, "two", [3]]`)
	if err != nil {
		t.Fatal(err)
	}
	if h.ArrayLen(v) != 3 {
		t.Fatalf("nested array len = %d", h.ArrayLen(v))
	}
	inner := h.ArrayAt(v, 2)
	if h.TagOf(inner) != heap.TagArray || h.ArrayLen(inner) != 1 {
		t.Error("nested array not preserved")
	}

	v, err = Read(h, `{"k" => [1..3], :s => nil}`)
	if err != nil {
		t.Fatal(err)
	}
	if h.HashLen(v) != 2 {
		t.Fatalf("hash len = %d", h.HashLen(v))
	}
	if got, ok := h.HashGet(v, h.NewSymbol("s")); !ok || got != heap.NilHandle {
		t.Error("symbol key lookup wrong")
	}

	v, err = Read(h, `"a"..."z"`)
	if err != nil {
		t.Fatal(err)
	}
	begin, end, exclusive := h.RangeBounds(v)
	if h.StringValue(begin) != "a" || h.StringValue(end) != "z" || !exclusive {
		t.Error("string range wrong")
	}
}

func TestReadErrors(t *testing.T) {
	h := heap.New()
	cases := []struct {
		src  string
		want string
	}{
		{"", "unexpected end"},
		{"1 2", "after literal"},
		{"[1, 2", "unterminated array"},
		{"{1 => ", "unexpected end"},
		{"{1, 2}", "expected '=>'"},
		{`"open`, "bad token"},
		{"bogus", "unknown constant"},
		{"1/0r", "zero denominator"},
		{"/(/", "error parsing regexp"},
		{"-", "expected number after sign"},
	}
	for _, c := range cases {
		_, err := Read(h, c.src)
		if err == nil {
			t.Errorf("Read(%q) should fail", c.src)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("Read(%q) error = %q, want substring %q", c.src, err, c.want)
		}
	}
}

func TestErrorsCarryPosition(t *testing.T) {
	h := heap.New()
	_, err := Read(h, "[1, bogus]")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "1:5") {
		t.Errorf("error lacks position: %q", err)
	}
}
