// Package inspect renders classified values as literal-style text.
package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/tagval/internal/heap"
	"github.com/funvibe/tagval/pkg/typed"
)

const maxDepth = 64

// Render returns a literal-style representation of v. Shared and cyclic
// structure is cut off with an ellipsis instead of recursing forever.
func Render(v typed.Variant) string {
	r := renderer{active: make(map[heap.Handle]bool)}
	var b strings.Builder
	r.value(&b, v, 0)
	return b.String()
}

type renderer struct {
	active map[heap.Handle]bool
}

func (r *renderer) value(b *strings.Builder, v typed.Variant, depth int) {
	if depth > maxDepth {
		b.WriteString("...")
		return
	}

	switch x := v.(type) {
	case typed.Integer:
		b.WriteString(x.BigInt().String())
	case typed.Float:
		b.WriteString(formatFloat(x.Float64()))
	case typed.Rational:
		rat := x.Rat()
		fmt.Fprintf(b, "%s/%sr", rat.Num().String(), rat.Denom().String())
	case typed.Complex:
		c := x.Complex128()
		if imag(c) < 0 {
			fmt.Fprintf(b, "%s-%si", formatFloat(real(c)), formatFloat(-imag(c)))
		} else {
			fmt.Fprintf(b, "%s+%si", formatFloat(real(c)), formatFloat(imag(c)))
		}
	case typed.String:
		b.WriteString(strconv.Quote(x.Value()))
	case typed.Symbol:
		b.WriteString(":" + x.Name())
	case typed.Regexp:
		b.WriteString("/" + x.Source() + "/")
	case typed.Range:
		r.value(b, x.Begin(), depth+1)
		if x.Exclusive() {
			b.WriteString("...")
		} else {
			b.WriteString("..")
		}
		r.value(b, x.End(), depth+1)
	case typed.Array:
		r.container(b, typed.Materialize(v), "[...]", func() {
			b.WriteString("[")
			for i, n := 0, x.Len(); i < n; i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				r.value(b, x.At(i), depth+1)
			}
			b.WriteString("]")
		})
	case typed.Hash:
		r.container(b, typed.Materialize(v), "{...}", func() {
			b.WriteString("{")
			for i, k := range x.Keys() {
				if i > 0 {
					b.WriteString(", ")
				}
				r.value(b, k, depth+1)
				b.WriteString(" => ")
				val, _ := x.Get(k)
				r.value(b, val, depth+1)
			}
			b.WriteString("}")
		})
	case typed.Struct:
		r.container(b, typed.Materialize(v), x.Name()+"(...)", func() {
			b.WriteString(x.Name())
			b.WriteString("(")
			values := x.Values()
			for i, member := range x.Members() {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(member)
				b.WriteString(": ")
				r.value(b, values[i], depth+1)
			}
			b.WriteString(")")
		})
	case typed.Object:
		r.container(b, typed.Materialize(v), "#<...>", func() {
			b.WriteString("#<")
			if c, ok := x.Class().(typed.Class); ok {
				b.WriteString(c.Name())
			} else {
				b.WriteString("?")
			}
			for _, name := range x.IVarNames() {
				val, _ := x.IVar(name)
				b.WriteString(" @")
				b.WriteString(name)
				b.WriteString("=")
				r.value(b, val, depth+1)
			}
			b.WriteString(">")
		})
	case typed.Class:
		b.WriteString(x.Name())
	case typed.Module:
		b.WriteString(x.Name())
	case typed.Data:
		fmt.Fprintf(b, "#<data %T>", x.Payload())
	case typed.Raw:
		fmt.Fprintf(b, "#<internal %s>", x.Tag())
	case typed.True:
		b.WriteString("true")
	case typed.False:
		b.WriteString("false")
	case typed.Nil:
		b.WriteString("nil")
	case typed.Undef:
		b.WriteString("undef")
	default:
		b.WriteString("#<unknown>")
	}
}

func (r *renderer) container(b *strings.Builder, h heap.Handle, cycle string, body func()) {
	if r.active[h] {
		b.WriteString(cycle)
		return
	}
	r.active[h] = true
	body()
	delete(r.active, h)
}

// formatFloat keeps a decimal point on round values so floats stay
// distinguishable from integers in rendered output.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && s != "NaN" {
		s += ".0"
	}
	return s
}
