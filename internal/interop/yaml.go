// Package interop bridges classified values to interchange formats: YAML
// for configuration-shaped data and protobuf Struct values for wire
// surfaces. Both directions go through the typed layer, never around it.
package interop

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/tagval/internal/heap"
	"github.com/funvibe/tagval/pkg/typed"
)

const maxDepth = 64

// ToYAML encodes v as a YAML document. Symbols, rationals, complexes and
// regexps flatten to their literal spelling; runtime-only categories
// (objects, classes, modules, data, raw internals, undefined) have no YAML
// shape and error out.
func ToYAML(v typed.Variant) ([]byte, error) {
	plain, err := toPlain(v, 0)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(plain)
}

func toPlain(v typed.Variant, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("interop: value nested deeper than %d", maxDepth)
	}
	switch x := v.(type) {
	case typed.Integer:
		if n, ok := x.Int64(); ok {
			return n, nil
		}
		return x.BigInt().String(), nil
	case typed.Float:
		return x.Float64(), nil
	case typed.Rational:
		rat := x.Rat()
		return fmt.Sprintf("%s/%sr", rat.Num(), rat.Denom()), nil
	case typed.Complex:
		c := x.Complex128()
		return fmt.Sprintf("%g%+gi", real(c), imag(c)), nil
	case typed.String:
		return x.Value(), nil
	case typed.Symbol:
		return ":" + x.Name(), nil
	case typed.Regexp:
		return "/" + x.Source() + "/", nil
	case typed.Range:
		begin, err := toPlain(x.Begin(), depth+1)
		if err != nil {
			return nil, err
		}
		end, err := toPlain(x.End(), depth+1)
		if err != nil {
			return nil, err
		}
		return map[string]any{"begin": begin, "end": end, "exclusive": x.Exclusive()}, nil
	case typed.Array:
		out := make([]any, x.Len())
		for i := range out {
			el, err := toPlain(x.At(i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = el
		}
		return out, nil
	case typed.Hash:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			key, err := plainKey(k)
			if err != nil {
				return nil, err
			}
			if _, taken := out[key]; taken {
				return nil, fmt.Errorf("interop: keys collide on %q after flattening", key)
			}
			val, _ := x.Get(k)
			pv, err := toPlain(val, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = pv
		}
		return out, nil
	case typed.Struct:
		out := make(map[string]any, len(x.Members()))
		values := x.Values()
		for i, member := range x.Members() {
			pv, err := toPlain(values[i], depth+1)
			if err != nil {
				return nil, err
			}
			out[member] = pv
		}
		return out, nil
	case typed.True:
		return true, nil
	case typed.False:
		return false, nil
	case typed.Nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("interop: %s has no YAML representation", typed.Kind(v))
	}
}

func plainKey(k typed.Variant) (string, error) {
	switch x := k.(type) {
	case typed.String:
		return x.Value(), nil
	case typed.Symbol:
		return x.Name(), nil
	case typed.Integer:
		return x.BigInt().String(), nil
	default:
		return "", fmt.Errorf("interop: %s keys cannot cross into YAML", typed.Kind(k))
	}
}

// FromYAML decodes a YAML document into heap values. Mappings become
// hashes, sequences arrays, and scalars infer to integer, float, bool,
// string or nil — yaml.v3 hands integers back as int, not float64.
func FromYAML(h *heap.Heap, data []byte) (heap.Handle, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return heap.NilHandle, fmt.Errorf("interop: YAML parse error: %v", err)
	}
	return fromPlain(h, raw, 0)
}

func fromPlain(h *heap.Heap, raw any, depth int) (heap.Handle, error) {
	if depth > maxDepth {
		return heap.NilHandle, fmt.Errorf("interop: document nested deeper than %d", maxDepth)
	}
	switch v := raw.(type) {
	case nil:
		return h.Nil(), nil
	case bool:
		return h.NewBool(v), nil
	case int:
		return h.NewInteger(int64(v)), nil
	case int64:
		return h.NewInteger(v), nil
	case float64:
		return h.NewFloat(v), nil
	case string:
		return h.NewString(v), nil
	case []any:
		elems := make([]heap.Handle, len(v))
		for i, el := range v {
			ev, err := fromPlain(h, el, depth+1)
			if err != nil {
				return heap.NilHandle, err
			}
			elems[i] = ev
		}
		return h.NewArray(elems), nil
	case map[string]any:
		keys := make([]heap.Handle, 0, len(v))
		values := make([]heap.Handle, 0, len(v))
		for k, el := range v {
			ev, err := fromPlain(h, el, depth+1)
			if err != nil {
				return heap.NilHandle, err
			}
			keys = append(keys, h.NewString(k))
			values = append(values, ev)
		}
		return h.NewHash(keys, values), nil
	case map[any]any:
		keys := make([]heap.Handle, 0, len(v))
		values := make([]heap.Handle, 0, len(v))
		for k, el := range v {
			kv, err := fromPlain(h, k, depth+1)
			if err != nil {
				return heap.NilHandle, err
			}
			ev, err := fromPlain(h, el, depth+1)
			if err != nil {
				return heap.NilHandle, err
			}
			keys = append(keys, kv)
			values = append(values, ev)
		}
		return h.NewHash(keys, values), nil
	default:
		return heap.NilHandle, fmt.Errorf("interop: unsupported YAML node %T", raw)
	}
}
