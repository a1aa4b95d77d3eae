package interop

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/tagval/internal/heap"
	"github.com/funvibe/tagval/pkg/typed"
)

// ToStruct encodes v as a protobuf Struct value for the wire. Numbers that
// survive a float64 round-trip travel as numbers; wider integers travel as
// decimal strings. The same runtime-only categories that YAML rejects are
// rejected here.
func ToStruct(v typed.Variant) (*structpb.Value, error) {
	return toStruct(v, 0)
}

func toStruct(v typed.Variant, depth int) (*structpb.Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("interop: value nested deeper than %d", maxDepth)
	}
	switch x := v.(type) {
	case typed.Integer:
		if n, ok := x.Int64(); ok && n == int64(float64(n)) {
			return structpb.NewNumberValue(float64(n)), nil
		}
		return structpb.NewStringValue(x.BigInt().String()), nil
	case typed.Float:
		return structpb.NewNumberValue(x.Float64()), nil
	case typed.Rational:
		rat := x.Rat()
		return structpb.NewStringValue(fmt.Sprintf("%s/%sr", rat.Num(), rat.Denom())), nil
	case typed.Complex:
		c := x.Complex128()
		return structpb.NewStringValue(fmt.Sprintf("%g%+gi", real(c), imag(c))), nil
	case typed.String:
		return structpb.NewStringValue(x.Value()), nil
	case typed.Symbol:
		return structpb.NewStringValue(":" + x.Name()), nil
	case typed.Regexp:
		return structpb.NewStringValue("/" + x.Source() + "/"), nil
	case typed.Range:
		begin, err := toStruct(x.Begin(), depth+1)
		if err != nil {
			return nil, err
		}
		end, err := toStruct(x.End(), depth+1)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"begin":     begin,
			"end":       end,
			"exclusive": structpb.NewBoolValue(x.Exclusive()),
		}}), nil
	case typed.Array:
		values := make([]*structpb.Value, x.Len())
		for i := range values {
			el, err := toStruct(x.At(i), depth+1)
			if err != nil {
				return nil, err
			}
			values[i] = el
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case typed.Hash:
		fields := make(map[string]*structpb.Value, x.Len())
		for _, k := range x.Keys() {
			key, err := plainKey(k)
			if err != nil {
				return nil, err
			}
			if _, taken := fields[key]; taken {
				return nil, fmt.Errorf("interop: keys collide on %q after flattening", key)
			}
			val, _ := x.Get(k)
			pv, err := toStruct(val, depth+1)
			if err != nil {
				return nil, err
			}
			fields[key] = pv
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	case typed.Struct:
		fields := make(map[string]*structpb.Value, len(x.Members()))
		values := x.Values()
		for i, member := range x.Members() {
			pv, err := toStruct(values[i], depth+1)
			if err != nil {
				return nil, err
			}
			fields[member] = pv
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	case typed.True:
		return structpb.NewBoolValue(true), nil
	case typed.False:
		return structpb.NewBoolValue(false), nil
	case typed.Nil:
		return structpb.NewNullValue(), nil
	default:
		return nil, fmt.Errorf("interop: %s has no wire representation", typed.Kind(v))
	}
}

// FromStruct decodes a protobuf Struct value into heap values. Numbers with
// no fractional part come back as integers, mirroring the YAML inference.
func FromStruct(h *heap.Heap, v *structpb.Value) (heap.Handle, error) {
	return fromStruct(h, v, 0)
}

func fromStruct(h *heap.Heap, v *structpb.Value, depth int) (heap.Handle, error) {
	if depth > maxDepth {
		return heap.NilHandle, fmt.Errorf("interop: value nested deeper than %d", maxDepth)
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue, nil:
		return h.Nil(), nil
	case *structpb.Value_BoolValue:
		return h.NewBool(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
			return h.NewInteger(int64(f)), nil
		}
		return h.NewFloat(f), nil
	case *structpb.Value_StringValue:
		return h.NewString(k.StringValue), nil
	case *structpb.Value_ListValue:
		in := k.ListValue.GetValues()
		elems := make([]heap.Handle, len(in))
		for i, el := range in {
			ev, err := fromStruct(h, el, depth+1)
			if err != nil {
				return heap.NilHandle, err
			}
			elems[i] = ev
		}
		return h.NewArray(elems), nil
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		keys := make([]heap.Handle, 0, len(fields))
		values := make([]heap.Handle, 0, len(fields))
		for name, el := range fields {
			ev, err := fromStruct(h, el, depth+1)
			if err != nil {
				return heap.NilHandle, err
			}
			keys = append(keys, h.NewString(name))
			values = append(values, ev)
		}
		return h.NewHash(keys, values), nil
	default:
		return heap.NilHandle, fmt.Errorf("interop: unsupported wire node %T", v.GetKind())
	}
}
