package value

import (
	"fmt"
	"sort"
)

// Native converts v into the plain Go shapes backend SDKs accept:
// nil, bool, int64, float64, string, []interface{}, map[string]interface{}.
func (v Value) Native() interface{} {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	case Array:
		out := make([]interface{}, len(v.arr))
		for i, it := range v.arr {
			out[i] = it.Native()
		}
		return out
	case Object:
		return v.obj.Native()
	}
	return nil
}

func (m *Map) Native() map[string]interface{} {
	out := make(map[string]interface{}, m.Len())
	m.Range(func(k string, v Value) bool {
		out[k] = v.Native()
		return true
	})
	return out
}

// Converter maps backend-specific values that FromNative does not know about.
// It returns ok=false to let FromNative fall through to its default.
type Converter func(in interface{}) (Value, bool)

// FromNative converts decoded Go data into a Value. Map keys are sorted since
// Go maps carry no order. Types unknown to both conv and FromNative are
// rendered with fmt.
func FromNative(in interface{}, conv Converter) Value {
	if conv != nil {
		if v, ok := conv(in); ok {
			return v
		}
	}
	switch t := in.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case string:
		return StringValue(t)
	case []interface{}:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromNative(it, conv)
		}
		return ArrayValue(items...)
	case map[string]interface{}:
		return ObjectValue(MapFromNative(t, conv))
	}
	return StringValue(fmt.Sprint(in))
}

func MapFromNative(in map[string]interface{}, conv Converter) *Map {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := NewMap()
	for _, k := range keys {
		m.Set(k, FromNative(in[k], conv))
	}
	return m
}
