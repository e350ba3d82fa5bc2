package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsKeyOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta": 1, "alpha": {"y": true, "b": null}, "mid": [1, 2.5, "x"]}`))
	require.NoError(t, err)
	require.Equal(t, Object, v.Kind())

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Object().Keys())

	alpha, ok := v.Object().Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, alpha.Object().Keys())

	b, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"y":true,"b":null},"mid":[1,2.5,"x"]}`, string(b))
}

func TestParseNumbers(t *testing.T) {
	v, err := Parse([]byte(`[7, -3, 1.25, 1e3, 123456789012345678901234567890]`))
	require.NoError(t, err)
	items := v.Items()
	require.Len(t, items, 5)

	assert.Equal(t, Int, items[0].Kind())
	assert.Equal(t, int64(7), items[0].Int())
	assert.Equal(t, int64(-3), items[1].Int())
	assert.Equal(t, Float, items[2].Kind())
	assert.Equal(t, 1.25, items[2].Float())
	assert.Equal(t, Float, items[3].Kind())
	assert.Equal(t, Float, items[4].Kind())
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":}`, `[1,]`, `{"a":1} {"b":2}`, `nope`} {
		_, err := Parse([]byte(in))
		assert.ErrorIs(t, err, ErrSyntax, "input %q", in)
	}
}

func TestMapSetKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", IntValue(1))
	m.Set("b", IntValue(2))
	m.Set("a", StringValue("x"))
	m.Set("c", BoolValue(true))

	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
	got, _ := m.Get("a")
	assert.Equal(t, "x", got.Str())

	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
}

func TestMapMergeIsShallow(t *testing.T) {
	dst, err := Parse([]byte(`{"name": "Ann", "tags": {"a": 1}, "age": 30}`))
	require.NoError(t, err)
	src, err := Parse([]byte(`{"tags": {"b": 2}, "city": "Oslo"}`))
	require.NoError(t, err)

	dst.Object().Merge(src.Object())

	b, err := dst.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ann","tags":{"b":2},"age":30,"city":"Oslo"}`, string(b))
}

func TestCloneIsDeep(t *testing.T) {
	v, err := Parse([]byte(`{"nested": {"n": 1}}`))
	require.NoError(t, err)
	c := v.Clone()

	nested, _ := c.Object().Get("nested")
	nested.Object().Set("n", IntValue(2))

	orig, _ := v.Object().Get("nested")
	n, _ := orig.Object().Get("n")
	assert.Equal(t, int64(1), n.Int())
	assert.False(t, v.Equal(c))
}

func TestNativeRoundTrip(t *testing.T) {
	v, err := Parse([]byte(`{"b": [1, "two", false, null], "a": {"x": 1.5}}`))
	require.NoError(t, err)

	native := v.Object().Native()
	assert.Equal(t, map[string]interface{}{
		"b": []interface{}{int64(1), "two", false, nil},
		"a": map[string]interface{}{"x": 1.5},
	}, native)

	back := MapFromNative(native, nil)
	// Go maps lose order, so keys come back sorted
	assert.Equal(t, []string{"a", "b"}, back.Keys())
	assert.True(t, back.Equal(v.Object()))
}

func TestFromNativeConverter(t *testing.T) {
	type point struct{ X, Y int }
	conv := func(in interface{}) (Value, bool) {
		if p, ok := in.(point); ok {
			return ArrayValue(IntValue(int64(p.X)), IntValue(int64(p.Y))), true
		}
		return Value{}, false
	}
	v := FromNative(map[string]interface{}{"p": point{1, 2}, "s": "ok"}, conv)

	b, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"p":[1,2],"s":"ok"}`, string(b))
}

func TestScalar(t *testing.T) {
	cases := []struct {
		v    Value
		want string
		ok   bool
	}{
		{StringValue("abc"), "abc", true},
		{IntValue(42), "42", true},
		{FloatValue(2.5), "2.5", true},
		{BoolValue(true), "true", true},
		{FloatValue(1e21), "1e+21", true},
		{FloatValue(-2.5e22), "-2.5e+22", true},
		{FloatValue(1.5e-7), "1.5e-7", true},
		{FloatValue(123456.75), "123456.75", true},
		{FloatValue(0.000001), "0.000001", true},
		{FloatValue(0), "0", true},
		{NullValue(), "", false},
		{ArrayValue(), "", false},
		{ObjectValue(nil), "", false},
	}
	for _, c := range cases {
		got, ok := c.v.Scalar()
		assert.Equal(t, c.ok, ok, c.v.Kind().String())
		assert.Equal(t, c.want, got, c.v.Kind().String())
	}
}

func TestMarshalNonFiniteFloatIsNull(t *testing.T) {
	v := ArrayValue(FloatValue(math.NaN()), FloatValue(math.Inf(1)), FloatValue(math.Inf(-1)), FloatValue(0.5))
	b, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[null,null,null,0.5]`, string(b))
}
