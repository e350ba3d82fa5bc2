package store

import (
	"math"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/type/latlng"

	"flame/cli/internal/value"
)

func TestDisplayValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.FixedZone("X", 3600))
	data := map[string]interface{}{
		"at":    ts,
		"geo":   &latlng.LatLng{Latitude: 59.9, Longitude: 10.7},
		"raw":   []byte("hi"),
		"vec":   firestore.Vector64{1, 2.5},
		"tags":  []interface{}{"a", int64(2)},
		"inner": map[string]interface{}{"ok": true},
	}

	m := value.MapFromNative(data, displayValue)
	b, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"at": "2024-01-02T02:04:05.000006Z",
		"geo": {"latitude": 59.9, "longitude": 10.7},
		"inner": {"ok": true},
		"raw": "aGk=",
		"tags": ["a", 2],
		"vec": [1, 2.5]
	}`, string(b))
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "users/u1", relativePath("projects/p/databases/(default)/documents/users/u1"))
	assert.Equal(t, "users/u1", relativePath("users/u1"))
}

func TestDisplayValueNonFiniteFloats(t *testing.T) {
	data := map[string]interface{}{
		"nan":  math.NaN(),
		"pos":  math.Inf(1),
		"neg":  math.Inf(-1),
		"ok":   1.5,
		"list": []interface{}{math.NaN(), 2.0},
	}

	m := value.MapFromNative(data, displayValue)
	b, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"list": [null, 2], "nan": null, "neg": null, "ok": 1.5, "pos": null}`, string(b))
}

func TestSetOptions(t *testing.T) {
	ab := value.NewMap()
	ab.Set("a", value.IntValue(1))
	ab.Set("b", value.ObjectValue(nil))

	cases := []struct {
		name string
		data *value.Map
		opts SetOptions
		want []firestore.SetOption
	}{
		{"overwrite", ab, SetOptions{}, nil},
		{"overwrite empty", value.NewMap(), SetOptions{}, nil},
		{"merge top-level fields", ab, SetOptions{Merge: true},
			[]firestore.SetOption{firestore.Merge(firestore.FieldPath{"a"}, firestore.FieldPath{"b"})}},
		{"merge empty", value.NewMap(), SetOptions{Merge: true},
			[]firestore.SetOption{firestore.MergeAll}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, setOptions(c.data, c.opts))
		})
	}
}
