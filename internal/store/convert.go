package store

import (
	"encoding/base64"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/genproto/googleapis/type/latlng"

	"flame/cli/internal/value"
)

// displayValue turns Firestore rich types into display-safe values.
func displayValue(in interface{}) (value.Value, bool) {
	switch t := in.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return value.NullValue(), true
		}
		return value.FloatValue(t), true
	case time.Time:
		return value.StringValue(t.UTC().Format(time.RFC3339Nano)), true
	case *firestore.DocumentRef:
		if t == nil {
			return value.NullValue(), true
		}
		return value.StringValue(relativePath(t.Path)), true
	case *latlng.LatLng:
		if t == nil {
			return value.NullValue(), true
		}
		m := value.NewMap()
		m.Set("latitude", value.FloatValue(t.GetLatitude()))
		m.Set("longitude", value.FloatValue(t.GetLongitude()))
		return value.ObjectValue(m), true
	case []byte:
		return value.StringValue(base64.StdEncoding.EncodeToString(t)), true
	case firestore.Vector64:
		items := make([]value.Value, len(t))
		for i, f := range t {
			items[i] = value.FloatValue(f)
		}
		return value.ArrayValue(items...), true
	case firestore.Vector32:
		items := make([]value.Value, len(t))
		for i, f := range t {
			items[i] = value.FloatValue(float64(f))
		}
		return value.ArrayValue(items...), true
	}
	return value.Value{}, false
}

// relativePath strips "projects/<p>/databases/<d>/documents/" from a resource name.
func relativePath(name string) string {
	const marker = "/documents/"
	if i := strings.Index(name, marker); i >= 0 {
		return name[i+len(marker):]
	}
	return name
}

func toDocument(snap *firestore.DocumentSnapshot) Document {
	doc := Document{
		ID:   snap.Ref.ID,
		Path: relativePath(snap.Ref.Path),
		Data: value.NewMap(),
	}
	if data := snap.Data(); data != nil {
		doc.Data = value.MapFromNative(data, displayValue)
	}
	return doc
}
