package formatter

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"flame/cli/internal/store"
	"flame/cli/internal/value"
)

// IDField is the synthetic key carrying the document id in rendered output.
const IDField = "_id"

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// FormatOne returns the display form of doc. With includeID the synthetic
// _id comes first and wins over a data key of the same name.
func FormatOne(doc store.Document, includeID bool) *value.Map {
	if !includeID {
		if doc.Data == nil {
			return value.NewMap()
		}
		return doc.Data
	}
	out := value.NewMap()
	out.Set(IDField, value.StringValue(doc.ID))
	doc.Data.Range(func(k string, v value.Value) bool {
		if k != IDField {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// FormatMany renders docs in order. No docs renders as an empty sequence.
func FormatMany(docs []store.Document, includeID bool) value.Value {
	items := make([]value.Value, 0, len(docs))
	for _, d := range docs {
		items = append(items, value.ObjectValue(FormatOne(d, includeID)))
	}
	return value.ArrayValue(items...)
}

func Render(v value.Value, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(toNode(v)); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		return json.MarshalIndent(v, "", "  ")
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}

func toNode(v value.Value) *yaml.Node {
	switch v.Kind() {
	case value.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(v.Items()) == 0 {
			n.Style = yaml.FlowStyle
		}
		for _, it := range v.Items() {
			n.Content = append(n.Content, toNode(it))
		}
		return n
	case value.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if v.Object().Len() == 0 {
			n.Style = yaml.FlowStyle
		}
		v.Object().Range(func(k string, it value.Value) bool {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toNode(it))
			return true
		})
		return n
	case value.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case value.Bool:
		s, _ := v.Scalar()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: s}
	case value.Int:
		s, _ := v.Scalar()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}
	case value.Float:
		s, _ := v.Scalar()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str()}
}
