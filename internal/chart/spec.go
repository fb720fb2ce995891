// Package chart decodes chart descriptors produced by the model and renders
// them as standalone HTML charts.
package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind is a supported chart type.
type Kind string

const (
	KindPie  Kind = "pie"
	KindBar  Kind = "bar"
	KindLine Kind = "line"
)

// ErrMalformed marks a descriptor that is not valid JSON or has fields of
// the wrong shape.
var ErrMalformed = errors.New("malformed chart descriptor")

// Spec is a chart descriptor. Pie charts use Labels/Values; bar and line
// charts use X/Y. Raw keeps the descriptor exactly as it was embedded.
type Spec struct {
	Type   string          `json:"type"`
	Title  string          `json:"title,omitempty"`
	Labels []string        `json:"labels,omitempty"`
	Values []float64       `json:"values,omitempty"`
	X      []string        `json:"x,omitempty"`
	Y      []float64       `json:"y,omitempty"`
	Raw    json.RawMessage `json:"-"`
}

// Kind returns the lowercased type tag.
func (s Spec) Kind() Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s.Type)))
}

// MarshalJSON emits the original descriptor when one was decoded.
func (s Spec) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	type plain Spec
	return json.Marshal(plain(s))
}

const descriptorSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "type":   {"type": "string"},
    "title":  {"type": "string"},
    "labels": {"type": "array", "items": {"type": ["string", "number"]}},
    "x":      {"type": "array", "items": {"type": ["string", "number"]}},
    "values": {"type": "array", "items": {"type": "number"}},
    "y":      {"type": "array", "items": {"type": "number"}}
  }
}`

var descriptorSchema = sync.OnceValue(func() *jsonschema.Schema {
	return jsonschema.MustCompileString("chart-descriptor.json", descriptorSchemaJSON)
})

// Decode parses and shape-checks a descriptor. It does not check that the
// fields required by the chart type are present; Build does that.
func Decode(data []byte) (*Spec, error) {
	data = bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}
	if err := descriptorSchema().Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m := v.(map[string]any)
	spec := &Spec{Raw: json.RawMessage(data)}
	spec.Type, _ = m["type"].(string)
	spec.Title, _ = m["title"].(string)
	spec.Labels = stringsOf(m["labels"])
	spec.X = stringsOf(m["x"])
	var err error
	if spec.Values, err = numbersOf("values", m["values"]); err != nil {
		return nil, err
	}
	if spec.Y, err = numbersOf("y", m["y"]); err != nil {
		return nil, err
	}
	return spec, nil
}

func stringsOf(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch x := it.(type) {
		case string:
			out = append(out, x)
		case json.Number:
			out = append(out, x.String())
		}
	}
	return out
}

// numbersOf converts a schema-checked array of numbers. A value outside the
// float64 range is malformed rather than skipped, so series keep their length.
func numbersOf(field string, v any) ([]float64, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]float64, 0, len(items))
	for i, it := range items {
		n, ok := it.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a number", ErrMalformed, field, i)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformed, field, i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
