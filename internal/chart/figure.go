package chart

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch rejects series whose label and value counts differ.
var ErrLengthMismatch = errors.New("chart series lengths differ")

// DefaultTitle is used when a descriptor has no title.
const DefaultTitle = "Chart"

// Point is one labeled value.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Figure is a validated chart ready to render.
type Figure struct {
	Kind   Kind    `json:"kind"`
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// Labels returns the point labels in order.
func (f *Figure) Labels() []string {
	out := make([]string, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Label
	}
	return out
}

// Total sums the point values.
func (f *Figure) Total() float64 {
	var sum float64
	for _, p := range f.Points {
		sum += p.Value
	}
	return sum
}

// Build validates a descriptor for its type. Unsupported types and missing
// or empty series yield (nil, nil): nothing to draw, nothing to report.
// Series of different lengths are rejected with ErrLengthMismatch.
func Build(spec Spec) (*Figure, error) {
	kind := spec.Kind()

	var labels []string
	var values []float64
	switch kind {
	case KindPie:
		labels, values = spec.Labels, spec.Values
	case KindBar, KindLine:
		labels, values = spec.X, spec.Y
	default:
		return nil, nil
	}
	if len(labels) == 0 || len(values) == 0 {
		return nil, nil
	}
	if len(labels) != len(values) {
		return nil, fmt.Errorf("%w: %s has %d labels and %d values", ErrLengthMismatch, kind, len(labels), len(values))
	}

	title := spec.Title
	if title == "" {
		title = DefaultTitle
	}
	fig := &Figure{Kind: kind, Title: title, Points: make([]Point, len(labels))}
	for i := range labels {
		fig.Points[i] = Point{Label: labels[i], Value: values[i]}
	}
	return fig, nil
}
