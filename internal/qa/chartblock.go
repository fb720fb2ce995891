package qa

import (
	"strings"

	"github.com/dgallion1/smartextract/internal/chart"
)

const (
	chartOpen  = "[CHART_DATA]"
	chartClose = "[/CHART_DATA]"
)

// Split is a model response separated into display text and chart.
type Split struct {
	Text  string
	Chart *chart.Spec
	// Dropped holds the decode error of a chart block that was removed
	// from Text without producing a chart.
	Dropped error
}

// SplitChart separates the first [CHART_DATA]...[/CHART_DATA] block from a
// response. A block that fails to decode is still removed from the text.
// Without a complete block the response is returned unchanged.
func SplitChart(response string) Split {
	start := strings.Index(response, chartOpen)
	if start < 0 {
		return Split{Text: response}
	}
	rest := response[start+len(chartOpen):]
	end := strings.Index(rest, chartClose)
	if end < 0 {
		return Split{Text: response}
	}

	inner := rest[:end]
	text := strings.TrimSpace(response[:start] + rest[end+len(chartClose):])

	spec, err := chart.Decode([]byte(stripCodeFence(inner)))
	if err != nil {
		return Split{Text: text, Dropped: err}
	}
	return Split{Text: text, Chart: spec}
}
