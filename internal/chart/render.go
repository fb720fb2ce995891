package chart

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrMissingKey = errors.New("chart key is required")

var keyUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Render writes fig as a standalone HTML page. key becomes the chart's DOM
// id and must be unique among charts shown together.
func Render(w io.Writer, fig *Figure, key string) error {
	if fig == nil {
		return errors.New("nil figure")
	}
	if key == "" {
		return ErrMissingKey
	}

	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fig.Title,
			ChartID:   keyUnsafe.ReplaceAllString(key, "_"),
		}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
	}

	switch fig.Kind {
	case KindPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(global...)
		data := make([]opts.PieData, len(fig.Points))
		for i, p := range fig.Points {
			data[i] = opts.PieData{Name: p.Label, Value: p.Value}
		}
		pie.AddSeries(fig.Title, data)
		return pie.Render(w)
	case KindBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		data := make([]opts.BarData, len(fig.Points))
		for i, p := range fig.Points {
			data[i] = opts.BarData{Name: p.Label, Value: p.Value}
		}
		bar.SetXAxis(fig.Labels()).AddSeries(fig.Title, data)
		return bar.Render(w)
	case KindLine:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		data := make([]opts.LineData, len(fig.Points))
		for i, p := range fig.Points {
			data[i] = opts.LineData{Name: p.Label, Value: p.Value}
		}
		line.SetXAxis(fig.Labels()).AddSeries(fig.Title, data)
		return line.Render(w)
	}
	return fmt.Errorf("unsupported chart kind %q", fig.Kind)
}
