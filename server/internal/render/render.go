// Package render draws ChartData as PNG images with go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/launchdash/launchdash/pkg/types"
)

// ErrNothingToDraw is returned for a chart with no drawable values.
var ErrNothingToDraw = errors.New("render: chart has no values")

const (
	width  = 800
	height = 480
)

// PNG writes c to w. xRange is the payload axis of a scatter chart and is
// ignored for pie charts.
func PNG(w io.Writer, c types.ChartData, xRange types.PayloadRange) error {
	switch c.Kind {
	case types.ChartPie:
		return pie(w, c)
	case types.ChartScatter:
		return scatter(w, c, xRange)
	default:
		return fmt.Errorf("render: unknown chart kind %q", c.Kind)
	}
}

func pie(w io.Writer, c types.ChartData) error {
	values := make([]chart.Value, 0, len(c.Slices))
	for _, s := range c.Slices {
		// Zero slices have no area and break go-chart's normalisation.
		if s.Value == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: s.Label + " (" + strconv.Itoa(s.Value) + ")",
			Value: float64(s.Value),
		})
	}
	if len(values) == 0 {
		return ErrNothingToDraw
	}

	pc := chart.PieChart{
		Title:  c.Title,
		Width:  height,
		Height: height,
		Values: values,
	}
	if err := pc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render: pie: %w", err)
	}
	return nil
}

func scatter(w io.Writer, c types.ChartData, xRange types.PayloadRange) error {
	if len(c.Points) == 0 {
		return ErrNothingToDraw
	}

	// One series per booster category so each gets its own colour and legend entry.
	groups := map[string]*chart.ContinuousSeries{}
	for _, p := range c.Points {
		s, ok := groups[p.BoosterVersionCategory]
		if !ok {
			s = &chart.ContinuousSeries{Name: p.BoosterVersionCategory}
			groups[p.BoosterVersionCategory] = s
		}
		s.XValues = append(s.XValues, p.PayloadMassKg)
		s.YValues = append(s.YValues, float64(p.OutcomeClass))
	}
	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	sort.Strings(names)

	series := make([]chart.Series, 0, len(names))
	for i, n := range names {
		s := groups[n]
		s.Style = chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
			DotColor:    chart.GetDefaultColor(i),
		}
		series = append(series, *s)
	}

	lo, hi := xRange.Low, xRange.High
	if !xRange.Valid() || lo == hi {
		lo, hi = lo-1, hi+1
	}

	ch := chart.Chart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "Payload Mass (kg)",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: chart.YAxis{
			Name:  "class",
			Range: &chart.ContinuousRange{Min: -0.5, Max: 1.5},
			Ticks: []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render: scatter: %w", err)
	}
	return nil
}
