package dashboard

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/binding"
	"github.com/launchdash/launchdash/server/internal/charts"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// Control and output IDs.
const (
	SiteDropdown  = "site-dropdown"
	PayloadSlider = "payload-slider"
	PieChart      = "success-pie-chart"
	ScatterChart  = "success-payload-scatter-chart"
)

// Dashboard is the immutable context shared by all sessions.
type Dashboard struct {
	data     *dataset.Dataset
	registry *binding.Registry
	layout   Layout
}

// New builds the dashboard for ds. obs receives recomputation timings and may
// be nil.
func New(ds *dataset.Dataset, cfg config.DashboardConfig, obs binding.Observer) (*Dashboard, error) {
	dropdown := siteDropdown(ds, cfg.Sites)
	slider := payloadSlider(ds, cfg.SliderStep)

	reg := binding.NewRegistry(obs)
	for _, c := range []binding.Control{dropdown, slider} {
		if err := reg.AddControl(c); err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
	}

	bindings := []binding.Binding{
		{
			Output: PieChart,
			Inputs: []string{SiteDropdown},
			Compute: func(v binding.Values) any {
				return charts.SiteSummary(ds, v.String(SiteDropdown))
			},
		},
		{
			Output: ScatterChart,
			Inputs: []string{SiteDropdown, PayloadSlider},
			Compute: func(v binding.Values) any {
				return charts.ScatterPoints(ds, v.String(SiteDropdown), v.Range(PayloadSlider))
			},
		},
	}
	for _, b := range bindings {
		if err := reg.Bind(b); err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
	}

	return &Dashboard{
		data:     ds,
		registry: reg,
		layout:   newLayout(cfg, dropdown, slider, bindings),
	}, nil
}

// Data returns the dataset the dashboard was built from.
func (d *Dashboard) Data() *dataset.Dataset { return d.data }

// Registry returns the control/output bindings.
func (d *Dashboard) Registry() *binding.Registry { return d.registry }

// Layout returns the page description.
func (d *Dashboard) Layout() Layout { return d.layout }

// SiteSummary computes the proportion chart outside of a session.
func (d *Dashboard) SiteSummary(site string) types.ChartData {
	return charts.SiteSummary(d.data, site)
}

// Scatter computes the correlation chart outside of a session.
func (d *Dashboard) Scatter(site string, rng types.PayloadRange) types.ChartData {
	return charts.ScatterPoints(d.data, site, rng)
}

func siteDropdown(ds *dataset.Dataset, configured []config.SiteOption) *binding.Dropdown {
	opts := []binding.Option{{Label: "All Sites", Value: types.AllSites}}
	if len(configured) > 0 {
		for _, s := range configured {
			label := s.Label
			if label == "" {
				label = s.Value
			}
			opts = append(opts, binding.Option{Label: label, Value: s.Value})
		}
	} else {
		for _, s := range ds.Sites() {
			opts = append(opts, binding.Option{Label: s, Value: s})
		}
	}
	return &binding.Dropdown{
		Name:        SiteDropdown,
		Options:     opts,
		Value:       types.AllSites,
		Placeholder: "Select a Launch Site here",
		Searchable:  true,
	}
}

func payloadSlider(ds *dataset.Dataset, step float64) *binding.RangeSlider {
	bounds := ds.Bounds()
	return &binding.RangeSlider{
		Name:  PayloadSlider,
		Min:   bounds.Low,
		Max:   bounds.High,
		Step:  step,
		Marks: marks(bounds, step),
		Value: bounds,
	}
}

// maxMarks bounds the number of slider ticks.
const maxMarks = 20

// marks places a labelled tick at every multiple of step inside bounds. When
// that would exceed maxMarks ticks the spacing widens to a multiple of step.
func marks(bounds types.PayloadRange, step float64) []binding.Mark {
	out := []binding.Mark{}
	if !(step > 0) || !bounds.Valid() || math.IsInf(bounds.Low, 0) || math.IsInf(bounds.High, 0) {
		return out
	}
	if n := math.Floor((bounds.High-bounds.Low)/step) + 1; n > maxMarks {
		step *= math.Ceil(n / maxMarks)
	}

	p := message.NewPrinter(language.English)
	first := math.Ceil(bounds.Low/step) * step
	for i := 0; i < maxMarks+1; i++ {
		v := first + float64(i)*step
		if v > bounds.High {
			break
		}
		out = append(out, binding.Mark{Value: v, Label: p.Sprintf("%d kg", int64(v))})
	}
	return out
}
