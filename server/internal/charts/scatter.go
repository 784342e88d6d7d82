package charts

import (
	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// ScatterPoints computes the correlation chart: every record whose payload
// lies in rng (inclusive), restricted to site unless site is types.AllSites.
// Points keep dataset order. An invalid range returns no points.
func ScatterPoints(ds *dataset.Dataset, site string, rng types.PayloadRange) types.ChartData {
	title := "Success count on Payload mass for all sites"
	if site != types.AllSites {
		title = "Success count on Payload mass for site " + site
	}
	out := types.ChartData{
		Kind:   types.ChartScatter,
		Title:  title,
		Slices: []types.Slice{},
		Points: []types.ScatterPoint{},
	}
	if !rng.Valid() {
		return out
	}

	ds.Each(func(r types.LaunchRecord) {
		if !rng.Contains(r.PayloadMassKg) {
			return
		}
		if site != types.AllSites && r.Site != site {
			return
		}
		out.Points = append(out.Points, types.ScatterPoint{
			PayloadMassKg:          r.PayloadMassKg,
			OutcomeClass:           r.OutcomeClass,
			BoosterVersionCategory: r.BoosterVersionCategory,
		})
	})
	return out
}
