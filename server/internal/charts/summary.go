package charts

import (
	"strconv"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// SiteSummary computes the proportion chart for site.
//
// For types.AllSites each known site contributes one slice whose value is the
// number of successful launches there; sites without successes keep a zero
// slice. For a single site the slices count that site's records per outcome
// class, only for classes that occur. Slices are ordered by first appearance
// of the site, or by ascending class.
func SiteSummary(ds *dataset.Dataset, site string) types.ChartData {
	if site == types.AllSites {
		return successesBySite(ds)
	}

	out := types.ChartData{
		Kind:   types.ChartPie,
		Title:  "Total Success Launches for site " + site,
		Slices: make([]types.Slice, 0, 2),
		Points: []types.ScatterPoint{},
	}
	if !ds.HasSite(site) {
		return out
	}

	var counts [2]int
	ds.Each(func(r types.LaunchRecord) {
		if r.Site == site {
			counts[r.OutcomeClass]++
		}
	})
	for class, n := range counts {
		if n == 0 {
			continue
		}
		out.Slices = append(out.Slices, types.Slice{Label: strconv.Itoa(class), Value: n})
	}
	return out
}

func successesBySite(ds *dataset.Dataset) types.ChartData {
	sites := ds.Sites()
	pos := make(map[string]int, len(sites))
	slices := make([]types.Slice, len(sites))
	for i, s := range sites {
		pos[s] = i
		slices[i] = types.Slice{Label: s}
	}

	ds.Each(func(r types.LaunchRecord) {
		slices[pos[r.Site]].Value += r.OutcomeClass
	})

	return types.ChartData{
		Kind:   types.ChartPie,
		Title:  "Success Count for all launch sites",
		Slices: slices,
		Points: []types.ScatterPoint{},
	}
}
