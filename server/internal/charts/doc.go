// Package charts turns the launch dataset into chart-ready series.
//
//	SiteSummary(ds, site)          : proportion chart: successes per site for
//	                                 AllSites, or record count per outcome class
//	                                 for one site.
//	ScatterPoints(ds, site, range) : correlation chart: payload mass against
//	                                 outcome class, coloured by booster category.
//
// Both functions are pure. An unknown site or an inverted payload range yields
// an empty series rather than an error, so a caller always has something to
// render.
package charts
