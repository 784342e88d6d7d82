// Package api implements the HTTP surface of launchdash.
//
// New(dash, insights) returns an http.Handler that serves:
//
//	GET /api/v1/dataset                   : record count, sites, payload bounds
//	GET /api/v1/layout                    : controls, chart panels, static content
//	GET /api/v1/insights                  : findings computed from the dataset
//	GET /api/v1/charts/site-summary       : proportion chart (?site=)
//	GET /api/v1/charts/scatter            : correlation chart (?site=&low=&high=)
//	GET /api/v1/charts/site-summary.png   : proportion chart as PNG
//	GET /api/v1/charts/scatter.png        : correlation chart as PNG
//
// Chart endpoints default site to ALL and missing payload bounds to the
// dataset bounds. A malformed bound is a 400; an inverted range or unknown site
// is a normal response with an empty series (PNG endpoints answer 204 when
// there is nothing to draw).
//
// All JSON endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//
// Page() serves the HTML dashboard that drives a WebSocket session.
package api
