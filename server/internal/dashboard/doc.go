// Package dashboard assembles the launch dashboard: the site dropdown and the
// payload range slider, the two chart bindings, and the static page content.
//
//	site-dropdown                  ─┬─> success-pie-chart            (charts.SiteSummary)
//	payload-slider ─────────────────┴─> success-payload-scatter-chart (charts.ScatterPoints)
//
// A Dashboard is built once at startup from the loaded dataset and is shared
// read-only by the HTTP API and every WebSocket session.
package dashboard
