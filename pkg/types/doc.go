// Package types defines the Go types shared by the dashboard server packages
// and the CLI: launch records, payload ranges and the chart-ready series handed
// to renderers and browser sessions.
package types
