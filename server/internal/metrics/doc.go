// Package metrics exposes launchdash's own counters in the Prometheus text
// format.
//
// Recorder implements binding.Observer and counts recomputations per output,
// their cumulative duration and rejected client inputs. Gauges (active
// sessions, dataset size) are sampled through callbacks at scrape time.
//
// Families are built as client_model dto values and written with the expfmt
// text encoder, so the exposition parses with expfmt.TextParser.
package metrics
