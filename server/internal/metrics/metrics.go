package metrics

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names.
const (
	Recomputations  = "launchdash_recomputations_total"
	RecomputeTime   = "launchdash_recompute_seconds_total"
	RejectedInputs  = "launchdash_rejected_inputs_total"
	ActiveSessions  = "launchdash_sessions_active"
	DatasetRecords  = "launchdash_dataset_records"
	outputLabelName = "output"
)

// Recorder accumulates counters. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	computes map[string]uint64
	seconds  map[string]float64
	rejected uint64

	gauges map[string]gauge
}

type gauge struct {
	help string
	fn   func() float64
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{
		computes: make(map[string]uint64),
		seconds:  make(map[string]float64),
		gauges:   make(map[string]gauge),
	}
}

// ObserveCompute counts one recomputation of output.
func (r *Recorder) ObserveCompute(output string, elapsed time.Duration) {
	r.mu.Lock()
	r.computes[output]++
	r.seconds[output] += elapsed.Seconds()
	r.mu.Unlock()
}

// ObserveRejectedInput counts one client input that could not be applied.
func (r *Recorder) ObserveRejectedInput() {
	r.mu.Lock()
	r.rejected++
	r.mu.Unlock()
}

// Gauge registers a gauge sampled by fn on every scrape. Registering the same
// name again replaces it.
func (r *Recorder) Gauge(name, help string, fn func() float64) {
	r.mu.Lock()
	r.gauges[name] = gauge{help: help, fn: fn}
	r.mu.Unlock()
}

// Families returns the current metric families sorted by name.
func (r *Recorder) Families() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	outputs := make([]string, 0, len(r.computes))
	for o := range r.computes {
		outputs = append(outputs, o)
	}
	sort.Strings(outputs)

	computes := &dto.MetricFamily{
		Name: proto.String(Recomputations),
		Help: proto.String("Chart recomputations per output."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	seconds := &dto.MetricFamily{
		Name: proto.String(RecomputeTime),
		Help: proto.String("Cumulative time spent recomputing each output."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, o := range outputs {
		lbl := []*dto.LabelPair{{Name: proto.String(outputLabelName), Value: proto.String(o)}}
		computes.Metric = append(computes.Metric, &dto.Metric{
			Label:   lbl,
			Counter: &dto.Counter{Value: proto.Float64(float64(r.computes[o]))},
		})
		seconds.Metric = append(seconds.Metric, &dto.Metric{
			Label:   lbl,
			Counter: &dto.Counter{Value: proto.Float64(r.seconds[o])},
		})
	}

	out := []*dto.MetricFamily{{
		Name:   proto.String(RejectedInputs),
		Help:   proto.String("Client inputs rejected as unknown or malformed."),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(float64(r.rejected))}}},
	}}
	// A family with no samples is not valid exposition.
	if len(outputs) > 0 {
		out = append(out, computes, seconds)
	}
	for name, g := range r.gauges {
		out = append(out, &dto.MetricFamily{
			Name:   proto.String(name),
			Help:   proto.String(g.help),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(g.fn())}}},
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// ServeHTTP writes the families in the Prometheus text format.
func (r *Recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range r.Families() {
		if err := enc.Encode(mf); err != nil {
			slog.Warn("metrics: encode family failed", "family", mf.GetName(), "err", err)
			return
		}
	}
}
