package binding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/launchdash/launchdash/pkg/types"
)

var (
	// ErrUnknownControl is returned for a control ID that was never registered.
	ErrUnknownControl = errors.New("unknown control")
	// ErrDuplicate is returned when a control or output ID is registered twice.
	ErrDuplicate = errors.New("duplicate id")
	// ErrNoInputs is returned for a binding that declares no inputs.
	ErrNoInputs = errors.New("binding declares no inputs")
)

// Values is a read-only view of a session's control values passed to Compute.
type Values map[string]any

// String returns the value of control id as a string, or "" if it is not one.
func (v Values) String(id string) string {
	s, _ := v[id].(string)
	return s
}

// Range returns the value of control id as a payload range. A missing value
// yields an inverted range so computations treat it as matching nothing.
func (v Values) Range(id string) types.PayloadRange {
	r, ok := v[id].(types.PayloadRange)
	if !ok {
		return types.PayloadRange{Low: 1, High: 0}
	}
	return r
}

// Binding ties a pure computation to its inputs and its output.
type Binding struct {
	Output  string
	Inputs  []string
	Compute func(Values) any
}

// Update is one recomputed output.
type Update struct {
	Output string `json:"output"`
	Data   any    `json:"data"`
}

// Observer is notified after every recomputation.
type Observer interface {
	ObserveCompute(output string, elapsed time.Duration)
}

// Registry holds the controls and bindings of a dashboard. Register everything
// before calling NewSession; a Registry is read-only afterwards.
type Registry struct {
	controls  map[string]Control
	order     []string // control IDs in registration order
	bindings  []Binding
	outputs   map[string]struct{}
	dependent map[string][]int // control ID -> binding indexes
	observer  Observer
	tracer    trace.Tracer
}

// NewRegistry creates an empty Registry. obs may be nil.
func NewRegistry(obs Observer) *Registry {
	return &Registry{
		controls:  make(map[string]Control),
		outputs:   make(map[string]struct{}),
		dependent: make(map[string][]int),
		observer:  obs,
		tracer:    otel.Tracer("github.com/launchdash/launchdash/server/internal/binding"),
	}
}

// AddControl registers c.
func (r *Registry) AddControl(c Control) error {
	if _, ok := r.controls[c.ID()]; ok {
		return fmt.Errorf("binding: control %q: %w", c.ID(), ErrDuplicate)
	}
	r.controls[c.ID()] = c
	r.order = append(r.order, c.ID())
	return nil
}

// Bind registers b. Every input must already be a registered control and the
// output must not be bound yet.
func (r *Registry) Bind(b Binding) error {
	if len(b.Inputs) == 0 {
		return fmt.Errorf("binding: output %q: %w", b.Output, ErrNoInputs)
	}
	if _, ok := r.outputs[b.Output]; ok {
		return fmt.Errorf("binding: output %q: %w", b.Output, ErrDuplicate)
	}
	for _, in := range b.Inputs {
		if _, ok := r.controls[in]; !ok {
			return fmt.Errorf("binding: output %q input %q: %w", b.Output, in, ErrUnknownControl)
		}
	}

	idx := len(r.bindings)
	r.bindings = append(r.bindings, b)
	r.outputs[b.Output] = struct{}{}
	for _, in := range uniq(b.Inputs) {
		r.dependent[in] = append(r.dependent[in], idx)
	}
	return nil
}

// Controls returns the registered controls in registration order.
func (r *Registry) Controls() []Control {
	out := make([]Control, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.controls[id])
	}
	return out
}

// Outputs returns the bound output IDs in registration order.
func (r *Registry) Outputs() []string {
	out := make([]string, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b.Output)
	}
	return out
}

// dependents returns the outputs that recompute when control id changes.
func (r *Registry) dependents(id string) []string {
	var out []string
	for _, i := range r.dependent[id] {
		out = append(out, r.bindings[i].Output)
	}
	return out
}

// NewSession returns a Session initialised with every control's default.
func (r *Registry) NewSession() *Session {
	s := &Session{reg: r, values: make(Values, len(r.controls))}
	for id, c := range r.controls {
		s.values[id] = c.Default()
	}
	return s
}

// compute evaluates binding i with a snapshot of the session values.
func (r *Registry) compute(ctx context.Context, i int, vals Values) Update {
	b := r.bindings[i]
	_, span := r.tracer.Start(ctx, "binding.compute",
		trace.WithAttributes(attribute.String("binding.output", b.Output)))
	defer span.End()

	start := time.Now()
	data := b.Compute(vals)
	if r.observer != nil {
		r.observer.ObserveCompute(b.Output, time.Since(start))
	}
	return Update{Output: b.Output, Data: data}
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
