package binding

import (
	"context"
	"encoding/json"
	"fmt"
)

// Session is one client's view of the dashboard. It is not safe for
// concurrent use; the owning connection serialises calls.
type Session struct {
	reg    *Registry
	values Values
}

// Initial computes every binding with the session's current values, in
// registration order.
func (s *Session) Initial(ctx context.Context) []Update {
	out := make([]Update, 0, len(s.reg.bindings))
	for i := range s.reg.bindings {
		out = append(out, s.reg.compute(ctx, i, s.snapshot()))
	}
	return out
}

// Set decodes raw as the new value of control id and returns the recomputed
// outputs of every binding that depends on it. On error the session is left
// unchanged.
func (s *Session) Set(ctx context.Context, id string, raw json.RawMessage) ([]Update, error) {
	c, ok := s.reg.controls[id]
	if !ok {
		return nil, fmt.Errorf("binding: control %q: %w", id, ErrUnknownControl)
	}
	v, err := c.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}
	s.values[id] = v

	deps := s.reg.dependent[id]
	out := make([]Update, 0, len(deps))
	for _, i := range deps {
		out = append(out, s.reg.compute(ctx, i, s.snapshot()))
	}
	return out, nil
}

// Value returns the current value of control id.
func (s *Session) Value(id string) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// snapshot copies the values so a Compute function cannot alter session state.
func (s *Session) snapshot() Values {
	cp := make(Values, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}
