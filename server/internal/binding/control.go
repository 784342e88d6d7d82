package binding

import (
	"encoding/json"
	"fmt"

	"github.com/launchdash/launchdash/pkg/types"
)

// Control is one input of the dashboard.
type Control interface {
	// ID is the identifier bindings and clients refer to the control by.
	ID() string
	// Default is the value a new session starts with.
	Default() any
	// Decode parses a client-supplied JSON value into the control's Go type.
	Decode(raw json.RawMessage) (any, error)
}

// Option is one selectable entry of a Dropdown.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown is a single-select control whose value is a string.
//
// Decode accepts any string, including values that are not among Options;
// interpreting an unknown value is left to the bound computation.
type Dropdown struct {
	Name        string   `json:"id"`
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder,omitempty"`
	Searchable  bool     `json:"searchable"`
}

func (d *Dropdown) ID() string   { return d.Name }
func (d *Dropdown) Default() any { return d.Value }

func (d *Dropdown) Decode(raw json.RawMessage) (any, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: want a string: %w", d.Name, err)
	}
	return s, nil
}

// Mark is a labelled tick on a RangeSlider.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// RangeSlider selects a closed numeric interval. Its value is a
// types.PayloadRange.
//
// Decode requires a JSON array of exactly two numbers but does not reorder or
// clamp them; an inverted interval is passed through unchanged.
type RangeSlider struct {
	Name  string             `json:"id"`
	Min   float64            `json:"min"`
	Max   float64            `json:"max"`
	Step  float64            `json:"step"`
	Marks []Mark             `json:"marks"`
	Value types.PayloadRange `json:"value"`
}

func (r *RangeSlider) ID() string   { return r.Name }
func (r *RangeSlider) Default() any { return r.Value }

func (r *RangeSlider) Decode(raw json.RawMessage) (any, error) {
	var v []float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%s: want [low, high]: %w", r.Name, err)
	}
	if len(v) != 2 {
		return nil, fmt.Errorf("%s: want [low, high], got %d values", r.Name, len(v))
	}
	return types.PayloadRange{Low: v[0], High: v[1]}, nil
}
