package binding

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/launchdash/launchdash/pkg/types"
)

// --- test helpers -----------------------------------------------------------

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveCompute(output string, _ time.Duration) {
	o.mu.Lock()
	o.calls = append(o.calls, output)
	o.mu.Unlock()
}

// newTestRegistry wires a dropdown and a slider to two outputs:
// "a" depends on the dropdown, "b" on both.
func newTestRegistry(t *testing.T, obs Observer) *Registry {
	t.Helper()
	r := NewRegistry(obs)
	if err := r.AddControl(&Dropdown{Name: "site", Value: types.AllSites}); err != nil {
		t.Fatalf("AddControl: %v", err)
	}
	if err := r.AddControl(&RangeSlider{Name: "range", Value: types.PayloadRange{Low: 0, High: 10}}); err != nil {
		t.Fatalf("AddControl: %v", err)
	}
	if err := r.Bind(Binding{
		Output:  "a",
		Inputs:  []string{"site"},
		Compute: func(v Values) any { return "a:" + v.String("site") },
	}); err != nil {
		t.Fatalf("Bind a: %v", err)
	}
	if err := r.Bind(Binding{
		Output: "b",
		Inputs: []string{"site", "range"},
		Compute: func(v Values) any {
			return struct {
				Site  string
				Range types.PayloadRange
			}{v.String("site"), v.Range("range")}
		},
	}); err != nil {
		t.Fatalf("Bind b: %v", err)
	}
	return r
}

func outputs(us []Update) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.Output)
	}
	return out
}

// --- registration -----------------------------------------------------------

func TestAddControl_Duplicate(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.AddControl(&Dropdown{Name: "x"})
	if err := r.AddControl(&Dropdown{Name: "x"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("err: got %v, want ErrDuplicate", err)
	}
}

func TestBind_UnknownInput(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Bind(Binding{Output: "o", Inputs: []string{"missing"}, Compute: func(Values) any { return nil }})
	if !errors.Is(err, ErrUnknownControl) {
		t.Errorf("err: got %v, want ErrUnknownControl", err)
	}
}

func TestBind_DuplicateOutput(t *testing.T) {
	r := newTestRegistry(t, nil)
	err := r.Bind(Binding{Output: "a", Inputs: []string{"site"}, Compute: func(Values) any { return nil }})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err: got %v, want ErrDuplicate", err)
	}
}

func TestBind_NoInputs(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Bind(Binding{Output: "o", Compute: func(Values) any { return nil }})
	if !errors.Is(err, ErrNoInputs) {
		t.Errorf("err: got %v, want ErrNoInputs", err)
	}
}

func TestRegistry_dependents(t *testing.T) {
	r := newTestRegistry(t, nil)
	if diff := cmp.Diff([]string{"a", "b"}, r.dependents("site")); diff != "" {
		t.Errorf("dependents(site) (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, r.dependents("range")); diff != "" {
		t.Errorf("dependents(range) (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, r.Outputs()); diff != "" {
		t.Errorf("Outputs (-want +got):\n%s", diff)
	}
}

// --- sessions ---------------------------------------------------------------

func TestSession_InitialUsesDefaults(t *testing.T) {
	obs := &recordingObserver{}
	s := newTestRegistry(t, obs).NewSession()

	us := s.Initial(context.Background())
	if diff := cmp.Diff([]string{"a", "b"}, outputs(us)); diff != "" {
		t.Fatalf("outputs (-want +got):\n%s", diff)
	}
	if us[0].Data != "a:ALL" {
		t.Errorf("a: got %v, want a:ALL", us[0].Data)
	}
	if len(obs.calls) != 2 {
		t.Errorf("observer calls: got %d, want 2", len(obs.calls))
	}
}

func TestSession_SetRecomputesOnlyDependents(t *testing.T) {
	obs := &recordingObserver{}
	s := newTestRegistry(t, obs).NewSession()

	us, err := s.Set(context.Background(), "range", json.RawMessage(`[2, 8]`))
	if err != nil {
		t.Fatalf("Set range: %v", err)
	}
	if diff := cmp.Diff([]string{"b"}, outputs(us)); diff != "" {
		t.Errorf("range change outputs (-want +got):\n%s", diff)
	}

	us, err = s.Set(context.Background(), "site", json.RawMessage(`"KSC LC-39A"`))
	if err != nil {
		t.Fatalf("Set site: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, outputs(us)); diff != "" {
		t.Errorf("site change outputs (-want +got):\n%s", diff)
	}

	// b sees both the new site and the earlier range.
	b := us[1].Data.(struct {
		Site  string
		Range types.PayloadRange
	})
	if b.Site != "KSC LC-39A" || b.Range != (types.PayloadRange{Low: 2, High: 8}) {
		t.Errorf("b: got %+v", b)
	}
	if diff := cmp.Diff([]string{"b", "a", "b"}, obs.calls); diff != "" {
		t.Errorf("observer calls (-want +got):\n%s", diff)
	}
}

func TestSession_SetErrorsLeaveStateUnchanged(t *testing.T) {
	s := newTestRegistry(t, nil).NewSession()
	ctx := context.Background()

	tests := []struct {
		name, id, raw string
	}{
		{"unknown control", "colour", `"red"`},
		{"dropdown not a string", "site", `42`},
		{"slider not an array", "range", `"wide"`},
		{"slider wrong arity", "range", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Set(ctx, tt.id, json.RawMessage(tt.raw)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}

	if v, _ := s.Value("site"); v != types.AllSites {
		t.Errorf("site: got %v, want ALL", v)
	}
	if v, _ := s.Value("range"); v != (types.PayloadRange{Low: 0, High: 10}) {
		t.Errorf("range: got %v, want default", v)
	}
}

func TestSession_UnknownControlError(t *testing.T) {
	s := newTestRegistry(t, nil).NewSession()
	_, err := s.Set(context.Background(), "colour", json.RawMessage(`"red"`))
	if !errors.Is(err, ErrUnknownControl) {
		t.Errorf("err: got %v, want ErrUnknownControl", err)
	}
}

func TestSession_InvertedRangePassesThrough(t *testing.T) {
	s := newTestRegistry(t, nil).NewSession()
	if _, err := s.Set(context.Background(), "range", json.RawMessage(`[9, 1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := s.Value("range"); v != (types.PayloadRange{Low: 9, High: 1}) {
		t.Errorf("range: got %v, want {9 1}", v)
	}
}

func TestSession_Isolation(t *testing.T) {
	r := newTestRegistry(t, nil)
	s1, s2 := r.NewSession(), r.NewSession()

	if _, err := s1.Set(context.Background(), "site", json.RawMessage(`"VAFB SLC-4E"`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := s2.Value("site"); v != types.AllSites {
		t.Errorf("s2 site: got %v, want ALL", v)
	}
}

func TestSession_ConcurrentSessions(t *testing.T) {
	r := newTestRegistry(t, &recordingObserver{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := r.NewSession()
			for j := 0; j < 50; j++ {
				if _, err := s.Set(context.Background(), "range", json.RawMessage(`[0, 5]`)); err != nil {
					t.Errorf("Set: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestValues_RangeMissing(t *testing.T) {
	if (Values{}).Range("x").Valid() {
		t.Error("missing range should be invalid")
	}
}
