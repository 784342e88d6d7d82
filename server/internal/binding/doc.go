// Package binding is the reactive layer between dashboard controls and chart
// outputs.
//
// A Registry holds Controls (inputs with a default value and a JSON decoder)
// and Bindings (a pure Compute function declared against a set of control IDs
// and exactly one output ID). Registration is explicit; nothing is dispatched
// through globals.
//
// Each browser connection gets its own Session holding the current value of
// every control. Session.Set stores a new control value and synchronously
// recomputes exactly the bindings that declare that control as an input, in
// registration order. Sessions share the Registry read-only and never see
// each other's values.
package binding
