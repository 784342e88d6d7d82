// Package ws implements the reactive WebSocket sessions of launchdash.
//
// Every connection owns one binding.Session. The hub only tracks connections
// so it can count and close them; sessions never share state.
//
// New(registry, rejected) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all active
// connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket and serves one
// session until the connection closes.
//
// Protocol. On connect the server sends
//
//	{"event": "hello", "session_id": "<uuid>"}
//
// followed by one output message per registered binding, computed from the
// control defaults:
//
//	{"event": "output", "output": "success-pie-chart", "data": { /* ChartData */ }}
//
// The client changes a control with
//
//	{"event": "input", "control": "payload-slider", "value": [2000, 8000]}
//
// and receives one output message per binding that depends on the control, in
// registration order. A malformed message, an unknown control or a value the
// control cannot decode is answered with
//
//	{"event": "error", "error": "<reason>"}
//
// and leaves the session as it was. Inputs of one session are processed one at
// a time, in arrival order.
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/session by the server.
package ws
