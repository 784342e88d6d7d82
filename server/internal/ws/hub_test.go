package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dashboard"
	"github.com/launchdash/launchdash/server/internal/dataset"
	wsHub "github.com/launchdash/launchdash/server/internal/ws"
)

// --- helpers ----------------------------------------------------------------

type rejectCounter struct{ n atomic.Int64 }

func (r *rejectCounter) ObserveRejectedInput() { r.n.Add(1) }

// message mirrors wsHub.Message with a concrete chart payload.
type message struct {
	Event     string          `json:"event"`
	SessionID string          `json:"session_id"`
	Output    string          `json:"output"`
	Data      types.ChartData `json:"data"`
	Error     string          `json:"error"`
}

func newDashboard(t *testing.T) *dashboard.Dashboard {
	t.Helper()
	ds, err := dataset.New([]types.LaunchRecord{
		{Site: "A", PayloadMassKg: 500, OutcomeClass: 1, BoosterVersionCategory: "v1.0"},
		{Site: "A", PayloadMassKg: 500, OutcomeClass: 0, BoosterVersionCategory: "v1.1"},
		{Site: "B", PayloadMassKg: 2000, OutcomeClass: 1, BoosterVersionCategory: "FT"},
	})
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	d, err := dashboard.New(ds, config.DashboardConfig{SliderStep: 1000}, nil)
	if err != nil {
		t.Fatalf("dashboard.New: %v", err)
	}
	return d
}

// startHub starts a test HTTP server with the hub as its handler.
// The hub's Run loop is started with a cancellable context.
// Returns the ws:// URL, the hub, the reject counter and a cancel function.
func startHub(t *testing.T) (wsURL string, hub *wsHub.Hub, rejected *rejectCounter, cancel func()) {
	t.Helper()

	rejected = &rejectCounter{}
	hub = wsHub.New(newDashboard(t).Registry(), rejected)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, rejected, cancelFn
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m message
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return m
}

// connect dials and consumes the hello and initial output messages.
func connect(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn := dial(t, wsURL)
	if m := readMessage(t, conn); m.Event != wsHub.EventHello {
		t.Fatalf("first event: got %q, want hello", m.Event)
	}
	readMessage(t, conn)
	readMessage(t, conn)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_HelloThenInitialOutputs(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := dial(t, wsURL)

	hello := readMessage(t, conn)
	if hello.Event != wsHub.EventHello {
		t.Fatalf("event: got %q, want hello", hello.Event)
	}
	if len(hello.SessionID) != 36 {
		t.Errorf("session_id: got %q, want a UUID", hello.SessionID)
	}

	pie := readMessage(t, conn)
	if pie.Event != wsHub.EventOutput || pie.Output != dashboard.PieChart {
		t.Fatalf("first output: got %s/%s, want output/%s", pie.Event, pie.Output, dashboard.PieChart)
	}
	if pie.Data.Title != "Success Count for all launch sites" {
		t.Errorf("pie title: got %q", pie.Data.Title)
	}
	if pie.Data.Total() != 2 {
		t.Errorf("pie total: got %d, want 2", pie.Data.Total())
	}

	scatter := readMessage(t, conn)
	if scatter.Output != dashboard.ScatterChart {
		t.Fatalf("second output: got %s, want %s", scatter.Output, dashboard.ScatterChart)
	}
	if len(scatter.Data.Points) != 3 {
		t.Errorf("scatter points: got %d, want 3", len(scatter.Data.Points))
	}
}

func TestHub_SessionIDsAreDistinct(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	a := readMessage(t, dial(t, wsURL))
	b := readMessage(t, dial(t, wsURL))
	if a.SessionID == b.SessionID {
		t.Errorf("session ids: both %q", a.SessionID)
	}
}

func TestHub_SiteChange_RecomputesBothCharts(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := connect(t, wsURL)

	send(t, conn, `{"event":"input","control":"site-dropdown","value":"A"}`)

	pie := readMessage(t, conn)
	if pie.Output != dashboard.PieChart {
		t.Fatalf("first update: got %s, want %s", pie.Output, dashboard.PieChart)
	}
	if pie.Data.Title != "Total Success Launches for site A" {
		t.Errorf("pie title: got %q", pie.Data.Title)
	}
	scatter := readMessage(t, conn)
	if scatter.Output != dashboard.ScatterChart {
		t.Fatalf("second update: got %s, want %s", scatter.Output, dashboard.ScatterChart)
	}
	if len(scatter.Data.Points) != 2 {
		t.Errorf("scatter points: got %d, want 2", len(scatter.Data.Points))
	}
}

func TestHub_RangeChange_RecomputesScatterOnly(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := connect(t, wsURL)

	send(t, conn, `{"event":"input","control":"payload-slider","value":[1000,3000]}`)
	m := readMessage(t, conn)
	if m.Output != dashboard.ScatterChart {
		t.Fatalf("update: got %s, want %s", m.Output, dashboard.ScatterChart)
	}
	if len(m.Data.Points) != 1 {
		t.Errorf("scatter points: got %d, want 1", len(m.Data.Points))
	}

	// The next message must answer the next input, not a stray pie update.
	send(t, conn, `{"event":"input","control":"payload-slider","value":[3000,1000]}`)
	m = readMessage(t, conn)
	if m.Output != dashboard.ScatterChart {
		t.Fatalf("update: got %s, want %s", m.Output, dashboard.ScatterChart)
	}
	if len(m.Data.Points) != 0 {
		t.Errorf("inverted range: got %d points, want 0", len(m.Data.Points))
	}
}

func TestHub_BadInput_ErrorEventKeepsSession(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"event":`},
		{"unsupported event", `{"event":"subscribe"}`},
		{"unknown control", `{"event":"input","control":"nope","value":1}`},
		{"wrong value type", `{"event":"input","control":"payload-slider","value":"wide"}`},
		{"short range", `{"event":"input","control":"payload-slider","value":[1]}`},
	}

	wsURL, _, rejected, _ := startHub(t)
	conn := connect(t, wsURL)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			send(t, conn, tc.raw)
			m := readMessage(t, conn)
			if m.Event != wsHub.EventError {
				t.Fatalf("event: got %q, want error", m.Event)
			}
			if m.Error == "" {
				t.Error("error: empty")
			}
		})
	}
	if got := rejected.n.Load(); got != int64(len(tests)) {
		t.Errorf("rejected: got %d, want %d", got, len(tests))
	}

	// The session still answers and still has its default range.
	send(t, conn, `{"event":"input","control":"site-dropdown","value":"B"}`)
	readMessage(t, conn)
	scatter := readMessage(t, conn)
	if len(scatter.Data.Points) != 1 {
		t.Errorf("after errors: got %d points, want 1", len(scatter.Data.Points))
	}
}

func TestHub_SessionsAreIsolated(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	first := connect(t, wsURL)
	second := connect(t, wsURL)

	send(t, first, `{"event":"input","control":"site-dropdown","value":"A"}`)
	readMessage(t, first)
	readMessage(t, first)

	send(t, second, `{"event":"input","control":"payload-slider","value":[0,10000]}`)
	m := readMessage(t, second)
	if len(m.Data.Points) != 3 {
		t.Errorf("second session sees %d points, want 3 (site change leaked?)", len(m.Data.Points))
	}
}

func TestHub_CountClients(t *testing.T) {
	wsURL, hub, _, _ := startHub(t)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = connect(t, wsURL)
	}

	time.Sleep(10 * time.Millisecond)
	if n := hub.Count(); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}

	conns[0].Close()
	time.Sleep(50 * time.Millisecond) // let readPump detect the close

	if n := hub.Count(); n != 2 {
		t.Errorf("Count after disconnect: got %d, want 2", n)
	}
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, _, cancel := startHub(t)

	conn := connect(t, wsURL)
	time.Sleep(10 * time.Millisecond)

	cancel() // signal shutdown

	time.Sleep(50 * time.Millisecond)
	if n := hub.Count(); n != 0 {
		t.Errorf("Count after cancel: got %d, want 0", n)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNoStatusReceived) {
		t.Errorf("ReadMessage after cancel: got %v, want a close frame", err)
	}
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(newDashboard(t).Registry(), nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	// Plain HTTP GET without WebSocket upgrade headers -> 400
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
