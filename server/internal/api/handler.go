package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dashboard"
	"github.com/launchdash/launchdash/server/internal/render"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	dash     *dashboard.Dashboard
	insights []dashboard.Insight
	mux      *http.ServeMux
}

// New creates a Handler for dash and registers all routes.
func New(dash *dashboard.Dashboard, insights []dashboard.Insight) http.Handler {
	if insights == nil {
		insights = []dashboard.Insight{}
	}
	h := &Handler{dash: dash, insights: insights, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/dataset", h.get(h.dataset))
	h.mux.HandleFunc("/api/v1/layout", h.get(h.layout))
	h.mux.HandleFunc("/api/v1/insights", h.get(h.listInsights))
	h.mux.HandleFunc("/api/v1/charts/site-summary", h.get(h.siteSummary))
	h.mux.HandleFunc("/api/v1/charts/scatter", h.get(h.scatter))
	h.mux.HandleFunc("/api/v1/charts/site-summary.png", h.get(h.siteSummaryPNG))
	h.mux.HandleFunc("/api/v1/charts/scatter.png", h.get(h.scatterPNG))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// get rejects every method but GET.
func (h *Handler) get(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

// --- route handlers ---------------------------------------------------------

func (h *Handler) dataset(w http.ResponseWriter, _ *http.Request) {
	ds := h.dash.Data()
	jsonResp(w, http.StatusOK, DatasetResponse{
		Records:    ds.Len(),
		Sites:      ds.Sites(),
		MinPayload: ds.MinPayload(),
		MaxPayload: ds.MaxPayload(),
	})
}

func (h *Handler) layout(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, h.dash.Layout())
}

func (h *Handler) listInsights(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, h.insights)
}

func (h *Handler) siteSummary(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.dash.SiteSummary(siteParam(r.URL.Query())))
}

func (h *Handler) scatter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := h.rangeParams(q)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, h.dash.Scatter(siteParam(q), rng))
}

func (h *Handler) siteSummaryPNG(w http.ResponseWriter, r *http.Request) {
	c := h.dash.SiteSummary(siteParam(r.URL.Query()))
	pngResp(w, c, types.PayloadRange{})
}

func (h *Handler) scatterPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := h.rangeParams(q)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	pngResp(w, h.dash.Scatter(siteParam(q), rng), rng)
}

// --- helpers ----------------------------------------------------------------

func siteParam(q url.Values) string {
	if s := q.Get("site"); s != "" {
		return s
	}
	return types.AllSites
}

// rangeParams reads low/high, defaulting each to the dataset bound.
func (h *Handler) rangeParams(q url.Values) (types.PayloadRange, error) {
	rng := h.dash.Data().Bounds()
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"low", &rng.Low},
		{"high", &rng.High},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.PayloadRange{}, fmt.Errorf("%s: %q is not a number", p.name, raw)
		}
		*p.dst = v
	}
	return rng, nil
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func pngResp(w http.ResponseWriter, c types.ChartData, rng types.PayloadRange) {
	var buf bytes.Buffer
	if err := render.PNG(&buf, c, rng); err != nil {
		if errors.Is(err, render.ErrNothingToDraw) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		slog.Error("api: render chart failed", "title", c.Title, "err", err)
		jsonErr(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}
