package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labbridge/labbridge/internal/alerts"
	"github.com/labbridge/labbridge/internal/probe"
	"github.com/labbridge/labbridge/internal/recipients"
	"github.com/labbridge/labbridge/internal/store"
)

// ClientCounter reports how many WebSocket clients are connected.
// Implemented by ws.Hub.
type ClientCounter interface {
	Count() int
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	store      *store.Store
	engine     *alerts.Engine
	recipients *recipients.Set
	prober     *probe.Prober // nil when the metrics probe is disabled
	hub        ClientCounter // nil when the WebSocket hub is disabled
	staleAfter time.Duration
	started    time.Time
	now        func() time.Time // injectable for deterministic tests
	mux        *http.ServeMux
}

// New creates a Handler and registers all routes. staleAfter controls when
// the held snapshot is reported as stale — callers pass a small multiple of
// the poll interval.
func New(st *store.Store, e *alerts.Engine, rs *recipients.Set, p *probe.Prober, hub ClientCounter, staleAfter time.Duration) *Handler {
	h := &Handler{
		store:      st,
		engine:     e,
		recipients: rs,
		prober:     p,
		hub:        hub,
		staleAfter: staleAfter,
		started:    time.Now(),
		now:        time.Now,
		mux:        http.NewServeMux(),
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/labs", h.labs)
	h.mux.HandleFunc("/api/v1/alerts", h.alerts)
	h.mux.HandleFunc("/api/v1/registry", h.registryMetrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — bridge liveness and snapshot freshness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		UptimeSec:  h.now().Sub(h.started).Seconds(),
		Recipients: h.recipients.Len(),
	}
	if h.hub != nil {
		resp.WSClients = h.hub.Count()
	}

	st, at, ok := h.store.Latest()
	switch {
	case !ok:
		resp.State = "no-data"
	case h.store.Stale(h.staleAfter):
		resp.State = "stale"
	default:
		resp.State = "ok"
	}
	if ok {
		resp.LabCount = len(st.Labs)
		resp.SnapshotAgeSec = h.now().Sub(at).Seconds()
	}

	jsonResp(w, http.StatusOK, resp)
}

// labs returns GET /api/v1/labs — the latest stored registry snapshot.
func (h *Handler) labs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st, at, ok := h.store.Latest()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no snapshot yet")
		return
	}
	jsonResp(w, http.StatusOK, LabsResponse{
		Labs:      st.Labs,
		UpdatedAt: at.UTC().Format(time.RFC3339),
	})
}

// alerts returns GET /api/v1/alerts — recently fired alerts, oldest first.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.engine.Recent())
}

// registryMetrics returns GET /api/v1/registry — a live probe of the
// registry's Prometheus endpoint.
func (h *Handler) registryMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.prober == nil {
		jsonErr(w, http.StatusServiceUnavailable, "metrics probe disabled")
		return
	}
	sum, err := h.prober.Scrape(r.Context())
	if err != nil {
		jsonErr(w, http.StatusBadGateway, "registry metrics unavailable")
		return
	}
	jsonResp(w, http.StatusOK, sum)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
