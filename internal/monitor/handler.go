// Package monitor serves read-only views of the live stores over HTTP.
package monitor

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hoops-broadcast/internal/display"
	"hoops-broadcast/internal/platform/logger"
	"hoops-broadcast/internal/platform/metrics"
	"hoops-broadcast/internal/state"
)

// Handler exposes the stores using go-chi.
type Handler struct {
	stores  *state.Stores
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler reading from stores. Metrics may be nil to
// disable metric recording (e.g. in tests).
func NewHandler(stores *state.Stores, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{stores: stores, log: logger.Component(log, "monitor"), metrics: m}
}

// Routes mounts the handler with request logging and metrics. /metrics also
// refreshes the channel and source gauges before each scrape.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(logger.RequestLogger(h.log))
	r.Use(metrics.RequestMiddleware(h.metrics))

	if h.metrics != nil {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			h.metrics.Handler(h.refreshGauges).ServeHTTP(w, r)
		})
	}
	r.Get("/healthz", h.Healthz)
	r.Get("/state", h.State)
	r.Get("/scoreboard", h.Scoreboard)
	r.Route("/streams", func(r chi.Router) {
		r.Get("/", h.Streams)
		r.Get("/current", h.CurrentStream)
	})
	return r
}

func (h *Handler) refreshGauges() {
	c := h.stores.Connection.Get()
	h.metrics.SetChannelStatus(metrics.ChannelWebSocket, string(c.WebSocket))
	h.metrics.SetChannelStatus(metrics.ChannelLiveKit, string(c.LiveKit))
	h.metrics.SetStreamSources(len(h.stores.Streams.List()))
}

// State handles GET /state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.stores.Snapshot())
}

// Scoreboard handles GET /scoreboard.
func (h *Handler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(display.BuildScoreboard(h.stores.Scores.Get())))
}

// Healthz handles GET /healthz: 200 while the score socket is connected,
// 503 otherwise. The body carries the connection state either way.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	c := h.stores.Connection.Get()
	code := http.StatusOK
	if c.WebSocket != state.StatusConnected {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, c)
}

// Streams handles GET /streams. With phase and game query parameters the
// list is narrowed to that game and ordered by angle.
func (h *Handler) Streams(w http.ResponseWriter, r *http.Request) {
	phase := state.Phase(r.URL.Query().Get("phase"))
	game := state.Game(r.URL.Query().Get("game"))

	var list []state.StreamInfo
	switch {
	case phase == "" && game == "":
		list = h.stores.Streams.List()
	case !phase.Valid() || game == "":
		w.WriteHeader(http.StatusBadRequest)
		return
	default:
		list = h.stores.Streams.ForGame(phase, game)
	}
	if list == nil {
		list = []state.StreamInfo{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

// CurrentStream handles GET /streams/current: the selected source, or the
// default one. 404 when no source is known.
func (h *Handler) CurrentStream(w http.ResponseWriter, r *http.Request) {
	s, ok := h.stores.Streams.Current()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response failed", slog.String("error", err.Error()))
	}
}
