package httpx

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router exposes the bot's operational HTTP endpoints.
type Router struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	metrics *Metrics
	started time.Time
}

// New creates and registers handlers.
func New(logger *slog.Logger, metrics *Metrics) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		logger:  logger,
		metrics: metrics,
		started: time.Now().UTC(),
	}
	r.routes()
	return r
}

// ServeHTTP satisfies http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) routes() {
	r.mux.HandleFunc("/metrics", promhttp.Handler().ServeHTTP)
	r.mux.HandleFunc("/healthz", r.handleHealth)
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	payload := `{"status":"ok","started_at":"` + r.started.Format(time.RFC3339) + `"}`
	if _, err := w.Write([]byte(payload)); err != nil {
		r.logger.Warn("health response write failed", "error", err)
	}
}
