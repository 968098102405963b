package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves Prometheus metrics.
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler creates a metrics handler over exposition. A nil
// exposition serves the default Prometheus registry.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	if exposition == nil {
		exposition = promhttp.Handler()
	}
	return &MetricsHandler{
		handler: exposition,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.handler.ServeHTTP(w, r)
}
