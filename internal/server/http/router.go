package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts every route behind recovery, request logging and
// metrics, and serves the registry's metrics on /metrics.
func NewRouter(h *Handler, guard Authenticator, reg *prometheus.Registry) *mux.Router {
	router := mux.NewRouter()
	metrics := NewMetrics(reg)

	router.Use(h.recoverPanics, h.logRequests, metrics.middleware)

	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	for _, rt := range h.Routes() {
		handler := rt.Handler
		if rt.Auth {
			handler = h.requireAuth(guard, rt.Roles, handler)
		}
		router.HandleFunc(rt.Path, handler).Methods(rt.Method)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: http.StatusText(http.StatusNotFound)})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})
	})

	return router
}
