package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// Health status constants for health check responses.
const (
	healthStatusOK            = "ok"
	healthStatusNotReady      = "not ready"
	healthStatusShuttingDown  = "shutting down"
	healthStatusNotConfigured = "not configured"
)

// HealthChecker serves the health endpoints used by Kubernetes probes.
// Liveness reports only that the process is responding; readiness
// additionally requires a configured task store and a server that is not
// shutting down.
type HealthChecker struct {
	// ready flips to false while the server drains during shutdown.
	ready atomic.Bool

	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker bound to the given server
// context. The server starts out ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

func (h *HealthChecker) shuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

func (h *HealthChecker) storeConfigured() bool {
	return h.serverContext != nil && h.serverContext.Store() != nil
}

// HealthResponse is the JSON body of the health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse extends HealthResponse with uptime information.
type DetailedHealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

// RegisterHealthEndpoints mounts the health endpoints on the router.
func (h *HealthChecker) RegisterHealthEndpoints(r chi.Router) {
	r.Get("/healthz", h.LivenessHandler)
	r.Get("/readyz", h.ReadinessHandler)
	r.Get("/healthz/detailed", h.DetailedHealthHandler)
}

// LivenessHandler serves /healthz. It answers ok whenever the process can
// serve HTTP at all; the state of the remote task store never factors in.
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
}

// ReadinessHandler serves /readyz. The server is ready when it has been
// marked ready, is not shutting down, and has a task store configured.
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	checks, ok := h.runChecks()

	response := HealthResponse{Status: healthStatusOK, Checks: checks}
	status := http.StatusOK
	if !ok {
		response.Status = healthStatusNotReady
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, response)
}

// DetailedHealthHandler serves /healthz/detailed with uptime and the
// individual check results.
func (h *HealthChecker) DetailedHealthHandler(w http.ResponseWriter, _ *http.Request) {
	checks, ok := h.runChecks()

	response := DetailedHealthResponse{
		Status: healthStatusOK,
		Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		Checks: checks,
	}
	status := http.StatusOK
	if !ok {
		response.Status = healthStatusNotReady
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, response)
}

func (h *HealthChecker) runChecks() (map[string]string, bool) {
	checks := make(map[string]string)
	ok := true

	if h.ready.Load() {
		checks["ready"] = healthStatusOK
	} else {
		checks["ready"] = healthStatusNotReady
		ok = false
	}

	if h.shuttingDown() {
		checks["shutdown"] = healthStatusShuttingDown
		ok = false
	} else {
		checks["shutdown"] = healthStatusOK
	}

	if h.storeConfigured() {
		checks["taskstore"] = healthStatusOK
	} else {
		checks["taskstore"] = healthStatusNotConfigured
		ok = false
	}

	return checks, ok
}

func writeHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
