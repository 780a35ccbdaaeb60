// Package http provides HTTP handlers and middleware for the query API.
// It includes the query endpoint, health check endpoints, metrics collection,
// and various middleware components.
package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "degraded"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string                 `json:"status"`            // "healthy" or "degraded"
	Message string                 `json:"message,omitempty"` // Optional status message
	Details map[string]interface{} `json:"details,omitempty"` // Optional additional details
}

// BreakerStates reports the current state of every registered circuit breaker.
type BreakerStates interface {
	States() map[string]string
}

// HealthHandler handles health check endpoint requests.
// It reports the state of the upstream circuit breakers so operators can see
// which providers are currently being shed.
type HealthHandler struct {
	Breakers BreakerStates
	Version  string
}

// ServeHTTP reports the application health status.
// An open circuit breaker marks the service degraded, not unhealthy: the
// service still answers queries, with apologies for the affected provider.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)

	status := "healthy"
	if h.Breakers != nil {
		breakerCheck := h.checkBreakers()
		checks["circuit_breakers"] = breakerCheck
		if breakerCheck.Status == "degraded" {
			status = "degraded"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("health: failed to encode response: %v", err)
	}
}

// checkBreakers summarizes the per-endpoint circuit breaker states.
func (h *HealthHandler) checkBreakers() CheckStatus {
	states := h.Breakers.States()

	details := make(map[string]interface{}, len(states))
	anyOpen := false
	for endpoint, state := range states {
		details[endpoint] = state
		if state != "closed" {
			anyOpen = true
		}
	}

	if anyOpen {
		return CheckStatus{
			Status:  "degraded",
			Message: "one or more upstream providers unavailable",
			Details: details,
		}
	}

	return CheckStatus{
		Status:  "healthy",
		Details: details,
	}
}

// ReadyHandler handles Kubernetes readiness probe requests.
// The service has no stateful backends, so readiness mirrors liveness.
type ReadyHandler struct{}

// ServeHTTP returns 200 OK once the server is accepting traffic.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		log.Printf("ready: failed to write response: %v", err)
	}
}

// LiveHandler handles Kubernetes liveness probe requests.
// It performs a lightweight check to verify the application is responsive.
type LiveHandler struct{}

// ServeHTTP performs a simple liveness check and always returns 200 OK
// if the application is running and able to respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		log.Printf("alive: failed to write response: %v", err)
	}
}
