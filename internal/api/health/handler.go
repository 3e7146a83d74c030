package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hermes/internal/domain/market"
	"hermes/internal/domain/news"
	"hermes/pkg/logger"
)

// Prober checks reachability of the local inference endpoint.
type Prober interface {
	Health(ctx context.Context) error
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	assistant   Prober
	quotes      *market.Store
	news        *news.Store
	maxStale    time.Duration
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. maxStale bounds how old a
// published snapshot may be before the component reports unhealthy;
// it should be a couple of refresh intervals.
func New(
	log *logger.Logger,
	assistant Prober,
	quotes *market.Store,
	articles *news.Store,
	maxStale time.Duration,
	serviceName string,
	version string,
) *Handler {
	return &Handler{
		log:         log,
		assistant:   assistant,
		quotes:      quotes,
		news:        articles,
		maxStale:    maxStale,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status      string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service     string                     `json:"service"`
	Version     string                     `json:"version"`
	Uptime      string                     `json:"uptime"`
	Timestamp   string                     `json:"timestamp"`
	Checks      map[string]ComponentHealth `json:"checks"`
	ErrorDetail string                     `json:"error_detail,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic.
// Ready means the quote snapshot has been published and is fresh; the
// assistant being offline degrades /health but never blocks readiness,
// the dashboard works without it.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]ComponentHealth)

	quotesHealth := h.checkQuotes()
	checks["quotes"] = quotesHealth

	newsHealth := h.checkNews()
	checks["news"] = newsHealth

	allHealthy := quotesHealth.Status == "healthy" && newsHealth.Status == "healthy"

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Readiness check failed", "checks", checks)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// HandleHealth returns detailed health status (includes all checks)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth)
	healthyCount := 0
	totalCount := 0

	totalCount++
	quotesHealth := h.checkQuotes()
	checks["quotes"] = quotesHealth
	if quotesHealth.Status == "healthy" {
		healthyCount++
	}

	totalCount++
	newsHealth := h.checkNews()
	checks["news"] = newsHealth
	if newsHealth.Status == "healthy" {
		healthyCount++
	}

	totalCount++
	assistantHealth := h.checkAssistant(ctx)
	checks["assistant"] = assistantHealth
	if assistantHealth.Status == "healthy" {
		healthyCount++
	}

	// Determine overall status
	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK

	if healthyCount == 0 {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if healthyCount < totalCount {
		status.Status = "degraded"
		statusCode = http.StatusOK // Still return 200 for degraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// checkAssistant probes the inference endpoint
func (h *Handler) checkAssistant(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := h.assistant.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

// checkQuotes verifies the market snapshot exists and is fresh
func (h *Handler) checkQuotes() ComponentHealth {
	snap := h.quotes.Snapshot()
	return h.checkSnapshot(len(snap.Quotes) > 0, snap.UpdatedAt)
}

// checkNews verifies the news snapshot exists and is fresh
func (h *Handler) checkNews() ComponentHealth {
	snap := h.news.Snapshot()
	return h.checkSnapshot(len(snap.Articles) > 0, snap.UpdatedAt)
}

func (h *Handler) checkSnapshot(populated bool, updatedAt time.Time) ComponentHealth {
	if !populated {
		return ComponentHealth{
			Status: "unhealthy",
			Error:  "no snapshot published yet",
		}
	}
	if age := time.Since(updatedAt); age > h.maxStale {
		return ComponentHealth{
			Status: "unhealthy",
			Error:  "snapshot is stale: " + age.String(),
		}
	}
	return ComponentHealth{Status: "healthy"}
}
