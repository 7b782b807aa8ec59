// Package handlers serves the read-only status endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chamberirc/chamberbnc/internal/shared/version"
)

type NetworkStatus struct {
	Name      string `json:"name"`
	Server    string `json:"server"`
	Connected bool   `json:"connected"`
}

type StoreStatus struct {
	Name      string `json:"name"`
	Records   int    `json:"records"`
	Degraded  bool   `json:"degraded"`
	LastError string `json:"last_error,omitempty"`
}

type SchedulerStatus struct {
	Running         bool `json:"running"`
	PendingDeferred int  `json:"pending_deferred"`
	FailedDeferred  int  `json:"failed_deferred"`
}

// StatusSource is read on every request; implementations must be safe for
// concurrent use.
type StatusSource interface {
	Networks() []NetworkStatus
	Stores() []StoreStatus
	Scheduler() SchedulerStatus
}

type StatusHandler struct {
	source StatusSource
}

func NewStatusHandler(source StatusSource) *StatusHandler {
	return &StatusHandler{source: source}
}

// HealthCheck handles GET /health. Any degraded store turns the probe 503.
func (h *StatusHandler) HealthCheck(c *gin.Context) {
	for _, s := range h.source.Stores() {
		if s.Degraded {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "degraded",
				"service": "chamberbnc",
				"store":   s.Name,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "chamberbnc",
	})
}

// Status handles GET /status.
func (h *StatusHandler) Status(c *gin.Context) {
	networks := h.source.Networks()
	stores := h.source.Stores()

	status := "healthy"
	for _, s := range stores {
		if s.Degraded {
			status = "degraded"
			break
		}
	}

	connected := 0
	for _, n := range networks {
		if n.Connected {
			connected++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"version":   version.String(),
		"connected": connected,
		"networks":  networks,
		"stores":    stores,
		"scheduler": h.source.Scheduler(),
	})
}

// Version handles GET /version.
func (h *StatusHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": version.String(),
		"release": version.IsRelease(),
	})
}
