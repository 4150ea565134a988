package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is whatever backing store the deployment configured, if any.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	audit Pinger // nil when the audit store is disabled
}

func NewHealthHandler(audit Pinger) *HealthHandler {
	return &HealthHandler{audit: audit}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.audit != nil {
		// 🛡️ SLA: Use a tight timeout for health checks
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.audit.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unhealthy: audit store unreachable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("healthy"))
}
