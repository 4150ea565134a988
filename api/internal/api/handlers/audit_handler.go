// api/internal/api/handlers/audit_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sealbox/api/internal/core/domain"
	"sealbox/api/internal/core/services"
)

type AuditHandler struct {
	Service *services.SealService
}

func NewAuditHandler(service *services.SealService) *AuditHandler {
	return &AuditHandler{Service: service}
}

// Recent handles GET /api/v1/audit?limit=N — the caller's own trail only.
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(r)
	if !ok {
		http.Error(w, `{"message": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, `{"message": "limit must be a positive integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := h.Service.Recent(r.Context(), sessionID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrAuditDisabled) {
			http.Error(w, `{"message": "Audit trail is not enabled"}`, http.StatusNotFound)
			return
		}
		HandleError(w, r, err)
		return
	}

	if events == nil {
		events = []domain.OperationEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
