package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"sealbox/api/internal/core/domain"
)

// writeJSON is the single response funnel for all handlers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleError maps service and validation failures onto HTTP responses.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Validation failed: " + strings.Join(fields, ", "),
		})
		return
	}

	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"message": "Key session revoked or expired",
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"message": "Internal server error",
	})
}

// sessionFromContext pulls the authenticated key-session ID injected by
// the session middleware.
func sessionFromContext(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(domain.SessionContextKey).(uuid.UUID)
	return id, ok
}
