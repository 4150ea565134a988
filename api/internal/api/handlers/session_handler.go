// api/internal/api/handlers/session_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sealbox/api/internal/core/domain"
	"sealbox/api/internal/core/services"
)

// ==============================================================================
// 1. Request / Response Payloads
// ==============================================================================

type CreateSessionRequest struct {
	// Only checked when the deployment configured an access passphrase
	Passphrase string `json:"passphrase,omitempty"`
}

type CreateSessionResponse struct {
	KeyID     string    `json:"key_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type SessionHandler struct {
	Keyring    domain.Keyring
	Tokens     *services.TokenService
	SealSvc    *services.SealService
	AccessHash string // bcrypt hash; empty means open access
	SessionTTL time.Duration
}

func NewSessionHandler(keyring domain.Keyring, tokens *services.TokenService, sealSvc *services.SealService, accessHash string, ttl time.Duration) *SessionHandler {
	return &SessionHandler{
		Keyring:    keyring,
		Tokens:     tokens,
		SealSvc:    sealSvc,
		AccessHash: accessHash,
		SessionTTL: ttl,
	}
}

// ==============================================================================
// 3. HTTP Methods
// ==============================================================================

// Create handles POST /api/v1/sessions — mints a fresh key session and the
// bearer token bound to it. The key itself never leaves the server.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	// An empty body is fine for open-access deployments
	_ = json.NewDecoder(r.Body).Decode(&req)

	if h.AccessHash != "" {
		// 🛡️ bcrypt comparison is deliberately slow; combined with the
		// rate limiter it makes passphrase guessing impractical.
		if err := bcrypt.CompareHashAndPassword([]byte(h.AccessHash), []byte(req.Passphrase)); err != nil {
			http.Error(w, `{"message": "Invalid access passphrase"}`, http.StatusUnauthorized)
			return
		}
	}

	session, err := h.Keyring.Create(r.Context())
	if err != nil {
		http.Error(w, `{"message": "Failed to generate key"}`, http.StatusInternalServerError)
		return
	}

	token, err := h.Tokens.IssueSessionToken(session.ID, h.SessionTTL)
	if err != nil {
		// A session without a reachable token is dead weight — drop it
		h.Keyring.Revoke(r.Context(), session.ID)
		http.Error(w, `{"message": "Failed to issue session token"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		KeyID:     session.ID.String(),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// RevokeCurrent handles DELETE /api/v1/sessions/current — the key is gone
// immediately; outstanding envelopes become permanently unreadable.
func (h *SessionHandler) RevokeCurrent(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(r)
	if !ok {
		http.Error(w, `{"message": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	h.SealSvc.Revoke(r.Context(), sessionID)
	w.WriteHeader(http.StatusNoContent)
}
