// api/internal/api/handlers/seal_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"sealbox/api/internal/core/services"
	"sealbox/api/internal/infrastructure/crypto"
)

// Use a single instance of Validate, it caches struct info
var validate = validator.New()

// ==============================================================================
// 1. Request Payloads (Input Validation)
// ==============================================================================

type SealRequest struct {
	// Empty plaintext is legal: GCM produces a tag-only ciphertext
	Plaintext string `json:"plaintext"`
	Category  string `json:"category" validate:"required,oneof=image dns stream"`
}

type SealResponse struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

type OpenRequest struct {
	Ciphertext string `json:"ciphertext" validate:"required"`
	Nonce      string `json:"nonce" validate:"required"`
}

type OpenResponse struct {
	Plaintext string `json:"plaintext"`
	Category  string `json:"category"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type SealHandler struct {
	Service *services.SealService
}

func NewSealHandler(service *services.SealService) *SealHandler {
	return &SealHandler{Service: service}
}

// ==============================================================================
// 3. HTTP Methods
// ==============================================================================

// Seal handles POST /api/v1/seal
func (h *SealHandler) Seal(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(r)
	if !ok {
		http.Error(w, `{"message": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req SealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message": "Invalid JSON payload"}`, http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	// Category is guaranteed valid by the oneof rule above
	cat, _ := crypto.ParseCategory(req.Category)

	env, err := h.Service.Seal(r.Context(), sessionID, req.Plaintext, cat)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SealResponse{
		Ciphertext: env.Ciphertext,
		Nonce:      env.Nonce,
	})
}

// Open handles POST /api/v1/open
func (h *SealHandler) Open(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(r)
	if !ok {
		http.Error(w, `{"message": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message": "Invalid JSON payload"}`, http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	plaintext, cat, err := h.Service.Open(r.Context(), sessionID, crypto.Envelope{
		Ciphertext: req.Ciphertext,
		Nonce:      req.Nonce,
	})
	if err != nil {
		// 🛡️ One generic message for every decrypt failure. The UI must
		// show it as-is and clear any previously decrypted output.
		if errors.Is(err, crypto.ErrDecrypt) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"message": "Decryption failed - invalid key, nonce, or ciphertext",
			})
			return
		}
		HandleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, OpenResponse{
		Plaintext: plaintext,
		Category:  string(cat),
	})
}
