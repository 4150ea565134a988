// api/internal/api/handlers/render_handler.go
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"sealbox/api/internal/core/services"
	"sealbox/api/internal/infrastructure/crypto"
	"sealbox/api/internal/infrastructure/render"
)

type RenderRequest struct {
	Ciphertext string `json:"ciphertext" validate:"required"`
}

type RenderHandler struct {
	Service *services.SealService
}

func NewRenderHandler(service *services.SealService) *RenderHandler {
	return &RenderHandler{Service: service}
}

// Render handles POST /api/v1/render — draws the decorative PNG of a tagged
// ciphertext. Non-normative: the image cannot be decoded back into the
// ciphertext and no endpoint attempts to. No key is touched here.
func (h *RenderHandler) Render(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(r)
	if !ok {
		http.Error(w, `{"message": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message": "Invalid JSON payload"}`, http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	cat, payload := crypto.Classify(req.Ciphertext)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		http.Error(w, `{"message": "Ciphertext is not valid base64"}`, http.StatusBadRequest)
		return
	}

	img, err := render.PNG(raw)
	if err != nil {
		http.Error(w, `{"message": "Rendering failed"}`, http.StatusInternalServerError)
		return
	}

	h.Service.RecordRender(r.Context(), sessionID, cat)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
