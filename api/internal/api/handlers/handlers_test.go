package handlers_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sealbox/api/internal/api/handlers"
	"sealbox/api/internal/api/middleware"
	"sealbox/api/internal/api/router"
	"sealbox/api/internal/core/services"
)

func newTestAPI(t *testing.T, accessHash string) http.Handler {
	t.Helper()

	keyring := services.NewKeyringService(time.Minute)
	t.Cleanup(keyring.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := services.NewTokenService("handler-test-secret-1234567890")
	sealSvc := services.NewSealService(keyring, nil, logger)

	return router.NewRouter(router.RouterConfig{
		AllowedOrigins:    []string{"http://localhost:5173"},
		SessionHandler:    handlers.NewSessionHandler(keyring, tokens, sealSvc, accessHash, time.Minute),
		SealHandler:       handlers.NewSealHandler(sealSvc),
		RenderHandler:     handlers.NewRenderHandler(sealSvc),
		AuditHandler:      handlers.NewAuditHandler(sealSvc),
		HealthHandler:     handlers.NewHealthHandler(nil),
		SessionMiddleware: middleware.NewSessionMiddleware(tokens, keyring, logger),
		Logger:            logger,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func openSession(t *testing.T, h http.Handler) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp handlers.CreateSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.KeyID)
	return resp.Token
}

func TestAPI_Seal_Open_RoundTrip(t *testing.T) {
	h := newTestAPI(t, "")
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/seal", token, handlers.SealRequest{
		Plaintext: "hello",
		Category:  "dns",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sealed handlers.SealResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sealed))
	assert.True(t, strings.HasPrefix(sealed.Ciphertext, "DNS"))
	assert.Len(t, sealed.Nonce, 16) // 12 nonce bytes in base64

	rec = doJSON(t, h, http.MethodPost, "/api/v1/open", token, handlers.OpenRequest{
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var opened handlers.OpenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&opened))
	assert.Equal(t, "hello", opened.Plaintext)
	assert.Equal(t, "dns", opened.Category)
}

func TestAPI_Open_Tampered_Is_Generic_422(t *testing.T) {
	h := newTestAPI(t, "")
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/seal", token, handlers.SealRequest{
		Plaintext: "payload",
		Category:  "image",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sealed handlers.SealResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sealed))

	// Flip one base64 character past the prefix
	tampered := []byte(sealed.Ciphertext)
	if tampered[10] == 'a' {
		tampered[10] = 'b'
	} else {
		tampered[10] = 'a'
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/open", token, handlers.OpenRequest{
		Ciphertext: string(tampered),
		Nonce:      sealed.Nonce,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	// One message for every decrypt failure, no cause detail
	assert.Equal(t, "Decryption failed - invalid key, nonce, or ciphertext", resp["message"])
}

func TestAPI_Keys_Do_Not_Cross_Sessions(t *testing.T) {
	h := newTestAPI(t, "")
	tokenA := openSession(t, h)
	tokenB := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/seal", tokenA, handlers.SealRequest{
		Plaintext: "for A only",
		Category:  "stream",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sealed handlers.SealResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sealed))

	// B's key must reject A's envelope
	rec = doJSON(t, h, http.MethodPost, "/api/v1/open", tokenB, handlers.OpenRequest{
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_Seal_Requires_Token(t *testing.T) {
	h := newTestAPI(t, "")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/seal", "", handlers.SealRequest{
		Plaintext: "p",
		Category:  "dns",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Seal_Rejects_Unknown_Category(t *testing.T) {
	h := newTestAPI(t, "")
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/seal", token, handlers.SealRequest{
		Plaintext: "p",
		Category:  "carrier-pigeon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Revoke_Kills_The_Session(t *testing.T) {
	h := newTestAPI(t, "")
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/sessions/current", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The token still parses, but the key behind it is gone
	rec = doJSON(t, h, http.MethodPost, "/api/v1/seal", token, handlers.SealRequest{
		Plaintext: "p",
		Category:  "dns",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_Audit_Disabled_Is_404(t *testing.T) {
	h := newTestAPI(t, "")
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/audit", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Render_Returns_PNG(t *testing.T) {
	h := newTestAPI(t, "")
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/seal", token, handlers.SealRequest{
		Plaintext: "draw me",
		Category:  "image",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sealed handlers.SealResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sealed))

	rec = doJSON(t, h, http.MethodPost, "/api/v1/render", token, handlers.RenderRequest{
		Ciphertext: sealed.Ciphertext,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	_, err := png.Decode(rec.Body)
	assert.NoError(t, err, "render output must be a decodable PNG")
}

func TestAPI_Passphrase_Gate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	h := newTestAPI(t, string(hash))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", "", handlers.CreateSessionRequest{Passphrase: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions", "", handlers.CreateSessionRequest{Passphrase: "letmein"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAPI_Health(t *testing.T) {
	h := newTestAPI(t, "")

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", rec.Body.String())
}
