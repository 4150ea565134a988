package services_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealbox/api/internal/core/services"
)

const (
	testSecret = "super-secret-key-for-testing-purposes-1234567890"
)

func TestTokenService_IssueSessionToken(t *testing.T) {
	// 1. Setup
	tokenService := services.NewTokenService(testSecret)
	sessionID := uuid.New()

	// 2. Execution
	tokenString, err := tokenService.IssueSessionToken(sessionID, 30*time.Minute)

	// 3. Verification
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	token, err := jwt.ParseWithClaims(tokenString, &services.SealboxClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*services.SealboxClaims)
	require.True(t, ok)

	assert.Equal(t, "session", claims.TokenType)
	assert.Equal(t, sessionID.String(), claims.Subject)
	assert.Equal(t, "sealbox-api", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	// Verify Expiration (approx 30 mins)
	expectedExp := time.Now().Add(30 * time.Minute)
	assert.WithinDuration(t, expectedExp, claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenService_VerifySessionToken_RoundTrip(t *testing.T) {
	tokenService := services.NewTokenService(testSecret)
	sessionID := uuid.New()

	tokenString, err := tokenService.IssueSessionToken(sessionID, time.Minute)
	require.NoError(t, err)

	got, err := tokenService.VerifySessionToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestTokenService_Rejects_Wrong_Secret(t *testing.T) {
	tokenString, err := services.NewTokenService(testSecret).IssueSessionToken(uuid.New(), time.Minute)
	require.NoError(t, err)

	_, err = services.NewTokenService("a-completely-different-secret-0987654321").VerifySessionToken(tokenString)
	assert.Error(t, err)
}

func TestTokenService_Rejects_Expired_Token(t *testing.T) {
	tokenService := services.NewTokenService(testSecret)

	tokenString, err := tokenService.IssueSessionToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = tokenService.VerifySessionToken(tokenString)
	assert.Error(t, err)
}

func TestTokenService_Rejects_Wrong_Token_Type(t *testing.T) {
	// Craft a token with the right signature but the wrong type
	claims := services.SealboxClaims{
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "sealbox-api",
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = services.NewTokenService(testSecret).VerifySessionToken(tokenString)
	assert.ErrorContains(t, err, "wrong token type")
}

func TestTokenService_Rejects_Garbage(t *testing.T) {
	_, err := services.NewTokenService(testSecret).VerifySessionToken("not.a.jwt")
	assert.Error(t, err)
}
