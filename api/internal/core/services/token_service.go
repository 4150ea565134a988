package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SealboxClaims binds a bearer token to exactly one key session.
type SealboxClaims struct {
	TokenType string `json:"token_type"` // 🛡️ SLA: blocks cross-type token confusion
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// IssueSessionToken mints an HS256 token whose subject is the key-session ID.
// Its lifetime matches the session's, so the token and the key die together.
func (s *TokenService) IssueSessionToken(sessionID uuid.UUID, ttl time.Duration) (string, error) {
	claims := SealboxClaims{
		TokenType: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "sealbox-api",
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken validates signature, expiry, and token type, and
// returns the key-session ID the token is bound to.
func (s *TokenService) VerifySessionToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SealboxClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 🛡️ Zero-Trust: Force the signing method check
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token signature or expired: %w", err)
	}

	claims, ok := token.Claims.(*SealboxClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != "session" {
		return uuid.Nil, fmt.Errorf("wrong token type %q", claims.TokenType)
	}

	sessionID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed token subject: %w", err)
	}
	return sessionID, nil
}
