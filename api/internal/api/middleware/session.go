package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sealbox/api/internal/core/domain"
	"sealbox/api/internal/core/services"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type SessionMiddleware struct {
	Tokens   *services.TokenService
	Keyring  domain.Keyring
	Logger   *slog.Logger
	visitors sync.Map // 🛡️ Thread-safe map for high-concurrency scaling
}

func NewSessionMiddleware(tokens *services.TokenService, keyring domain.Keyring, logger *slog.Logger) *SessionMiddleware {
	m := &SessionMiddleware{
		Tokens:  tokens,
		Keyring: keyring,
		Logger:  logger,
	}
	// Start cleanup worker as a managed method, not a global init
	go m.cleanupVisitors()
	return m
}

// ==============================================================================
// 1. Identity & Zero-Trust Access
// ==============================================================================

func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := m.extractToken(r)

		if tokenString == "" {
			http.Error(w, `{"message": "Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		sessionID, err := m.Tokens.VerifySessionToken(tokenString)
		if err != nil {
			http.Error(w, `{"message": "Invalid token"}`, http.StatusUnauthorized)
			return
		}

		// 🛡️ Zero-Trust: a syntactically valid token is not enough — the
		// key session behind it may have been revoked or expired since.
		if _, err := m.Keyring.Get(r.Context(), sessionID); err != nil {
			m.Logger.Warn("Attempted access with ghost token", slog.String("session_id", sessionID.String()))
			http.Error(w, `{"message": "Key session revoked or expired"}`, http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), domain.SessionContextKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ==============================================================================
// 2. Performance & DoS Protection
// ==============================================================================

func (m *SessionMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 🛡️ Use X-Real-IP for proxy compatibility
		ip := r.Header.Get("X-Real-IP")
		if ip == "" {
			ip = r.RemoteAddr
		}

		v, _ := m.visitors.LoadOrStore(ip, &visitor{
			limiter:  rate.NewLimiter(rate.Limit(10), 30),
			lastSeen: time.Now(),
		})

		vis := v.(*visitor)
		vis.lastSeen = time.Now()

		if !vis.limiter.Allow() {
			http.Error(w, `{"message": "Rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *SessionMiddleware) cleanupVisitors() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		m.visitors.Range(func(key, value interface{}) bool {
			if time.Since(value.(*visitor).lastSeen) > 3*time.Minute {
				m.visitors.Delete(key)
			}
			return true
		})
	}
}

func (m *SessionMiddleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
