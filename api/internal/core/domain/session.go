package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sealbox/api/internal/infrastructure/crypto"
)

type contextKey string

// SessionContextKey carries the authenticated key-session ID through a request.
const SessionContextKey contextKey = "sealbox_session"

// ErrSessionNotFound covers both unknown and expired sessions. The two
// cases are deliberately indistinguishable to callers.
var ErrSessionNotFound = errors.New("key session not found or expired")

// KeySession binds a short-lived AES-256 key to a UUID handle. The key is
// generated when the session is created, lives only in process memory, and
// is gone for good once the session expires or is revoked.
type KeySession struct {
	ID        uuid.UUID
	Key       crypto.Key
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *KeySession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Keyring holds live key sessions. Implementations must be safe for
// concurrent use and must never persist key material.
type Keyring interface {
	Create(ctx context.Context) (*KeySession, error)
	Get(ctx context.Context, id uuid.UUID) (*KeySession, error)
	Revoke(ctx context.Context, id uuid.UUID) bool
}
