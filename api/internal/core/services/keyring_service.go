package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sealbox/api/internal/core/domain"
	"sealbox/api/internal/infrastructure/crypto"
)

// KeyringService is the in-memory vault of live key sessions. Keys are
// born here, stay here, and die here — nothing is ever written out.
type KeyringService struct {
	ttl      time.Duration
	sessions sync.Map // uuid.UUID -> *domain.KeySession
	done     chan struct{}
	stopOnce sync.Once
}

func NewKeyringService(ttl time.Duration) *KeyringService {
	k := &KeyringService{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	// Sweeper runs as a managed method, not a global init
	go k.sweepExpired()
	return k
}

// Create mints a fresh 256-bit key under a new UUID handle.
func (k *KeyringService) Create(ctx context.Context) (*domain.KeySession, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.KeySession{
		ID:        uuid.New(),
		Key:       key,
		CreatedAt: now,
		ExpiresAt: now.Add(k.ttl),
	}
	k.sessions.Store(session.ID, session)
	return session, nil
}

// Get resolves a session and enforces expiry eagerly, so a stale token
// can never reach a dead key even before the sweeper runs.
func (k *KeyringService) Get(ctx context.Context, id uuid.UUID) (*domain.KeySession, error) {
	v, ok := k.sessions.Load(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	session := v.(*domain.KeySession)
	if session.Expired(time.Now()) {
		k.sessions.Delete(id)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Revoke drops a session immediately. Returns false if it was already gone.
func (k *KeyringService) Revoke(ctx context.Context, id uuid.UUID) bool {
	_, ok := k.sessions.LoadAndDelete(id)
	return ok
}

// Close stops the background sweeper.
func (k *KeyringService) Close() {
	k.stopOnce.Do(func() { close(k.done) })
}

func (k *KeyringService) sweepExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
			now := time.Now()
			k.sessions.Range(func(key, value any) bool {
				if value.(*domain.KeySession).Expired(now) {
					k.sessions.Delete(key)
				}
				return true
			})
		}
	}
}
