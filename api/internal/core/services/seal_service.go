package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sealbox/api/internal/core/domain"
	"sealbox/api/internal/infrastructure/crypto"
)

// SealService orchestrates the envelope codec for one authenticated key
// session and feeds the audit trail. It holds no state of its own — the
// keyring owns the keys, the codec is pure functions.
type SealService struct {
	keyring domain.Keyring
	audit   domain.AuditRecorder // nil when no audit store is configured
	logger  *slog.Logger
}

func NewSealService(keyring domain.Keyring, audit domain.AuditRecorder, logger *slog.Logger) *SealService {
	return &SealService{
		keyring: keyring,
		audit:   audit,
		logger:  logger,
	}
}

// Seal encrypts plaintext under the session's key.
func (s *SealService) Seal(ctx context.Context, sessionID uuid.UUID, plaintext string, cat crypto.Category) (crypto.Envelope, error) {
	session, err := s.keyring.Get(ctx, sessionID)
	if err != nil {
		return crypto.Envelope{}, err
	}

	env, err := crypto.Seal(plaintext, session.Key, cat)
	s.record(ctx, sessionID, domain.OpSeal, string(cat), err)
	if err != nil {
		s.logger.Error("Seal failure", slog.String("session_id", sessionID.String()), slog.String("error", err.Error()))
		return crypto.Envelope{}, err
	}
	return env, nil
}

// Open decrypts an envelope under the session's key. The returned error is
// the codec's single generic decrypt failure — nothing more is logged about
// the cause either, only that a failure happened.
func (s *SealService) Open(ctx context.Context, sessionID uuid.UUID, env crypto.Envelope) (string, crypto.Category, error) {
	session, err := s.keyring.Get(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	plaintext, cat, err := crypto.Open(env, session.Key)
	s.record(ctx, sessionID, domain.OpOpen, string(cat), err)
	if err != nil {
		s.logger.Warn("Open rejected an envelope", slog.String("session_id", sessionID.String()))
		return "", "", err
	}
	return plaintext, cat, nil
}

// Revoke drops the session's key.
func (s *SealService) Revoke(ctx context.Context, sessionID uuid.UUID) bool {
	return s.keyring.Revoke(ctx, sessionID)
}

// RecordRender logs a render operation against the audit trail. Rendering
// itself never touches the key, so only the event is the service's business.
func (s *SealService) RecordRender(ctx context.Context, sessionID uuid.UUID, cat crypto.Category) {
	s.record(ctx, sessionID, domain.OpRender, string(cat), nil)
}

// Recent returns the latest audit events for the session.
func (s *SealService) Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.OperationEvent, error) {
	if s.audit == nil {
		return nil, domain.ErrAuditDisabled
	}
	return s.audit.RecentBySession(ctx, sessionID, limit)
}

// record is best-effort: a down audit store must never fail the codec call.
func (s *SealService) record(ctx context.Context, sessionID uuid.UUID, op, cat string, opErr error) {
	if s.audit == nil {
		return
	}

	outcome := domain.OutcomeOK
	if opErr != nil {
		outcome = domain.OutcomeFailed
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	ev := &domain.OperationEvent{
		SessionID: sessionID,
		Operation: op,
		Category:  cat,
		Outcome:   outcome,
	}
	if err := s.audit.Record(recordCtx, ev); err != nil {
		s.logger.Warn("Audit record dropped", slog.String("operation", op), slog.String("error", err.Error()))
	}
}
