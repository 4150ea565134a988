package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAuditDisabled is returned when the audit trail is queried but no
// store was configured (DATABASE_URL unset).
var ErrAuditDisabled = errors.New("audit trail is not enabled")

// Operation names recorded in the audit trail.
const (
	OpSeal   = "seal"
	OpOpen   = "open"
	OpRender = "render"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// OperationEvent is one audit row: which session performed which codec
// operation and whether it succeeded. 🛡️ It must NEVER carry plaintext,
// ciphertext, or key material — only metadata.
type OperationEvent struct {
	ID        int64     `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Operation string    `json:"operation"`
	Category  string    `json:"category,omitempty"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditRecorder persists operation events. Recording is best-effort from
// the caller's point of view; a down audit store must not block the codec.
type AuditRecorder interface {
	Record(ctx context.Context, ev *OperationEvent) error
	RecentBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]OperationEvent, error)
}
