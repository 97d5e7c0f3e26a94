package mediation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for mediation sessions and their messages.
// Messages are append-only; ListMessages must return store insertion order.
type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	GetOpenSessionByDispute(ctx context.Context, disputeID uuid.UUID) (*Session, error)
	UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status SessionStatus) error
	CompleteSession(ctx context.Context, sessionID uuid.UUID, summary, recommendations string, completedAt time.Time) error
	ListSessionsByDispute(ctx context.Context, disputeID uuid.UUID) ([]*Session, error)

	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*Message, error)
}
