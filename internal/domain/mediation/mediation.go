package mediation

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SessionStatus describes mediation session state.
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "SCHEDULED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// MessageRole describes who authored a mediation message.
type MessageRole string

const (
	MessageRoleUser     MessageRole = "USER"
	MessageRoleMediator MessageRole = "MEDIATOR"
	MessageRoleAI       MessageRole = "AI"
)

// Session is a bounded, possibly AI-assisted conversation aimed at resolving
// a dispute. A dispute has at most one non-completed session at a time.
type Session struct {
	ID              int64         `json:"id"`
	SessionID       uuid.UUID     `json:"sessionId"`
	DisputeID       uuid.UUID     `json:"disputeId"`
	Code            string        `json:"code"`
	MediatorID      *uuid.UUID    `json:"mediatorId,omitempty"`
	AIAssistance    bool          `json:"aiAssistance"`
	Status          SessionStatus `json:"status"`
	Summary         *string       `json:"summary,omitempty"`
	Recommendations *string       `json:"recommendations,omitempty"`
	ScheduledAt     time.Time     `json:"scheduledAt"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
}

// IsCompleted reports whether the session has been closed out with a summary.
func (s *Session) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}

// Message is one turn in a mediation session. Messages are immutable once
// created; ordering by creation time is the canonical turn order.
type Message struct {
	ID        int64       `json:"id"`
	MessageID uuid.UUID   `json:"messageId"`
	SessionID uuid.UUID   `json:"sessionId"`
	UserID    *uuid.UUID  `json:"userId,omitempty"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Sentiment *string     `json:"sentiment,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewSessionCode generates a 16-char hex session code.
func NewSessionCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
