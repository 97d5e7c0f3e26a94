package activity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type describes what happened on a dispute.
type Type string

const (
	TypeDisputeCreated      Type = "DISPUTE_CREATED"
	TypeDisputeUpdated      Type = "DISPUTE_UPDATED"
	TypeDisputeClosed       Type = "DISPUTE_CLOSED"
	TypeDisputeResolved     Type = "DISPUTE_RESOLVED"
	TypePartyInvited        Type = "PARTY_INVITED"
	TypePartyJoined         Type = "PARTY_JOINED"
	TypePartyRemoved        Type = "PARTY_REMOVED"
	TypeSessionCreated      Type = "SESSION_CREATED"
	TypeSessionCompleted    Type = "SESSION_COMPLETED"
	TypeMessagePosted       Type = "MESSAGE_POSTED"
	TypeAIResponseGenerated Type = "AI_RESPONSE_GENERATED"
	TypeProposalCreated     Type = "PROPOSAL_CREATED"
	TypeProposalUpdated     Type = "PROPOSAL_UPDATED"
	TypeSignatureCreated    Type = "SIGNATURE_CREATED"
	TypeSignatureVerified   Type = "SIGNATURE_VERIFIED"
)

// Activity is one append-only audit record on a dispute. UserID is nil for
// system or AI actions. The activity log is the sole source of truth for
// audit reporting.
type Activity struct {
	ID         int64           `json:"id"`
	ActivityID uuid.UUID       `json:"activityId"`
	DisputeID  uuid.UUID       `json:"disputeId"`
	UserID     *uuid.UUID      `json:"userId,omitempty"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Report is the aggregate view over one dispute's activity set. It is pure
// derived data, safe to recompute on every request.
type Report struct {
	DisputeID    uuid.UUID      `json:"disputeId"`
	Total        int            `json:"total"`
	CountsByType map[Type]int   `json:"countsByType"`
	CountsByUser []UserCount    `json:"countsByUser"`
	Timeline     map[string]int `json:"timeline"`
	Recent       []*Activity    `json:"recent"`
}

// UserCount pairs an actor with their activity count. The user key "system"
// covers AI and system actions.
type UserCount struct {
	UserID string `json:"userId"`
	Count  int    `json:"count"`
}

// TimelineKey buckets a timestamp into its ISO calendar date.
func TimelineKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
