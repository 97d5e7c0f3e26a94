package dispute

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status describes dispute lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusMediation Status = "MEDIATION"
	StatusResolved  Status = "RESOLVED"
	StatusClosed    Status = "CLOSED"
)

// Type describes what kind of disagreement is being tracked.
type Type string

const (
	TypeContract Type = "CONTRACT"
	TypePayment  Type = "PAYMENT"
	TypeService  Type = "SERVICE"
	TypeProperty Type = "PROPERTY"
	TypeOther    Type = "OTHER"
)

// Dispute is a filed disagreement tracked through a resolution lifecycle.
// Owned rows (parties, sessions, proposals, activities) reference DisputeID.
type Dispute struct {
	ID                int64           `json:"id"`
	DisputeID         uuid.UUID       `json:"disputeId"`
	OwnerID           uuid.UUID       `json:"ownerId"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	PartiesDescription string         `json:"partiesDescription,omitempty"`
	Type              Type            `json:"type"`
	Status            Status          `json:"status"`
	ActiveSessionID   *uuid.UUID      `json:"activeSessionId,omitempty"`
	AIAnalysis        json.RawMessage `json:"aiAnalysis,omitempty"`
	Documents         []string        `json:"documents,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	ResolvedAt        *time.Time      `json:"resolvedAt,omitempty"`
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (d *Dispute) IsTerminal() bool {
	return d.Status == StatusResolved || d.Status == StatusClosed
}

// CanTransition reports whether moving from the current status to next is a
// legal lifecycle step. Closing is allowed from any non-resolved state;
// resolution is only reachable from mediation.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusActive:
		return from == StatusPending
	case StatusMediation:
		return from == StatusPending || from == StatusActive
	case StatusResolved:
		return from == StatusMediation
	case StatusClosed:
		return from != StatusResolved
	default:
		return false
	}
}

// ParseType normalizes a caller-supplied dispute type, defaulting to OTHER.
func ParseType(v string) Type {
	switch Type(strings.ToUpper(strings.TrimSpace(v))) {
	case TypeContract:
		return TypeContract
	case TypePayment:
		return TypePayment
	case TypeService:
		return TypeService
	case TypeProperty:
		return TypeProperty
	default:
		return TypeOther
	}
}
