package party

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role describes a party's position in a dispute.
type Role string

const (
	RoleComplainant Role = "COMPLAINANT"
	RoleRespondent  Role = "RESPONDENT"
	RoleWitness     Role = "WITNESS"
)

// Status describes invitation state.
type Status string

const (
	StatusInvited Status = "INVITED"
	StatusActive  Status = "ACTIVE"
	StatusRemoved Status = "REMOVED"
)

// Party is an invited participant in a dispute, identified by email and
// optionally bound to a user account after invitation acceptance.
type Party struct {
	ID         int64      `json:"id"`
	PartyID    uuid.UUID  `json:"partyId"`
	DisputeID  uuid.UUID  `json:"disputeId"`
	UserID     *uuid.UUID `json:"userId,omitempty"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	InviteCode string     `json:"-"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// IsActive reports whether the party may act on the dispute.
func (p *Party) IsActive() bool {
	return p.Status == StatusActive
}

// NormalizeEmail lowercases and trims an email for per-dispute uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseRole normalizes a caller-supplied role, defaulting to RESPONDENT.
func ParseRole(v string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(v))) {
	case RoleComplainant:
		return RoleComplainant
	case RoleWitness:
		return RoleWitness
	default:
		return RoleRespondent
	}
}

// NewInviteCode generates a 32-char hex invitation code. Global uniqueness is
// enforced by the registry against the store, not assumed from entropy alone.
func NewInviteCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
