package settlement

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// ProposalStatus describes settlement proposal state.
type ProposalStatus string

const (
	ProposalStatusDraft     ProposalStatus = "DRAFT"
	ProposalStatusProposed  ProposalStatus = "PROPOSED"
	ProposalStatusAccepted  ProposalStatus = "ACCEPTED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
	ProposalStatusWithdrawn ProposalStatus = "WITHDRAWN"
)

// Proposal is a concrete offered resolution subject to acceptance and
// signature. Once terminal it is immutable apart from signature attachment
// on ACCEPTED.
type Proposal struct {
	ID         int64          `json:"id"`
	ProposalID uuid.UUID      `json:"proposalId"`
	DisputeID  uuid.UUID      `json:"disputeId"`
	AuthorID   uuid.UUID      `json:"authorId"`
	Terms      string         `json:"terms"`
	Status     ProposalStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// IsTerminal reports whether the proposal reached a final state.
func (p *Proposal) IsTerminal() bool {
	switch p.Status {
	case ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn:
		return true
	}
	return false
}

// CanTransition reports whether a proposal status change is legal.
func CanTransition(from, to ProposalStatus) bool {
	switch to {
	case ProposalStatusProposed:
		return from == ProposalStatusDraft
	case ProposalStatusAccepted, ProposalStatusRejected:
		return from == ProposalStatusProposed
	case ProposalStatusWithdrawn:
		return from == ProposalStatusDraft || from == ProposalStatusProposed
	default:
		return false
	}
}

// Signature is a verification-code confirmation of a signer's agreement, not
// a cryptographic signature. It is created pending and becomes verified
// exactly once when the matching code is supplied.
type Signature struct {
	ID               int64      `json:"id"`
	SignatureID      uuid.UUID  `json:"signatureId"`
	ProposalID       uuid.UUID  `json:"proposalId"`
	SignerID         uuid.UUID  `json:"signerId"`
	VerificationCode string     `json:"-"`
	SignedAt         time.Time  `json:"signedAt"`
	VerifiedAt       *time.Time `json:"verifiedAt,omitempty"`
}

// IsVerified reports whether the signature has been confirmed.
func (s *Signature) IsVerified() bool {
	return s.VerifiedAt != nil
}

// NewVerificationCode generates a 12-char hex confirmation code.
func NewVerificationCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
