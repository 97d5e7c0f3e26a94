package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for settlement proposals and signatures.
// Proposals move only through defined status transitions and are never
// deleted.
type Repository interface {
	CreateProposal(ctx context.Context, p *Proposal) error
	GetProposalByID(ctx context.Context, proposalID uuid.UUID) (*Proposal, error)
	UpdateProposal(ctx context.Context, p *Proposal) error
	ListProposalsByDispute(ctx context.Context, disputeID uuid.UUID) ([]*Proposal, error)

	CreateSignature(ctx context.Context, sig *Signature) error
	GetSignatureByID(ctx context.Context, signatureID uuid.UUID) (*Signature, error)
	GetSignatureBySigner(ctx context.Context, proposalID uuid.UUID, signerID uuid.UUID) (*Signature, error)
	MarkSignatureVerified(ctx context.Context, signatureID uuid.UUID, verifiedAt time.Time) error
	ListSignaturesByProposal(ctx context.Context, proposalID uuid.UUID) ([]*Signature, error)
}
