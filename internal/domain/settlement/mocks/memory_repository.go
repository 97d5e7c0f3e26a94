// Package mocks provides an in-memory settlement.Repository for tests.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediahub/mediahub/internal/domain/settlement"
)

// MemoryRepository is a map-backed settlement.Repository.
type MemoryRepository struct {
	mu         sync.Mutex
	nextID     int64
	proposals  map[uuid.UUID]*settlement.Proposal
	signatures map[uuid.UUID]*settlement.Signature
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		proposals:  make(map[uuid.UUID]*settlement.Proposal),
		signatures: make(map[uuid.UUID]*settlement.Signature),
	}
}

func (r *MemoryRepository) CreateProposal(_ context.Context, p *settlement.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.proposals[p.ProposalID] = &cp
	return nil
}

func (r *MemoryRepository) GetProposalByID(_ context.Context, proposalID uuid.UUID) (*settlement.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[proposalID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) UpdateProposal(_ context.Context, p *settlement.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.proposals[p.ProposalID] = &cp
	return nil
}

func (r *MemoryRepository) ListProposalsByDispute(_ context.Context, disputeID uuid.UUID) ([]*settlement.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*settlement.Proposal
	for _, p := range r.proposals {
		if p.DisputeID == disputeID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) CreateSignature(_ context.Context, sig *settlement.Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	sig.ID = r.nextID
	cp := *sig
	r.signatures[sig.SignatureID] = &cp
	return nil
}

func (r *MemoryRepository) GetSignatureByID(_ context.Context, signatureID uuid.UUID) (*settlement.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sig, ok := r.signatures[signatureID]
	if !ok {
		return nil, nil
	}
	cp := *sig
	return &cp, nil
}

func (r *MemoryRepository) GetSignatureBySigner(_ context.Context, proposalID uuid.UUID, signerID uuid.UUID) (*settlement.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sig := range r.signatures {
		if sig.ProposalID == proposalID && sig.SignerID == signerID {
			cp := *sig
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) MarkSignatureVerified(_ context.Context, signatureID uuid.UUID, verifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sig, ok := r.signatures[signatureID]; ok && sig.VerifiedAt == nil {
		sig.VerifiedAt = &verifiedAt
	}
	return nil
}

func (r *MemoryRepository) ListSignaturesByProposal(_ context.Context, proposalID uuid.UUID) ([]*settlement.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*settlement.Signature
	for _, sig := range r.signatures {
		if sig.ProposalID == proposalID {
			cp := *sig
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
