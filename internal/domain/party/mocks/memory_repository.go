// Package mocks provides an in-memory party.Repository for tests.
package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mediahub/mediahub/internal/domain/party"
)

// MemoryRepository is a map-backed party.Repository.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	parties map[uuid.UUID]*party.Party
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{parties: make(map[uuid.UUID]*party.Party)}
}

func (r *MemoryRepository) Create(_ context.Context, p *party.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.parties[p.PartyID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, partyID uuid.UUID) (*party.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parties[partyID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) GetByInviteCode(_ context.Context, code string) (*party.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parties {
		if p.InviteCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetActiveByEmail(_ context.Context, disputeID uuid.UUID, email string) (*party.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parties {
		if p.DisputeID == disputeID && p.Email == email && p.Status != party.StatusRemoved {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetActiveByUser(_ context.Context, disputeID uuid.UUID, userID uuid.UUID) (*party.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parties {
		if p.DisputeID == disputeID && p.UserID != nil && *p.UserID == userID && p.Status == party.StatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *party.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.parties[p.PartyID] = &cp
	return nil
}

func (r *MemoryRepository) ListByDispute(_ context.Context, disputeID uuid.UUID) ([]*party.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*party.Party
	for _, p := range r.parties {
		if p.DisputeID == disputeID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListDisputeIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, p := range r.parties {
		if p.UserID != nil && *p.UserID == userID && p.Status == party.StatusActive && !seen[p.DisputeID] {
			seen[p.DisputeID] = true
			out = append(out, p.DisputeID)
		}
	}
	return out, nil
}

func (r *MemoryRepository) InviteCodeExists(_ context.Context, code string) (bool, error) {
	p, err := r.GetByInviteCode(context.Background(), code)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}
