// Package mocks provides an in-memory dispute.Repository for tests.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediahub/mediahub/internal/domain/dispute"
)

// MemoryRepository is a map-backed dispute.Repository.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	disputes map[uuid.UUID]*dispute.Dispute
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{disputes: make(map[uuid.UUID]*dispute.Dispute)}
}

func (r *MemoryRepository) Create(_ context.Context, d *dispute.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	d.ID = r.nextID
	cp := *d
	r.disputes[d.DisputeID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, disputeID uuid.UUID) (*dispute.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disputes[disputeID]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *MemoryRepository) Update(_ context.Context, d *dispute.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.disputes[d.DisputeID] = &cp
	return nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, disputeID uuid.UUID, status dispute.Status, activeSessionID *uuid.UUID, resolvedAt *time.Time, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disputes[disputeID]
	if !ok {
		return nil
	}
	d.Status = status
	d.ActiveSessionID = activeSessionID
	d.ResolvedAt = resolvedAt
	d.UpdatedAt = updatedAt
	return nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*dispute.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dispute.Dispute
	for _, d := range r.disputes {
		if d.OwnerID == ownerID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r *MemoryRepository) ListByIDs(_ context.Context, disputeIDs []uuid.UUID) ([]*dispute.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dispute.Dispute
	for _, id := range disputeIDs {
		if d, ok := r.disputes[id]; ok {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func page(in []*dispute.Dispute, limit, offset int) []*dispute.Dispute {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
