// Package mocks provides an in-memory activity.Repository for tests.
package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mediahub/mediahub/internal/domain/activity"
)

// MemoryRepository is an append-only in-memory activity.Repository.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []*activity.Activity

	// FailCreate, when set, is returned by Create to simulate a store
	// outage.
	FailCreate error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, a *activity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MemoryRepository) ListByDispute(_ context.Context, disputeID uuid.UUID, limit, offset int) ([]*activity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*activity.Activity
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].DisputeID == disputeID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListAllByDispute(_ context.Context, disputeID uuid.UUID) ([]*activity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*activity.Activity
	for _, a := range r.entries {
		if a.DisputeID == disputeID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// All returns every recorded entry regardless of dispute. Test helper.
func (r *MemoryRepository) All() []*activity.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*activity.Activity, len(r.entries))
	copy(out, r.entries)
	return out
}
