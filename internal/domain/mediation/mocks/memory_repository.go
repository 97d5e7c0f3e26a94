// Package mocks provides an in-memory mediation.Repository for tests.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediahub/mediahub/internal/domain/mediation"
)

// MemoryRepository is a map-backed mediation.Repository. Messages keep
// insertion order through their sequential IDs.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[uuid.UUID]*mediation.Session
	messages []*mediation.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[uuid.UUID]*mediation.Session)}
}

func (r *MemoryRepository) CreateSession(_ context.Context, s *mediation.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.sessions[s.SessionID] = &cp
	return nil
}

func (r *MemoryRepository) GetSessionByID(_ context.Context, sessionID uuid.UUID) (*mediation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepository) GetOpenSessionByDispute(_ context.Context, disputeID uuid.UUID) (*mediation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *mediation.Session
	for _, s := range r.sessions {
		if s.DisputeID != disputeID || s.Status == mediation.SessionStatusCompleted {
			continue
		}
		if latest == nil || s.ScheduledAt.After(latest.ScheduledAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *MemoryRepository) UpdateSessionStatus(_ context.Context, sessionID uuid.UUID, status mediation.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		s.Status = status
	}
	return nil
}

func (r *MemoryRepository) CompleteSession(_ context.Context, sessionID uuid.UUID, summary, recommendations string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	s.Status = mediation.SessionStatusCompleted
	s.Summary = &summary
	if recommendations != "" {
		s.Recommendations = &recommendations
	}
	s.CompletedAt = &completedAt
	return nil
}

func (r *MemoryRepository) ListSessionsByDispute(_ context.Context, disputeID uuid.UUID) ([]*mediation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*mediation.Session
	for _, s := range r.sessions {
		if s.DisputeID == disputeID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) CreateMessage(_ context.Context, m *mediation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, sessionID uuid.UUID, limit, offset int) ([]*mediation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*mediation.Message
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			cp := *m
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
