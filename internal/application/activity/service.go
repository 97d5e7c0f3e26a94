package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediahub/mediahub/internal/domain/activity"
)

const (
	topUserCount      = 5
	recentActivityCap = 10
)

// Service owns the append-only dispute activity log and its aggregate
// reporting. Record is synchronous: an activity write failure is fatal to the
// business operation that triggered it.
type Service struct {
	repo   activity.Repository
	logger zerolog.Logger
}

// NewService creates an activity service.
func NewService(repo activity.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "activity").Logger(),
	}
}

// Record appends one activity. actorID is nil for system and AI actions.
// The payload is marshaled here so callers pass plain maps or structs.
func (s *Service) Record(ctx context.Context, disputeID uuid.UUID, actorID *uuid.UUID, activityType activity.Type, payload interface{}) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal activity payload: %w", err)
		}
		raw = b
	}

	a := &activity.Activity{
		ActivityID: uuid.New(),
		DisputeID:  disputeID,
		UserID:     actorID,
		Type:       activityType,
		Payload:    raw,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).
			Str("dispute_id", disputeID.String()).
			Str("type", string(activityType)).
			Msg("failed to record activity")
		return fmt.Errorf("record activity: %w", err)
	}

	s.logger.Debug().
		Str("activity_id", a.ActivityID.String()).
		Str("dispute_id", disputeID.String()).
		Str("type", string(activityType)).
		Msg("activity recorded")
	return nil
}

// List returns a page of a dispute's activities, newest first.
func (s *Service) List(ctx context.Context, disputeID uuid.UUID, limit, offset int) ([]*activity.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByDispute(ctx, disputeID, limit, offset)
}

// Report recomputes the aggregate view over the full activity set: total,
// counts by type, top actors, a day-bucketed timeline, and the most recent
// records. Read-only; no side effects.
func (s *Service) Report(ctx context.Context, disputeID uuid.UUID) (*activity.Report, error) {
	all, err := s.repo.ListAllByDispute(ctx, disputeID)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	report := &activity.Report{
		DisputeID:    disputeID,
		Total:        len(all),
		CountsByType: make(map[activity.Type]int),
		Timeline:     make(map[string]int),
	}

	byUser := make(map[string]int)
	for _, a := range all {
		report.CountsByType[a.Type]++
		report.Timeline[activity.TimelineKey(a.CreatedAt)]++
		byUser[actorKey(a.UserID)]++
	}

	users := make([]activity.UserCount, 0, len(byUser))
	for id, count := range byUser {
		users = append(users, activity.UserCount{UserID: id, Count: count})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Count != users[j].Count {
			return users[i].Count > users[j].Count
		}
		return users[i].UserID < users[j].UserID
	})
	if len(users) > topUserCount {
		users = users[:topUserCount]
	}
	report.CountsByUser = users

	// Records come back oldest first; the report wants the newest N.
	recent := make([]*activity.Activity, 0, recentActivityCap)
	for i := len(all) - 1; i >= 0 && len(recent) < recentActivityCap; i-- {
		recent = append(recent, all[i])
	}
	report.Recent = recent

	return report, nil
}

func actorKey(userID *uuid.UUID) string {
	if userID == nil {
		return "system"
	}
	return userID.String()
}
