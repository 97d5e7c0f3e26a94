package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediahub/mediahub/internal/domain/activity"
)

// ActivityRepository implements activity.Repository. Rows are append-only;
// there are no update or delete paths.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activities
		(activity_id, dispute_id, user_id, activity_type, payload, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, a.ActivityID, a.DisputeID, a.UserID, a.Type, a.Payload, a.CreatedAt)
	return err
}

func (r *ActivityRepository) ListByDispute(ctx context.Context, disputeID uuid.UUID, limit, offset int) ([]*activity.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, activity_id, dispute_id, user_id, activity_type, payload, created_at
		FROM activities WHERE dispute_id=$1
		ORDER BY id DESC LIMIT $2 OFFSET $3
	`, disputeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (r *ActivityRepository) ListAllByDispute(ctx context.Context, disputeID uuid.UUID) ([]*activity.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, activity_id, dispute_id, user_id, activity_type, payload, created_at
		FROM activities WHERE dispute_id=$1
		ORDER BY id ASC
	`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

func collectActivities(rows pgx.Rows) ([]*activity.Activity, error) {
	var activities []*activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func scanActivity(row pgx.Row) (*activity.Activity, error) {
	var a activity.Activity
	var userID *uuid.UUID
	var payload []byte
	if err := row.Scan(&a.ID, &a.ActivityID, &a.DisputeID, &userID, &a.Type, &payload, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.UserID = userID
	if len(payload) > 0 {
		a.Payload = json.RawMessage(payload)
	}
	return &a, nil
}
