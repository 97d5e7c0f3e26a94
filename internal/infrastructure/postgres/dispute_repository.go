package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediahub/mediahub/internal/domain/dispute"
)

// DisputeRepository implements dispute.Repository.
type DisputeRepository struct {
	pool *pgxpool.Pool
}

func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

func (r *DisputeRepository) Create(ctx context.Context, d *dispute.Dispute) error {
	docs, err := json.Marshal(d.Documents)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO disputes
		(dispute_id, owner_id, title, description, parties_description, dispute_type, status, active_session_id, ai_analysis, documents, created_at, updated_at, resolved_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, d.DisputeID, d.OwnerID, d.Title, d.Description, d.PartiesDescription, d.Type, d.Status, d.ActiveSessionID, d.AIAnalysis, docs, d.CreatedAt, d.UpdatedAt, d.ResolvedAt)
	return err
}

func (r *DisputeRepository) GetByID(ctx context.Context, disputeID uuid.UUID) (*dispute.Dispute, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, dispute_id, owner_id, title, description, parties_description, dispute_type, status, active_session_id, ai_analysis, documents, created_at, updated_at, resolved_at
		FROM disputes WHERE dispute_id=$1
	`, disputeID)
	return scanDispute(row)
}

func (r *DisputeRepository) Update(ctx context.Context, d *dispute.Dispute) error {
	docs, err := json.Marshal(d.Documents)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE disputes
		SET title=$1, description=$2, parties_description=$3, dispute_type=$4, status=$5, active_session_id=$6, ai_analysis=$7, documents=$8, updated_at=$9, resolved_at=$10
		WHERE dispute_id=$11
	`, d.Title, d.Description, d.PartiesDescription, d.Type, d.Status, d.ActiveSessionID, d.AIAnalysis, docs, d.UpdatedAt, d.ResolvedAt, d.DisputeID)
	return err
}

func (r *DisputeRepository) UpdateStatus(ctx context.Context, disputeID uuid.UUID, status dispute.Status, activeSessionID *uuid.UUID, resolvedAt *time.Time, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE disputes
		SET status=$1, active_session_id=$2, resolved_at=$3, updated_at=$4
		WHERE dispute_id=$5
	`, status, activeSessionID, resolvedAt, updatedAt, disputeID)
	return err
}

func (r *DisputeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*dispute.Dispute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, dispute_id, owner_id, title, description, parties_description, dispute_type, status, active_session_id, ai_analysis, documents, created_at, updated_at, resolved_at
		FROM disputes WHERE owner_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDisputes(rows)
}

func (r *DisputeRepository) ListByIDs(ctx context.Context, disputeIDs []uuid.UUID) ([]*dispute.Dispute, error) {
	if len(disputeIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, dispute_id, owner_id, title, description, parties_description, dispute_type, status, active_session_id, ai_analysis, documents, created_at, updated_at, resolved_at
		FROM disputes WHERE dispute_id = ANY($1)
		ORDER BY created_at DESC
	`, disputeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDisputes(rows)
}

func collectDisputes(rows pgx.Rows) ([]*dispute.Dispute, error) {
	var disputes []*dispute.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}

func scanDispute(row pgx.Row) (*dispute.Dispute, error) {
	var d dispute.Dispute
	var activeSessionID *uuid.UUID
	var aiAnalysis []byte
	var docs []byte
	var resolvedAt *time.Time
	if err := row.Scan(&d.ID, &d.DisputeID, &d.OwnerID, &d.Title, &d.Description, &d.PartiesDescription, &d.Type, &d.Status, &activeSessionID, &aiAnalysis, &docs, &d.CreatedAt, &d.UpdatedAt, &resolvedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	d.ActiveSessionID = activeSessionID
	d.ResolvedAt = resolvedAt
	if len(aiAnalysis) > 0 {
		d.AIAnalysis = json.RawMessage(aiAnalysis)
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &d.Documents); err != nil {
			return nil, err
		}
	}
	return &d, nil
}
